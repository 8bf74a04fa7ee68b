package task

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/haskel/molcmp/internal/compare"
)

// State is the lifecycle state of a task.
type State int32

const (
	StatePending State = iota
	StateRunning
	StateCancelled
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	return s == StateCancelled || s == StateSucceeded || s == StateFailed
}

// Task is one pairwise comparison unit of work. The identifier is
// assigned at creation and defines progress ordering, not completion
// order. A terminal task is immutable.
type Task struct {
	ID       int64
	RecordA  string
	RecordB  string
	Features compare.FeatureMask

	state  atomic.Int32
	values compare.Values
	reason string
}

// New creates a pending task.
func New(id int64, recordA, recordB string, features compare.FeatureMask) *Task {
	return &Task{
		ID:       id,
		RecordA:  recordA,
		RecordB:  recordB,
		Features: features,
	}
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Values returns the computed feature values. Valid only after the task
// reached StateSucceeded.
func (t *Task) Values() compare.Values {
	return t.values
}

// Reason returns the failure reason for a StateFailed task.
func (t *Task) Reason() string {
	return t.reason
}

// Run executes the comparison feature by feature, checking the context
// between features so cancellation latency is bounded by one feature
// computation, not the whole task. A comparator error captures a Failed
// terminal state instead of propagating.
func (t *Task) Run(ctx context.Context, comparator compare.Comparator) {
	if !t.state.CompareAndSwap(int32(StatePending), int32(StateRunning)) {
		return
	}

	if ctx.Err() != nil {
		t.state.Store(int32(StateCancelled))
		return
	}

	values := make(compare.Values, len(t.Features))
	for _, feature := range t.Features {
		if ctx.Err() != nil {
			t.state.Store(int32(StateCancelled))
			return
		}

		computed, err := comparator.Compare(t.RecordA, t.RecordB, compare.FeatureMask{feature})
		if err != nil {
			t.reason = fmt.Sprintf("feature %s: %v", feature, err)
			t.state.Store(int32(StateFailed))
			return
		}

		if v, ok := computed[feature]; ok {
			values[feature] = v
		} else {
			values[feature] = math.NaN()
		}
	}

	t.values = values
	t.state.Store(int32(StateSucceeded))
}
