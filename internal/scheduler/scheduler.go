// Package scheduler drives comparison tasks through a bounded worker
// pool and fires aggregation exactly once per session.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/dataset"
	"github.com/haskel/molcmp/internal/task"
)

var (
	// ErrSessionActive is returned by Start while a run is in progress.
	ErrSessionActive = errors.New("a comparison session is already active")

	// ErrNoTasks is returned by Start when the producer created nothing:
	// there must be at least one feature selected and at least one
	// valid pair.
	ErrNoTasks = errors.New("no comparison tasks produced")
)

// progressGate is the probability that an eligible progress update is
// reported. It throttles update volume under high task counts without a
// fixed-interval timer.
const progressGate = 0.05

// StartOptions configures one session.
type StartOptions struct {
	Workers     int
	SourceA     string
	SourceB     string
	DefaultBins int
}

// Scheduler owns the worker pool for one session at a time. Exactly
// `workers` tasks are in flight at any moment while queued work remains;
// a single closed work channel provides the backpressure. A Scheduler is
// reusable: after completion or Cancel a new Start is accepted.
type Scheduler struct {
	comparator compare.Comparator
	logger     *slog.Logger
	listeners  Listeners

	// Throttles failure log lines, not failure events.
	failLog *rate.Limiter

	mu         sync.Mutex
	active     bool
	cancelled  bool
	cancelling bool
	latched    bool
	cancel    context.CancelFunc
	ctx       context.Context
	work      chan *task.Task
	stop      chan struct{}
	wg        sync.WaitGroup

	workers   int
	total     int
	features  compare.FeatureMask
	opts      StartOptions
	startedAt time.Time

	inFlight  map[int64]*task.Task
	succeeded []*task.Task
	failed    []*task.Task
	highWater float64
}

// New creates an idle scheduler.
func New(comparator compare.Comparator, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		comparator: comparator,
		logger:     logger,
		failLog:    rate.NewLimiter(rate.Limit(1), 5),
		inFlight:   make(map[int64]*task.Task),
	}
}

// AddListener registers a listener for session notifications. Must be
// called before Start.
func (s *Scheduler) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Start begins a session. It returns immediately; work proceeds on the
// pool. Fails while a previous session is active or when no tasks were
// produced.
func (s *Scheduler) Start(tasks []*task.Task, opts StartOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A session still tearing down in Cancel counts as active: its
	// final queue reset would clobber the fresh session's state.
	if s.active || s.cancelling {
		return ErrSessionActive
	}
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	s.active = true
	s.cancelled = false
	s.latched = false
	s.workers = workers
	s.total = len(tasks)
	s.features = tasks[0].Features
	s.opts = opts
	s.startedAt = time.Now()
	s.inFlight = make(map[int64]*task.Task, workers)
	s.succeeded = nil
	s.failed = nil
	s.highWater = 0

	s.work = make(chan *task.Task, len(tasks))
	for _, t := range tasks {
		s.work <- t
	}
	close(s.work)

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.stop = make(chan struct{})
	s.spawnLocked(workers)

	s.logger.Info("session started",
		"tasks", s.total,
		"workers", workers,
		"features", len(s.features),
	)
	return nil
}

// spawnLocked starts one worker generation. Caller holds s.mu.
func (s *Scheduler) spawnLocked(workers int) {
	ctx, stop, work := s.ctx, s.stop, s.work
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, stop, work)
	}
}

func (s *Scheduler) worker(ctx context.Context, stop <-chan struct{}, work <-chan *task.Task) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case t, ok := <-work:
			if !ok {
				return
			}
			s.markRunning(t)
			t.Run(ctx, s.comparator)
			s.onTaskTerminal(t)
		}
	}
}

func (s *Scheduler) markRunning(t *task.Task) {
	s.mu.Lock()
	s.inFlight[t.ID] = t
	s.mu.Unlock()
}

// onTaskTerminal does the per-completion bookkeeping and, for the one
// worker that observes the final completion, fires aggregation. The
// latch check-and-set under the mutex guarantees the aggregator runs at
// most once per session.
func (s *Scheduler) onTaskTerminal(t *task.Task) {
	s.mu.Lock()

	// A task finishing while Cancel iterates is a benign race.
	delete(s.inFlight, t.ID)

	if !s.active || s.cancelled {
		s.mu.Unlock()
		return
	}

	failReason := ""
	switch t.State() {
	case task.StateSucceeded:
		s.succeeded = append(s.succeeded, t)
	case task.StateFailed:
		s.failed = append(s.failed, t)
		failReason = t.Reason()
	default:
		// Cancelled tasks are reset territory, not bookkeeping.
		s.mu.Unlock()
		return
	}

	// Progress is identifier-ordered, reported only above the watermark
	// and behind the randomized gate. Delivered under the lock: advancing
	// the watermark and notifying must be one atomic step, or two workers
	// could deliver their fractions in the opposite order.
	progress := float64(t.ID) / float64(s.total)
	if progress > s.highWater && rand.Float64() < progressGate {
		s.highWater = progress
		s.listeners.OnProgress(progress)
	}

	finished := !s.latched && len(s.succeeded)+len(s.failed) == s.total
	if finished {
		s.latched = true
	}
	listener := s.listeners
	s.mu.Unlock()

	if failReason != "" {
		listener.OnTaskFailed(failReason)
		if s.failLog.Allow() {
			s.logger.Warn("task failed", "task", t.ID, "reason", failReason)
		}
	}
	if finished {
		s.finish()
	}
}

// finish runs the aggregation step, exactly once per session, on the
// worker that latched.
func (s *Scheduler) finish() {
	s.mu.Lock()
	succeeded := s.succeeded
	failedCount := len(s.failed)
	ctx := s.ctx
	opts := dataset.Options{
		SourceA:     s.opts.SourceA,
		SourceB:     s.opts.SourceB,
		StartedAt:   s.startedAt,
		DefaultBins: s.opts.DefaultBins,
	}
	features := s.features
	s.mu.Unlock()

	ds, err := dataset.Aggregate(ctx, succeeded, features, opts)

	s.mu.Lock()
	s.active = false
	cancel := s.cancel
	listener := s.listeners
	s.mu.Unlock()

	// Tear the pool down; remaining workers exit on the closed channel
	// or the context.
	cancel()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		s.logger.Error("session failed", "error", err, "failed_tasks", failedCount)
		listener.OnSessionFailed(err.Error())
		return
	}

	s.logger.Info("session complete",
		"results", len(ds.Results),
		"failed_tasks", failedCount,
		"elapsed", time.Since(ds.StartedAt),
	)
	listener.OnProgress(1.0)
	listener.OnSessionComplete(ds)
}

// Cancel cooperatively stops the session: in-flight tasks abandon work
// at their next checkpoint, queued work is drained, and the pool is
// fully torn down. Idempotent; the scheduler accepts a new Start
// afterwards.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	s.cancelled = true
	s.cancelling = true
	cancel := s.cancel
	work := s.work
	s.mu.Unlock()

	cancel()

	// Drain not-yet-dispatched tasks; the channel is closed so this
	// terminates.
	for range work {
	}
	s.wg.Wait()

	s.mu.Lock()
	s.inFlight = make(map[int64]*task.Task)
	s.succeeded = nil
	s.failed = nil
	s.cancelling = false
	s.mu.Unlock()

	s.logger.Info("session cancelled")
}

// Active reports whether a session is between Start and its completion
// or cancellation.
func (s *Scheduler) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetWorkers replaces the pool generation for subsequent dispatches.
// In-flight tasks are unaffected; queued work is preserved.
func (s *Scheduler) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.workers = n
	if !s.active {
		return
	}

	// Old generation finishes its current tasks and exits; the new one
	// takes over the same work channel.
	close(s.stop)
	s.stop = make(chan struct{})
	s.spawnLocked(n)
}

// Stats is a point-in-time session snapshot.
type Stats struct {
	Active    bool      `json:"active"`
	Workers   int       `json:"workers"`
	Total     int       `json:"total"`
	InFlight  int       `json:"in_flight"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Remaining int       `json:"remaining"`
	Progress  float64   `json:"progress"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Stats returns the current session snapshot.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Active:    s.active,
		Workers:   s.workers,
		Total:     s.total,
		InFlight:  len(s.inFlight),
		Succeeded: len(s.succeeded),
		Failed:    len(s.failed),
		Progress:  s.highWater,
		StartedAt: s.startedAt,
	}
	if s.total > 0 {
		st.Remaining = s.total - st.Succeeded - st.Failed - st.InFlight
	}
	return st
}
