package scheduler

import "github.com/haskel/molcmp/internal/dataset"

// Listener receives session notifications with typed payloads. All
// notifications are advisory; the scheduler's state never depends on a
// listener existing or reacting.
type Listener interface {
	// OnProgress reports a monotonically increasing completion fraction.
	OnProgress(fraction float64)

	// OnUnpairedInputs reports how many records had no counterpart on
	// the other source.
	OnUnpairedInputs(count int)

	// OnTaskFailed reports one task's failure reason.
	OnTaskFailed(reason string)

	// OnSessionComplete delivers the aggregate dataset.
	OnSessionComplete(d *dataset.Dataset)

	// OnSessionFailed reports a session-level failure.
	OnSessionFailed(reason string)
}

// NopListener ignores every notification.
type NopListener struct{}

func (NopListener) OnProgress(float64)                 {}
func (NopListener) OnUnpairedInputs(int)               {}
func (NopListener) OnTaskFailed(string)                {}
func (NopListener) OnSessionComplete(*dataset.Dataset) {}
func (NopListener) OnSessionFailed(string)             {}

// Listeners fans every notification out to multiple listeners in order.
type Listeners []Listener

func (ls Listeners) OnProgress(fraction float64) {
	for _, l := range ls {
		l.OnProgress(fraction)
	}
}

func (ls Listeners) OnUnpairedInputs(count int) {
	for _, l := range ls {
		l.OnUnpairedInputs(count)
	}
}

func (ls Listeners) OnTaskFailed(reason string) {
	for _, l := range ls {
		l.OnTaskFailed(reason)
	}
}

func (ls Listeners) OnSessionComplete(d *dataset.Dataset) {
	for _, l := range ls {
		l.OnSessionComplete(d)
	}
}

func (ls Listeners) OnSessionFailed(reason string) {
	for _, l := range ls {
		l.OnSessionFailed(reason)
	}
}

// Callbacks adapts plain functions to Listener; nil fields are skipped.
type Callbacks struct {
	Progress        func(fraction float64)
	UnpairedInputs  func(count int)
	TaskFailed      func(reason string)
	SessionComplete func(d *dataset.Dataset)
	SessionFailed   func(reason string)
}

func (c Callbacks) OnProgress(fraction float64) {
	if c.Progress != nil {
		c.Progress(fraction)
	}
}

func (c Callbacks) OnUnpairedInputs(count int) {
	if c.UnpairedInputs != nil {
		c.UnpairedInputs(count)
	}
}

func (c Callbacks) OnTaskFailed(reason string) {
	if c.TaskFailed != nil {
		c.TaskFailed(reason)
	}
}

func (c Callbacks) OnSessionComplete(d *dataset.Dataset) {
	if c.SessionComplete != nil {
		c.SessionComplete(d)
	}
}

func (c Callbacks) OnSessionFailed(reason string) {
	if c.SessionFailed != nil {
		c.SessionFailed(reason)
	}
}
