package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/molcmp/internal/dataset"
)

// Forwarder adapts scheduler events into bubbletea messages. Sends are
// non-blocking: a full buffer drops display updates rather than stalling
// a worker.
type Forwarder struct {
	ch chan tea.Msg
}

func NewForwarder() *Forwarder {
	return &Forwarder{ch: make(chan tea.Msg, 256)}
}

// Events returns the message stream consumed by the TUI.
func (f *Forwarder) Events() <-chan tea.Msg {
	return f.ch
}

func (f *Forwarder) send(msg tea.Msg) {
	select {
	case f.ch <- msg:
	default:
	}
}

func (f *Forwarder) OnProgress(fraction float64) {
	f.send(progressMsg(fraction))
}

func (f *Forwarder) OnUnpairedInputs(count int) {
	f.send(unpairedMsg(count))
}

func (f *Forwarder) OnTaskFailed(reason string) {
	f.send(taskFailedMsg(reason))
}

func (f *Forwarder) OnSessionComplete(d *dataset.Dataset) {
	f.send(sessionCompleteMsg{results: len(d.Results)})
}

func (f *Forwarder) OnSessionFailed(reason string) {
	f.send(sessionFailedMsg(reason))
}
