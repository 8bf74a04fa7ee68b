package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/haskel/molcmp/internal/scheduler"
)

// Config holds TUI configuration
type Config struct {
	Title    string
	Total    int
	Unpaired int
	Events   <-chan tea.Msg
	Cancel   func()
	Stats    func() scheduler.Stats
}

// Messages forwarded from the running session
type progressMsg float64

type unpairedMsg int

type taskFailedMsg string

type sessionCompleteMsg struct {
	results int
}

type sessionFailedMsg string

type tickMsg time.Time

// Model represents the TUI state
type Model struct {
	config Config

	// Session state
	progress    float64
	stats       scheduler.Stats
	unpaired    int
	lastFailure string
	finished    bool
	failReason  string
	cancelled   bool

	// UI state
	width  int
	height int
}

// NewModel creates a new model
func NewModel(cfg Config) Model {
	return Model{
		config:   cfg,
		unpaired: cfg.Unpaired,
	}
}
