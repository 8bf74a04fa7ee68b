package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const refreshInterval = 250 * time.Millisecond

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForEvent(m.config.Events),
		tick(),
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case progressMsg:
		m.progress = float64(msg)
		return m, waitForEvent(m.config.Events)

	case unpairedMsg:
		m.unpaired = int(msg)
		return m, waitForEvent(m.config.Events)

	case taskFailedMsg:
		m.lastFailure = string(msg)
		return m, waitForEvent(m.config.Events)

	case sessionCompleteMsg:
		m.progress = 1.0
		m.finished = true
		m.stats = m.config.Stats()
		return m, tea.Quit

	case sessionFailedMsg:
		m.finished = true
		m.failReason = string(msg)
		m.stats = m.config.Stats()
		return m, tea.Quit

	case tickMsg:
		m.stats = m.config.Stats()
		return m, tick()
	}

	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		if !m.finished {
			m.cancelled = true
			m.config.Cancel()
		}
		return m, tea.Quit
	}

	return m, nil
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-events
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
