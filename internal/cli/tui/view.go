package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderTitleBar())
	sections = append(sections, "")
	sections = append(sections, m.renderProgress())
	sections = append(sections, "")
	sections = append(sections, m.renderCounters())

	if m.lastFailure != "" {
		sections = append(sections, "")
		sections = append(sections, errorStyle.Render("last failure: ")+valueStyle.Render(m.lastFailure))
	}

	if m.finished {
		sections = append(sections, "")
		if m.failReason != "" {
			sections = append(sections, errorStyle.Render(fmt.Sprintf("session failed: %s", m.failReason)))
		} else {
			sections = append(sections, successStyle.Render("session complete"))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render(m.config.Title)
	help := helpStyle.Render("q:cancel and quit")

	spacing := m.width - lipgloss.Width(title) - lipgloss.Width(help) - 2
	if spacing < 1 {
		spacing = 1
	}

	return fmt.Sprintf("%s%s%s", title, strings.Repeat(" ", spacing), help)
}

func (m Model) renderProgress() string {
	width := 40
	if m.width < 60 {
		width = m.width - 20
	}
	if width < 10 {
		width = 10
	}

	filled := int(m.progress * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := progressFilledStyle.Render(strings.Repeat("█", filled)) +
		progressEmptyStyle.Render(strings.Repeat("░", width-filled))

	return fmt.Sprintf("  [%s] %5.1f%%", bar, m.progress*100)
}

func (m Model) renderCounters() string {
	s := m.stats
	elapsed := time.Duration(0)
	if !s.StartedAt.IsZero() {
		elapsed = time.Since(s.StartedAt).Round(time.Second)
	}

	lines := []string{
		m.counter("workers", fmt.Sprintf("%d", s.Workers)),
		m.counter("in flight", fmt.Sprintf("%d", s.InFlight)),
		m.counter("succeeded", fmt.Sprintf("%d / %d", s.Succeeded, m.config.Total)),
		m.counter("failed", fmt.Sprintf("%d", s.Failed)),
		m.counter("unpaired", fmt.Sprintf("%d", m.unpaired)),
		m.counter("elapsed", elapsed.String()),
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) counter(label, value string) string {
	return fmt.Sprintf("  %s %s", labelStyle.Render(fmt.Sprintf("%-10s", label)), valueStyle.Render(value))
}
