package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/haskel/molcmp/internal/compare"
	"github.com/haskel/molcmp/internal/dataset"
	"github.com/haskel/molcmp/internal/histogram"
)

const barWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderHistogram prints one feature's bins as horizontal bars.
func renderHistogram(feature compare.FeatureID, h *histogram.Histogram) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(string(feature)))
	b.WriteString("\n")

	edges := h.Edges()
	maxFreq := h.MaxFrequency()

	for i := 0; i < len(edges)-1; i++ {
		closing := ")"
		if i == len(edges)-2 {
			closing = "]"
		}
		label := fmt.Sprintf("[%9.4g, %9.4g%s", edges[i], edges[i+1], closing)

		freq := h.Frequency(i)
		width := 0
		if maxFreq > 0 {
			width = int(freq / maxFreq * barWidth)
		}

		value := fmt.Sprintf("%d", int(freq+0.5))
		if h.Relative() {
			value = fmt.Sprintf("%.4f", freq)
		}

		b.WriteString(fmt.Sprintf("%s %s %s\n",
			mutedStyle.Render(label),
			barStyle.Render(strings.Repeat("█", width)),
			value,
		))
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf(
		"total %d  invalid %d  min %.4g  max %.4g  avg %.4g",
		h.Total(), h.InvalidCount(), h.Min(), h.Max(), h.Average(),
	)))

	return b.String()
}

// renderSummary prints the post-session overview with every feature's
// histogram.
func renderSummary(ds *dataset.Dataset, unpaired int) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("comparison complete"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("sources: %s vs %s\n", ds.SourceA, ds.SourceB))
	b.WriteString(fmt.Sprintf("results: %d  unpaired: %d  elapsed: %s\n\n",
		len(ds.Results), unpaired, ds.FinishedAt.Sub(ds.StartedAt).Round(time.Millisecond)))

	for _, f := range ds.Features {
		b.WriteString(renderHistogram(f, ds.Histogram(f)))
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n")
}
