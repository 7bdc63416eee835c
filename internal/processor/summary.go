package processor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorOK    = lipgloss.Color("#10B981")
	colorWarn  = lipgloss.Color("#F59E0B")
	colorError = lipgloss.Color("#EF4444")
	colorMuted = lipgloss.Color("#6B7280")

	summaryTitleStyle = lipgloss.NewStyle().Bold(true)
	summaryBoxStyle   = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorMuted).
				Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Width(18)
	okStyle    = lipgloss.NewStyle().Foreground(colorOK)
	warnStyle  = lipgloss.NewStyle().Foreground(colorWarn)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// renderSummary formats the run statistics as a bordered table
func renderSummary(stats *Stats, pushed bool) string {
	var lines []string
	row := func(label string, value int, style lipgloss.Style) {
		lines = append(lines, labelStyle.Render(label)+style.Render(fmt.Sprint(value)))
	}

	lines = append(lines, summaryTitleStyle.Render("Summary"))
	row("Words", stats.Words, mutedStyle)
	row("Cards", stats.Accepted, okStyle)
	if stats.WithAudio > 0 {
		row("With audio", stats.WithAudio, okStyle)
	}
	if pushed {
		row("Added to Anki", stats.Created, okStyle)
		row("Already in deck", stats.SkippedDuplicate, warnStyle)
		row("Failed", stats.Failed, errorStyle)
	}
	row("Not pushed", stats.NotPushed, mutedStyle)
	row("Dropped", stats.Dropped, errorStyle)

	if stats.CSVPath != "" {
		lines = append(lines, "", "CSV:  "+stats.CSVPath)
	}
	if stats.APKGPath != "" {
		lines = append(lines, "APKG: "+stats.APKGPath)
	}

	return summaryBoxStyle.Render(strings.Join(lines, "\n"))
}

func (p *Processor) printSummary(stats *Stats) {
	fmt.Fprintln(p.out)
	fmt.Fprintln(p.out, renderSummary(stats, p.flags.PushToAnki))
}
