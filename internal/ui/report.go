package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CheckStatus is the outcome of one diagnostic line.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
	StatusInfo CheckStatus = "info"
)

// CheckRow is one line of a check report.
type CheckRow struct {
	Status     CheckStatus `json:"status"`
	Category   string      `json:"category"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// RenderReport groups rows by category, in first-seen order.
func RenderReport(rows []CheckRow) string {
	if len(rows) == 0 {
		return "No checks to display\n"
	}

	successStyle := lipgloss.NewStyle().Foreground(ColorSuccess)
	errorStyle := lipgloss.NewStyle().Foreground(ColorError)
	warnStyle := lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle := lipgloss.NewStyle().Foreground(ColorMuted)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)

	categories := make(map[string][]CheckRow)
	var order []string
	for _, row := range rows {
		if _, ok := categories[row.Category]; !ok {
			order = append(order, row.Category)
		}
		categories[row.Category] = append(categories[row.Category], row)
	}

	var b strings.Builder
	for _, cat := range order {
		b.WriteString(headerStyle.Render(cat) + "\n")
		for _, row := range categories[cat] {
			var icon string
			switch row.Status {
			case StatusPass:
				icon = successStyle.Render(SymbolSuccess)
			case StatusWarn:
				icon = warnStyle.Render(SymbolWarn)
			case StatusFail:
				icon = errorStyle.Render(SymbolFail)
			default:
				icon = mutedStyle.Render(SymbolPending)
			}
			b.WriteString("  " + icon + " " + row.Message + "\n")
			if row.Suggestion != "" && row.Status != StatusPass {
				b.WriteString("    " + mutedStyle.Render(row.Suggestion) + "\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Summarize counts failures and warnings.
func Summarize(rows []CheckRow) (fails, warns int) {
	for _, r := range rows {
		switch r.Status {
		case StatusFail:
			fails++
		case StatusWarn:
			warns++
		}
	}
	return fails, warns
}
