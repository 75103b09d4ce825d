package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// appTitle heads every screen.
const appTitle = "tmon"

func (m Model) renderMenu() string {
	var b strings.Builder

	title := lipgloss.NewStyle().Foreground(ColorAccent).Bold(true).Render(appTitle)
	sub := lipgloss.NewStyle().Foreground(ColorTextSecondary).Render(" | pick a monitor")
	b.WriteString(HeaderStyle.Render(title + sub))
	b.WriteString("\n\n")

	for _, item := range m.items {
		b.WriteString(fmt.Sprintf("  %s %s\n", MenuKeyStyle.Render("["+item.Key+"]"), ValueStyle.Render(item.Title)))
	}
	b.WriteString(fmt.Sprintf("  %s %s\n", MenuKeyStyle.Render("[q]"), ValueStyle.Render("Quit")))

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(AlertStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(FooterStyle.Render(m.help.ShortHelpView(keys.menuHelp())))
	return b.String()
}

func (m Model) renderPanel() string {
	var b strings.Builder
	b.WriteString(m.active.View(m.now()))
	b.WriteString("\n\n")
	b.WriteString(FooterStyle.Render(m.help.ShortHelpView(keys.panelHelp())))
	return b.String()
}
