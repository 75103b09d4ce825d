// Package ui renders the line-oriented output of the non-dashboard
// commands: check reports and progress spinners.
package ui

import "github.com/charmbracelet/lipgloss"

// Status symbols.
const (
	SymbolSuccess = "✓"
	SymbolFail    = "✗"
	SymbolWarn    = "!"
	SymbolPending = "○"
	SymbolDone    = "●"
)

// Semantic colors using the basic ANSI palette.
const (
	ColorSuccess lipgloss.Color = "2"
	ColorError   lipgloss.Color = "1"
	ColorWarning lipgloss.Color = "3"
	ColorMuted   lipgloss.Color = "8"
	ColorPrimary lipgloss.Color = "7"
)
