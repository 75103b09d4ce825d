package monitor

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/tmon/internal/errors"
)

// Reading is the result of one collection, carried from the collecting
// command back into Update.
type Reading struct {
	At    time.Time
	Value any
	Err   error
}

// Panel is one monitor view. Collect may block (external tools sample
// over roughly a second) and runs outside the update loop; Apply and View
// run on the update loop and own all panel state.
type Panel interface {
	Title() string
	Collect(ctx context.Context) Reading
	Apply(r Reading)
	View(now time.Time) string
	Resize(termWidth int)
}

// PanelOptions are shared by all panels.
type PanelOptions struct {
	Height          int // graph rows
	Width           int // graph columns; 0 follows the terminal
	Alert           *AlertGate
	Recorder        Recorder
	TopN            int
	IncludeLoopback bool
}

const (
	defaultGraphWidth = 60
	minGraphWidth     = 10
	// gutterReserve is the room left for the axis labels and borders.
	gutterReserve = 10
)

// graphWidthFor picks the series width for a terminal of termWidth columns.
func (o PanelOptions) graphWidthFor(termWidth int) int {
	if o.Width > 0 {
		return o.Width
	}
	if termWidth <= 0 {
		return defaultGraphWidth
	}
	return max(minGraphWidth, termWidth-gutterReserve)
}

func (o PanelOptions) recorder() Recorder {
	if o.Recorder == nil {
		return NopRecorder{}
	}
	return o.Recorder
}

// panelBase carries what every panel tracks between ticks.
type panelBase struct {
	opts    PanelOptions
	width   int
	lastAt  time.Time
	lastErr error
	alerted bool
}

func newPanelBase(opts PanelOptions) panelBase {
	if opts.Height < 1 {
		opts.Height = 10
	}
	return panelBase{opts: opts, width: opts.graphWidthFor(0)}
}

// record stores the reading's time and error and reports whether it has a
// value. A failed reading clears the alert marker.
func (b *panelBase) record(r Reading) bool {
	b.lastAt = r.At
	b.lastErr = r.Err
	if r.Err != nil {
		b.alerted = false
	}
	return r.Err == nil && r.Value != nil
}

// summary picks the header value: N/A after a failed reading, the pending
// text until the first value, then s.
func (b *panelBase) summary(ready bool, s string) string {
	switch {
	case b.lastErr != nil:
		return NotAvailable
	case !ready:
		return "sampling..."
	}
	return s
}

// checkAlert runs the gate on a percentage sample.
func (b *panelBase) checkAlert(value float64) {
	b.alerted = b.opts.Alert.Check(value)
}

func (b *panelBase) header(title, summary string) string {
	var parts []string
	parts = append(parts, HeaderStyle.Render(title))
	if summary != "" {
		parts = append(parts, ValueStyle.Render(summary))
	}
	if b.alerted && b.opts.Alert != nil {
		parts = append(parts, AlertStyle.Render(fmt.Sprintf("▲ above %d%%", b.opts.Alert.Threshold)))
	}
	return strings.Join(parts, "  ")
}

// status renders the unavailable line when the last collection failed.
func (b *panelBase) status() string {
	if b.lastErr == nil {
		return ""
	}
	return UnavailableStyle.Render(NotAvailable + ": " + errorSummary(b.lastErr))
}

// errorSummary is the one-line form of err shown under a panel header.
func errorSummary(err error) string {
	var tmErr *errors.Error
	if stderrors.As(err, &tmErr) {
		return tmErr.Message
	}
	return firstLine(err.Error())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// joinSections stacks non-empty blocks.
func joinSections(blocks ...string) string {
	var kept []string
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, kept...)
}
