package monitor

import (
	"io"
	"math"
	"os"
	"time"
)

// Beeper produces one audible pulse.
type Beeper interface {
	Beep()
}

// TerminalBell rings the terminal bell by writing BEL to W (stderr when nil).
type TerminalBell struct {
	W io.Writer
}

// Beep writes a single BEL character.
func (b TerminalBell) Beep() {
	w := b.W
	if w == nil {
		w = os.Stderr
	}
	_, _ = io.WriteString(w, "\a")
}

// Exceeds reports whether an integer percentage is strictly above threshold.
// Fractional values are truncated first; negative, NaN and infinite values
// never exceed.
func Exceeds(value float64, threshold int) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return false
	}
	return int(math.Floor(value)) > threshold
}

// AlertGate decides each tick whether the newest sample should sound the
// alarm. It keeps no state between checks: a value that stays above the
// threshold alarms on every tick.
type AlertGate struct {
	Threshold int
	Pulses    int
	Gap       time.Duration
	Beeper    Beeper
	Enabled   bool

	// dispatch runs the pulse pattern; nil means a detached goroutine.
	dispatch func(func())
}

// NewAlertGate returns a gate that rings the terminal bell.
func NewAlertGate(threshold, pulses int, gap time.Duration, enabled bool) *AlertGate {
	return &AlertGate{
		Threshold: threshold,
		Pulses:    pulses,
		Gap:       gap,
		Beeper:    TerminalBell{},
		Enabled:   enabled,
	}
}

// Check reports whether value exceeds the threshold and, when it does and
// sound is enabled, starts the pulse pattern without waiting for it.
func (a *AlertGate) Check(value float64) bool {
	if a == nil || !Exceeds(value, a.Threshold) {
		return false
	}
	if a.Enabled && a.Beeper != nil && a.Pulses > 0 {
		dispatch := a.dispatch
		if dispatch == nil {
			dispatch = func(f func()) { go f() }
		}
		dispatch(a.sound)
	}
	return true
}

func (a *AlertGate) sound() {
	for i := 0; i < a.Pulses; i++ {
		if i > 0 && a.Gap > 0 {
			time.Sleep(a.Gap)
		}
		a.Beeper.Beep()
	}
}
