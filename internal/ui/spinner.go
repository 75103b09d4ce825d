package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner shows an animated label until Success or Fail.
type Spinner struct {
	mu           sync.Mutex
	label        string
	w            io.Writer
	frame        int
	started      time.Time
	running      bool
	stop, done   chan struct{}
	lastRendered string
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, label string) *Spinner {
	return &Spinner{label: label, w: w}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.render()
	go s.animate()
}

func (s *Spinner) halt() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()
	<-s.done
}

// Success stops the spinner with a check mark.
func (s *Spinner) Success() {
	s.halt()
	s.final(SymbolSuccess, ColorSuccess)
}

// Fail stops the spinner with a cross.
func (s *Spinner) Fail() {
	s.halt()
	s.final(SymbolFail, ColorError)
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	defer close(s.done)

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) clear() {
	if s.lastRendered != "" {
		fmt.Fprint(s.w, "\r"+strings.Repeat(" ", lipgloss.Width(s.lastRendered))+"\r")
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := fmt.Sprintf("%s %s...", lipgloss.NewStyle().Foreground(ColorMuted).Render(spinnerFrames[s.frame]), s.label)
	s.clear()
	fmt.Fprint(s.w, line)
	s.lastRendered = line
}

func (s *Spinner) final(symbol string, color lipgloss.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clear()
	elapsed := lipgloss.NewStyle().Foreground(ColorMuted).Render(formatDuration(time.Since(s.started)))
	fmt.Fprintf(s.w, "%s %s %s\n", lipgloss.NewStyle().Foreground(color).Render(symbol), s.label, elapsed)
	s.lastRendered = ""
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
