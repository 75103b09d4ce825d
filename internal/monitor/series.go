package monitor

import "math"

// TimeSeries is a fixed-width window of samples, oldest first. It is created
// zero-filled so Values always has exactly Width entries; each Push evicts
// the oldest sample.
//
// A series belongs to one panel and is not safe for concurrent use.
type TimeSeries struct {
	data []float64
	head int // next write position, which is also the oldest sample
}

// NewTimeSeries creates a zero-filled series of the given width.
// Widths below 1 are raised to 1.
func NewTimeSeries(width int) *TimeSeries {
	if width < 1 {
		width = 1
	}
	return &TimeSeries{data: make([]float64, width)}
}

// Width returns the series capacity.
func (s *TimeSeries) Width() int {
	return len(s.data)
}

// Push appends v as the newest sample. Negative, NaN and infinite samples
// are stored as 0.
func (s *TimeSeries) Push(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		v = 0
	}
	s.data[s.head] = v
	s.head = (s.head + 1) % len(s.data)
}

// Values returns a copy of the samples in chronological order.
func (s *TimeSeries) Values() []float64 {
	out := make([]float64, len(s.data))
	n := copy(out, s.data[s.head:])
	copy(out[n:], s.data[:s.head])
	return out
}

// Latest returns the newest sample.
func (s *TimeSeries) Latest() float64 {
	return s.data[(s.head-1+len(s.data))%len(s.data)]
}

// Max returns the largest sample in the window.
func (s *TimeSeries) Max() float64 {
	maxVal := 0.0
	for _, v := range s.data {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// Resize changes the width, keeping the newest samples. Growing pads the
// oldest end with zeros.
func (s *TimeSeries) Resize(width int) {
	if width < 1 {
		width = 1
	}
	if width == len(s.data) {
		return
	}
	values := s.Values()
	next := make([]float64, width)
	if width < len(values) {
		copy(next, values[len(values)-width:])
	} else {
		copy(next[width-len(values):], values)
	}
	s.data = next
	s.head = 0
}
