package monitor

import (
	"maps"
	"slices"
	"time"
)

// minRateInterval replaces a zero or negative observation gap so a rate is
// never divided by zero.
const minRateInterval = time.Millisecond

// rateEntry is the last observation for one key.
type rateEntry struct {
	counter uint64
	at      time.Time
	seen    bool // observed since the last Prune
}

// RateTracker turns monotonically increasing counters into per-second rates,
// keeping one previous observation per key (PID, interface, device).
//
// A tracker is owned by a single panel and is not safe for concurrent use.
type RateTracker struct {
	entries map[string]*rateEntry
}

// NewRateTracker creates an empty tracker.
func NewRateTracker() *RateTracker {
	return &RateTracker{entries: make(map[string]*rateEntry)}
}

// Observe records counter for key at now and returns the per-second rate
// since the previous observation of key. ok is false on the first
// observation: there is no baseline yet, so the caller must not plot it.
//
// A counter that went backwards (reset or wraparound) yields 0.
func (t *RateTracker) Observe(key string, counter uint64, now time.Time) (rate float64, ok bool) {
	prev, exists := t.entries[key]
	if !exists {
		t.entries[key] = &rateEntry{counter: counter, at: now, seen: true}
		return 0, false
	}

	var delta uint64
	if counter > prev.counter {
		delta = counter - prev.counter
	}
	elapsed := now.Sub(prev.at)
	if elapsed <= 0 {
		elapsed = minRateInterval
	}

	prev.counter = counter
	prev.at = now
	prev.seen = true

	return float64(delta) / elapsed.Seconds(), true
}

// Prune drops every key not observed since the previous Prune and returns
// how many were removed. Panels call it once per tick so entries for exited
// processes and vanished interfaces don't accumulate; a key that comes back
// later starts over as unknown.
func (t *RateTracker) Prune() int {
	removed := 0
	for key, e := range t.entries {
		if !e.seen {
			delete(t.entries, key)
			removed++
			continue
		}
		e.seen = false
	}
	return removed
}

// Len returns the number of tracked keys.
func (t *RateTracker) Len() int {
	return len(t.entries)
}

// Keys returns the tracked keys in sorted order.
func (t *RateTracker) Keys() []string {
	return slices.Sorted(maps.Keys(t.entries))
}

// Has reports whether key has a stored observation.
func (t *RateTracker) Has(key string) bool {
	_, ok := t.entries[key]
	return ok
}

// CPUTicks is a cumulative reading of aggregate CPU time.
type CPUTicks struct {
	Total uint64
	Idle  uint64
}

// CPUUsage returns the busy percentage between two tick readings:
// 100 * (dTotal - dIdle) / dTotal, clamped to [0,100]. It is 0 when total
// did not advance.
func CPUUsage(prev, cur CPUTicks) float64 {
	if cur.Total <= prev.Total {
		return 0
	}
	dTotal := cur.Total - prev.Total

	var dIdle uint64
	if cur.Idle > prev.Idle {
		dIdle = cur.Idle - prev.Idle
	}
	if dIdle > dTotal {
		return 0
	}

	return clampPercent(100 * float64(dTotal-dIdle) / float64(dTotal))
}

// CPUTracker keeps the previous tick reading for CPUUsage.
type CPUTracker struct {
	prev    CPUTicks
	hasPrev bool
}

// Observe returns usage since the previous reading; ok is false on the first.
func (c *CPUTracker) Observe(cur CPUTicks) (usage float64, ok bool) {
	defer func() {
		c.prev = cur
		c.hasPrev = true
	}()
	if !c.hasPrev {
		return 0, false
	}
	return CPUUsage(c.prev, cur), true
}

// clampPercent limits v to [0,100]; NaN becomes 0.
func clampPercent(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
