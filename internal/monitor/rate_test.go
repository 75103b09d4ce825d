package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestRateTrackerFirstObservationUnknown(t *testing.T) {
	rt := NewRateTracker()
	rate, ok := rt.Observe("eth0/rx", 1_000_000, t0)
	assert.False(t, ok)
	assert.Zero(t, rate)
	assert.True(t, rt.Has("eth0/rx"))
}

func TestRateTrackerObserve(t *testing.T) {
	tests := []struct {
		name    string
		first   uint64
		second  uint64
		elapsed time.Duration
		want    float64
	}{
		{name: "steady", first: 1_000_000, second: 3_000_000, elapsed: time.Second, want: 2_000_000},
		{name: "half second", first: 0, second: 500, elapsed: 500 * time.Millisecond, want: 1000},
		{name: "no change", first: 42, second: 42, elapsed: time.Second, want: 0},
		{name: "wraparound", first: 5000, second: 10, elapsed: time.Second, want: 0},
		{name: "zero interval uses epsilon", first: 0, second: 1, elapsed: 0, want: 1000},
		{name: "clock went backwards", first: 0, second: 1, elapsed: -time.Second, want: 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := NewRateTracker()
			rt.Observe("k", tt.first, t0)
			rate, ok := rt.Observe("k", tt.second, t0.Add(tt.elapsed))
			assert.True(t, ok)
			assert.InDelta(t, tt.want, rate, 1e-9)
			assert.GreaterOrEqual(t, rate, 0.0)
		})
	}
}

func TestRateTrackerOverwritesBaseline(t *testing.T) {
	rt := NewRateTracker()
	rt.Observe("k", 100, t0)
	rt.Observe("k", 50, t0.Add(time.Second)) // reset
	rate, ok := rt.Observe("k", 150, t0.Add(2*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 100.0, rate)
}

func TestRateTrackerKeysAreIndependent(t *testing.T) {
	rt := NewRateTracker()
	rt.Observe("1/read", 0, t0)
	rt.Observe("1/write", 0, t0)

	read, _ := rt.Observe("1/read", 4096, t0.Add(time.Second))
	write, _ := rt.Observe("1/write", 1024, t0.Add(time.Second))
	assert.Equal(t, 4096.0, read)
	assert.Equal(t, 1024.0, write)
}

func TestRateTrackerFormatsNetworkScenario(t *testing.T) {
	rt := NewRateTracker()
	rt.Observe("eth0/rx", 1_000_000, t0)
	rate, ok := rt.Observe("eth0/rx", 3_000_000, t0.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, "1.9 MB/s", FormatBytes(rate, true))
}

func TestRateTrackerPrune(t *testing.T) {
	rt := NewRateTracker()
	rt.Observe("100/read", 0, t0)
	rt.Observe("200/read", 0, t0)
	assert.Equal(t, 0, rt.Prune())
	assert.Equal(t, 2, rt.Len())

	// only pid 100 is still around next tick
	rt.Observe("100/read", 10, t0.Add(time.Second))
	assert.Equal(t, 1, rt.Prune())
	assert.True(t, rt.Has("100/read"))
	assert.False(t, rt.Has("200/read"))

	// a key that returns starts over as unknown
	_, ok := rt.Observe("200/read", 99, t0.Add(2*time.Second))
	assert.False(t, ok)
}

func TestRateTrackerKeys(t *testing.T) {
	tr := NewRateTracker()
	assert.Empty(t, tr.Keys())

	tr.Observe("eth0/tx", 1, t0)
	tr.Observe("eth0/rx", 1, t0)
	tr.Observe("42/read", 1, t0)
	keys := tr.Keys()
	assert.Equal(t, []string{"42/read", "eth0/rx", "eth0/tx"}, keys)

	keys[0] = "changed"
	assert.False(t, tr.Has("changed"), "Keys returns a copy")
	assert.True(t, tr.Has("42/read"))
}

func TestCPUUsage(t *testing.T) {
	tests := []struct {
		name string
		prev CPUTicks
		cur  CPUTicks
		want float64
	}{
		{name: "half busy", prev: CPUTicks{Total: 1000, Idle: 900}, cur: CPUTicks{Total: 1200, Idle: 1000}, want: 50},
		{name: "fully busy", prev: CPUTicks{Total: 0, Idle: 0}, cur: CPUTicks{Total: 100, Idle: 0}, want: 100},
		{name: "fully idle", prev: CPUTicks{Total: 0, Idle: 0}, cur: CPUTicks{Total: 100, Idle: 100}, want: 0},
		{name: "total did not advance", prev: CPUTicks{Total: 100, Idle: 50}, cur: CPUTicks{Total: 100, Idle: 50}, want: 0},
		{name: "total went backwards", prev: CPUTicks{Total: 100, Idle: 50}, cur: CPUTicks{Total: 10, Idle: 5}, want: 0},
		{name: "idle ran ahead of total", prev: CPUTicks{Total: 100, Idle: 50}, cur: CPUTicks{Total: 110, Idle: 80}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CPUUsage(tt.prev, tt.cur), 1e-9)
		})
	}
}

func TestCPUTracker(t *testing.T) {
	var c CPUTracker
	_, ok := c.Observe(CPUTicks{Total: 1000, Idle: 900})
	assert.False(t, ok)

	usage, ok := c.Observe(CPUTicks{Total: 1200, Idle: 1000})
	assert.True(t, ok)
	assert.Equal(t, 50.0, usage)
}
