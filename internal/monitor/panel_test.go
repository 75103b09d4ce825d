package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tmonerrors "github.com/rileyhilliard/tmon/internal/errors"
)

// fakeRecorder keeps the latest value per metric and entity.
type fakeRecorder struct {
	values    map[Metric]map[string]float64
	forgotten []string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{values: make(map[Metric]map[string]float64)}
}

func (r *fakeRecorder) Record(m Metric, entity string, v float64) {
	if r.values[m] == nil {
		r.values[m] = make(map[string]float64)
	}
	r.values[m][entity] = v
}

func (r *fakeRecorder) Forget(m Metric, entity string) {
	r.forgotten = append(r.forgotten, string(m)+":"+entity)
	delete(r.values[m], entity)
}

func (r *fakeRecorder) has(m Metric, entity string) bool {
	_, ok := r.values[m][entity]
	return ok
}

func at(sec int) time.Time { return t0.Add(time.Duration(sec) * time.Second) }

func f64(v float64) *float64 { return &v }

func TestCPUPanel(t *testing.T) {
	rec := newFakeRecorder()
	beeper := &countingBeeper{}
	p := NewCPUPanel(nil, PanelOptions{Width: 4, Height: 5, Recorder: rec, Alert: syncGate(50, beeper)})

	t.Run("first reading is unknown and not plotted", func(t *testing.T) {
		p.Apply(Reading{At: at(0), Value: CPUSnapshot{Ticks: CPUTicks{Total: 100, Idle: 50}, Cores: 4}})
		assert.Equal(t, []float64{0, 0, 0, 0}, p.series.Values())
		assert.False(t, rec.has(MetricCPUPercent, ""))
		assert.Contains(t, p.View(at(0)), "sampling...")
		assert.Zero(t, beeper.count())
	})

	t.Run("second reading plots usage and alerts", func(t *testing.T) {
		p.Apply(Reading{At: at(1), Value: CPUSnapshot{Ticks: CPUTicks{Total: 200, Idle: 75}, Cores: 4}})
		assert.InDelta(t, 75.0, p.series.Latest(), 0.001)
		assert.InDelta(t, 75.0, rec.values[MetricCPUPercent][""], 0.001)
		assert.Equal(t, 3, beeper.count())

		view := p.View(at(1))
		assert.Contains(t, view, "75%")
		assert.Contains(t, view, "4 cores")
		assert.Contains(t, view, "▲ above 50%")
	})

	t.Run("error pushes zero and shows N/A", func(t *testing.T) {
		p.Apply(Reading{At: at(2), Err: errors.New("read /proc/stat: gone\nmore detail")})
		assert.Zero(t, p.series.Latest())
		view := p.View(at(2))
		assert.Contains(t, view, NotAvailable+": read /proc/stat: gone")
		assert.NotContains(t, view, "more detail")
	})

	t.Run("error clears the stale header", func(t *testing.T) {
		header := firstLine(p.View(at(2)))
		assert.NotContains(t, header, "75%")
		assert.NotContains(t, header, "▲ above")
		assert.Contains(t, header, NotAvailable)
		assert.NotContains(t, p.View(at(2)), "4 cores")
	})

	t.Run("recovers on the next good reading", func(t *testing.T) {
		p.Apply(Reading{At: at(3), Value: CPUSnapshot{Ticks: CPUTicks{Total: 300, Idle: 175}, Cores: 4}})
		view := p.View(at(3))
		assert.Contains(t, firstLine(view), "0%")
		assert.NotContains(t, firstLine(view), NotAvailable)
		assert.Contains(t, view, "4 cores")
	})
}

func TestPanelHeaderAfterFailedTick(t *testing.T) {
	mem := MemInfo{Total: 16 * gib, Free: 1 * gib, Available: 2 * gib}
	gpu := []GPUStats{{Index: 0, Name: "A100", Utilization: f64(95)}}
	boom := errors.New("collector gone")

	tests := []struct {
		name  string
		panel Panel
		good  any
		stale []string
	}{
		{
			name:  "memory",
			panel: NewMemoryPanel(nil, PanelOptions{Width: 4, Alert: syncGate(50, nil)}),
			good:  mem,
			stale: []string{"94%", "▲ above", "available"},
		},
		{
			name:  "gpu",
			panel: NewGPUPanel(nil, PanelOptions{Width: 4, Alert: syncGate(50, nil)}),
			good:  gpu,
			stale: []string{"1 device(s)", "▲ above", "util 95%", "A100"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.panel.Apply(Reading{At: at(0), Value: tt.good})
			before := tt.panel.View(at(0))
			for _, s := range tt.stale {
				require.Contains(t, before, s)
			}

			tt.panel.Apply(Reading{At: at(1), Err: boom})
			after := tt.panel.View(at(1))
			for _, s := range tt.stale {
				assert.NotContains(t, after, s)
			}
			assert.Contains(t, firstLine(after), NotAvailable)
			assert.Contains(t, after, NotAvailable+": collector gone")
		})
	}
}

func TestPanelStatusUsesErrorMessage(t *testing.T) {
	p := NewMemoryPanel(nil, PanelOptions{Width: 4})
	p.Apply(Reading{At: at(0), Err: tmonerrors.WrapWithCode(errors.New("permission denied"),
		tmonerrors.ErrCollect, "Couldn't read /proc/meminfo", "")})

	view := p.View(at(0))
	assert.Contains(t, view, NotAvailable+": Couldn't read /proc/meminfo")
	assert.NotContains(t, view, "✗")
}

func TestCPUPanelCollect(t *testing.T) {
	boom := errors.New("boom")
	src := CollectorFunc[CPUSnapshot](func(context.Context) (CPUSnapshot, error) {
		return CPUSnapshot{}, boom
	})
	r := NewCPUPanel(src, PanelOptions{}).Collect(context.Background())
	assert.ErrorIs(t, r.Err, boom)
	assert.Nil(t, r.Value)
	assert.False(t, r.At.IsZero())
}

func TestMemoryPanel(t *testing.T) {
	rec := newFakeRecorder()
	p := NewMemoryPanel(nil, PanelOptions{Width: 4, Height: 5, Recorder: rec})
	assert.Contains(t, p.View(at(0)), "sampling...")

	p.Apply(Reading{At: at(0), Value: MemInfo{
		Total: 16 * gib, Free: 4 * gib, Buffers: 1 * gib, Cached: 3 * gib, Available: 8 * gib,
		SwapTotal: 4 * gib, SwapFree: 3 * gib,
	}})

	assert.InDelta(t, 50.0, p.series.Latest(), 0.001)
	assert.InDelta(t, 50.0, rec.values[MetricMemPercent][""], 0.001)
	assert.InDelta(t, 25.0, rec.values[MetricSwapPercent][""], 0.001)

	view := p.View(at(0))
	assert.Contains(t, view, "50%  8.0 GB / 16.0 GB")
	assert.Contains(t, view, "1.0 GB / 4.0 GB")
}

func TestMemoryPanelNoSwap(t *testing.T) {
	p := NewMemoryPanel(nil, PanelOptions{Width: 4})
	p.Apply(Reading{At: at(0), Value: MemInfo{Total: gib, Free: gib}})
	assert.Contains(t, p.View(at(0)), "swap "+NotAvailable)
}

func TestNetworkPanel(t *testing.T) {
	rec := newFakeRecorder()
	p := NewNetworkPanel(nil, PanelOptions{Width: 4, Height: 5, Recorder: rec})

	p.Apply(Reading{At: at(0), Value: []NetCounters{
		{Name: "lo", RxBytes: 1000, TxBytes: 1000},
		{Name: "eth0", RxBytes: 1000, TxBytes: 2000},
	}})
	require.Len(t, p.rows, 1, "loopback is excluded")
	assert.False(t, p.rows[0].known)
	assert.Equal(t, []float64{0, 0, 0, 0}, p.rx.Values(), "first tick is not plotted")
	assert.Contains(t, p.View(at(0)), "--")

	p.Apply(Reading{At: at(1), Value: []NetCounters{
		{Name: "eth0", RxBytes: 1000 + 2048, TxBytes: 2000 + 1024},
		{Name: "wlan0", RxBytes: 500, TxBytes: 500},
	}})
	require.Len(t, p.rows, 2)
	assert.Equal(t, "eth0", p.rows[0].name)
	assert.InDelta(t, 2.0, p.rx.Latest(), 0.001)
	assert.InDelta(t, 1.0, p.tx.Latest(), 0.001)
	assert.InDelta(t, 2048.0, rec.values[MetricNetRx]["eth0"], 0.001)
	assert.False(t, rec.has(MetricNetRx, "wlan0"))

	p.Apply(Reading{At: at(2), Value: []NetCounters{
		{Name: "wlan0", RxBytes: 1524, TxBytes: 500},
	}})
	assert.InDelta(t, 1.0, p.rx.Latest(), 0.001)
	assert.Contains(t, rec.forgotten, string(MetricNetRx)+":eth0")
	assert.False(t, p.tracker.Has("eth0/rx"), "vanished interface is pruned")
	assert.True(t, p.tracker.Has("wlan0/rx"))
}

func TestNetworkPanelIncludeLoopback(t *testing.T) {
	p := NewNetworkPanel(nil, PanelOptions{Width: 4, IncludeLoopback: true})
	p.Apply(Reading{At: at(0), Value: []NetCounters{{Name: "lo"}, {Name: "eth0"}}})
	assert.Len(t, p.rows, 2)
}

func TestIsLoopback(t *testing.T) {
	assert.True(t, IsLoopback("lo"))
	assert.False(t, IsLoopback("eth0"))
	assert.False(t, IsLoopback("lowpan0"))
}

func TestDiskPanel(t *testing.T) {
	rec := newFakeRecorder()
	p := NewDiskPanel(nil, PanelOptions{Width: 4, Height: 5, Recorder: rec})

	p.Apply(Reading{At: at(0), Value: []DiskRate{
		{Device: "sdb", ReadKBps: 10, WriteKBps: 20},
		{Device: "sda", ReadKBps: 4, WriteKBps: 8},
	}})
	assert.InDelta(t, 14.0, p.read.Latest(), 0.001)
	assert.InDelta(t, 28.0, p.write.Latest(), 0.001)
	require.Len(t, p.devices, 2)
	assert.Equal(t, "sda", p.devices[0].Device)
	assert.InDelta(t, 4096.0, rec.values[MetricDiskRead]["sda"], 0.001)

	view := p.View(at(0))
	assert.Contains(t, view, "read 14.0 KB/s")
	assert.Contains(t, view, "write 28.0 KB/s")

	p.Apply(Reading{At: at(1), Value: []DiskRate{{Device: "sda"}}})
	assert.Contains(t, rec.forgotten, string(MetricDiskRead)+":sdb")
	assert.Zero(t, p.read.Latest())
}

func TestProcessPanel(t *testing.T) {
	rec := newFakeRecorder()
	p := NewProcessPanel(nil, PanelOptions{Width: 4, Height: 5, Recorder: rec, TopN: 2})

	p.Apply(Reading{At: at(0), Value: []ProcessInfo{
		{PID: 1, Name: "worker", CPUPercent: 10, IO: &ProcIO{ReadBytes: 100, WriteBytes: 200}},
		{PID: 2, Name: "locked", CPUPercent: 50},
		{PID: 3, Name: "idle", CPUPercent: 1, IO: &ProcIO{}},
	}})
	rows := p.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, int32(2), rows[0].PID)
	require.NotNil(t, rows[0].ReadRate, "unreadable counters show a zero rate")
	assert.Zero(t, *rows[0].ReadRate)
	assert.Nil(t, rows[1].ReadRate, "first observation is unknown")
	assert.Contains(t, p.View(at(0)), "--")

	p.Apply(Reading{At: at(1), Value: []ProcessInfo{
		{PID: 1, Name: "worker", CPUPercent: 10, IO: &ProcIO{ReadBytes: 100 + 1024, WriteBytes: 200 + 2048}},
		{PID: 2, Name: "locked", CPUPercent: 50},
	}})
	rows = p.Rows()
	require.NotNil(t, rows[1].ReadRate)
	assert.InDelta(t, 1024.0, *rows[1].ReadRate, 0.001)
	assert.InDelta(t, 2048.0, *rows[1].WriteRate, 0.001)
	assert.InDelta(t, 1.0, p.read.Latest(), 0.001)
	assert.InDelta(t, 2.0, p.write.Latest(), 0.001)
	assert.InDelta(t, 1024.0, rec.values[MetricProcRead]["1"], 0.001)

	p.Apply(Reading{At: at(2), Value: []ProcessInfo{{PID: 2, Name: "locked", CPUPercent: 50}}})
	assert.Contains(t, rec.forgotten, string(MetricProcRead)+":1")
	assert.Zero(t, p.tracker.Len())
}

func TestGPUPanel(t *testing.T) {
	rec := newFakeRecorder()
	p := NewGPUPanel(nil, PanelOptions{Width: 4, Height: 5, Recorder: rec, Alert: NewAlertGate(90, 0, 0, false)})

	p.Apply(Reading{At: at(0), Value: []GPUStats{
		{Index: 0, Name: "Tesla T4", Utilization: f64(95), MemUsedMiB: f64(1024), MemTotalMiB: f64(15360), PState: "P0"},
		{Index: 1, Name: "Tesla T4"},
	}})
	assert.InDelta(t, 95.0, p.series[0].Latest(), 0.001)
	assert.Zero(t, p.series[1].Latest())
	assert.InDelta(t, 95.0, rec.values[MetricGPUPercent]["0"], 0.001)
	assert.False(t, rec.has(MetricGPUPercent, "1"))

	view := p.View(at(0))
	assert.Contains(t, view, "2 device(s)")
	assert.Contains(t, view, "util 95%")
	assert.Contains(t, view, "power "+NotAvailable)
	assert.Contains(t, view, "1.0 GB / 15.0 GB")
	assert.Contains(t, view, "▲ above 90%")

	p.Apply(Reading{At: at(1), Value: []GPUStats{{Index: 0, Name: "Tesla T4"}}})
	assert.NotContains(t, p.View(at(1)), "▲ above")
}

func TestPanelResize(t *testing.T) {
	p := NewCPUPanel(nil, PanelOptions{})
	assert.Equal(t, defaultGraphWidth, p.series.Width())

	p.Resize(100)
	assert.Equal(t, 100-gutterReserve, p.series.Width())

	p.Resize(5)
	assert.Equal(t, minGraphWidth, p.series.Width())

	pinned := NewCPUPanel(nil, PanelOptions{Width: 30})
	pinned.Resize(200)
	assert.Equal(t, 30, pinned.series.Width())
}
