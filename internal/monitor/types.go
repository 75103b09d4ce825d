package monitor

import "context"

// Collector produces one raw reading per call. Implementations return an
// error when the data is unavailable this tick; panels show that as a
// sentinel and keep running.
type Collector[T any] interface {
	Collect(ctx context.Context) (T, error)
}

// CollectorFunc adapts a function to Collector.
type CollectorFunc[T any] func(ctx context.Context) (T, error)

// Collect calls f.
func (f CollectorFunc[T]) Collect(ctx context.Context) (T, error) {
	return f(ctx)
}

// Source types, one per metric domain.
type (
	CPUSource     = Collector[CPUSnapshot]
	MemorySource  = Collector[MemInfo]
	NetworkSource = Collector[[]NetCounters]
	DiskSource    = Collector[[]DiskRate]
	ProcessSource = Collector[[]ProcessInfo]
	GPUSource     = Collector[[]GPUStats]
)

// CPUSnapshot is a cumulative /proc/stat style reading.
type CPUSnapshot struct {
	Ticks   CPUTicks
	Cores   int
	LoadAvg [3]float64
}

// MemInfo holds memory totals in bytes.
type MemInfo struct {
	Total     uint64
	Free      uint64
	Available uint64
	Buffers   uint64
	Cached    uint64
	SwapTotal uint64
	SwapFree  uint64
}

// Used is Total minus Free, Buffers and Cached.
func (m MemInfo) Used() uint64 {
	reclaimable := m.Free + m.Buffers + m.Cached
	if reclaimable >= m.Total {
		return 0
	}
	return m.Total - reclaimable
}

// UsedPercent is Used as a share of Total.
func (m MemInfo) UsedPercent() float64 {
	if m.Total == 0 {
		return 0
	}
	return clampPercent(100 * float64(m.Used()) / float64(m.Total))
}

// SwapUsed is SwapTotal minus SwapFree.
func (m MemInfo) SwapUsed() uint64 {
	if m.SwapFree >= m.SwapTotal {
		return 0
	}
	return m.SwapTotal - m.SwapFree
}

// SwapPercent is SwapUsed as a share of SwapTotal.
func (m MemInfo) SwapPercent() float64 {
	if m.SwapTotal == 0 {
		return 0
	}
	return clampPercent(100 * float64(m.SwapUsed()) / float64(m.SwapTotal))
}

// NetCounters are cumulative byte counters for one interface.
type NetCounters struct {
	Name    string
	RxBytes uint64
	TxBytes uint64
}

// DiskRate is a per-device throughput already averaged by the source.
type DiskRate struct {
	Device    string
	ReadKBps  float64
	WriteKBps float64
}

// ProcIO are cumulative storage byte counters for one process.
type ProcIO struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// ProcessInfo is one row of the process table. IO is nil when the
// counters could not be read (permission denied, process exited).
type ProcessInfo struct {
	PID        int32
	Name       string
	CPUPercent float64
	MemPercent float64
	IO         *ProcIO
}

// GPUStats is one device's telemetry. Pointer fields are nil when the
// driver reports the value as not available.
type GPUStats struct {
	Index        int
	Name         string
	Utilization  *float64 // percent
	MemUsedMiB   *float64
	MemTotalMiB  *float64
	PowerWatts   *float64
	TempCelsius  *float64
	FanPercent   *float64
	PState       string
	ClockCoreMHz *float64
	ClockMemMHz  *float64
}

// MemPercent is used memory as a share of total, or nil if either is missing.
func (g GPUStats) MemPercent() *float64 {
	if g.MemUsedMiB == nil || g.MemTotalMiB == nil || *g.MemTotalMiB == 0 {
		return nil
	}
	p := clampPercent(100 * *g.MemUsedMiB / *g.MemTotalMiB)
	return &p
}
