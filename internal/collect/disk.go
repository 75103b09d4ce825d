package collect

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"

	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/monitor"
	"github.com/rileyhilliard/tmon/internal/monitor/parsers"
)

// ioCounters is disk.IOCountersWithContext, swappable in tests.
type ioCounters func(ctx context.Context, names ...string) (map[string]disk.IOCountersStat, error)

// DiskSource reports per-device throughput. It prefers iostat, which
// averages over one second and so stands in for the tick wait. Without
// iostat a local host falls back to kernel counters turned into rates.
type DiskSource struct {
	host     Host
	once     sync.Once
	iostat   bool
	counters ioCounters
	tracker  *monitor.RateTracker
	now      func() time.Time
}

var _ monitor.DiskSource = (*DiskSource)(nil)

// Disk creates a disk source for h.
func Disk(h Host) *DiskSource {
	return &DiskSource{
		host:     h,
		counters: disk.IOCountersWithContext,
		tracker:  monitor.NewRateTracker(),
		now:      time.Now,
	}
}

// UsesIostat reports which strategy the source settled on. It is only
// meaningful after the first Collect.
func (d *DiskSource) UsesIostat() bool {
	return d.iostat
}

func (d *DiskSource) Collect(ctx context.Context) ([]monitor.DiskRate, error) {
	d.once.Do(func() {
		d.iostat = d.host.HasTool(ctx, ToolIostat)
	})

	if d.iostat {
		out, err := d.host.Run(ctx, ToolIostat, parsers.IostatArgs...)
		if err != nil {
			return nil, err
		}
		rates, err := parsers.ParseIostat(out)
		if err != nil {
			return nil, parseErr(err, "iostat output")
		}
		return rates, nil
	}

	if !d.host.IsLocal() {
		return nil, errors.New(errors.ErrDeps, "iostat is not installed on "+d.host.Name(),
			"Install the sysstat package on the remote host")
	}
	return d.fromCounters(ctx)
}

// fromCounters derives rates from cumulative byte counters. Devices appear
// once they have two observations.
func (d *DiskSource) fromCounters(ctx context.Context) ([]monitor.DiskRate, error) {
	stats, err := d.counters(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't read disk counters", "")
	}

	now := d.now()
	rates := make([]monitor.DiskRate, 0, len(stats))
	for name, s := range stats {
		read, okRead := d.tracker.Observe(name+"/read", s.ReadBytes, now)
		write, okWrite := d.tracker.Observe(name+"/write", s.WriteBytes, now)
		if !okRead || !okWrite {
			continue
		}
		rates = append(rates, monitor.DiskRate{
			Device:    name,
			ReadKBps:  read / 1024,
			WriteKBps: write / 1024,
		})
	}
	d.tracker.Prune()

	sort.Slice(rates, func(i, j int) bool { return rates[i].Device < rates[j].Device })
	return rates, nil
}
