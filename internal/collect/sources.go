package collect

import (
	"context"
	"fmt"

	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/monitor"
	"github.com/rileyhilliard/tmon/internal/monitor/parsers"
)

// Files read from procfs.
const (
	ProcStat    = "/proc/stat"
	ProcLoadavg = "/proc/loadavg"
	ProcMeminfo = "/proc/meminfo"
	ProcNetDev  = "/proc/net/dev"
)

// Tools run on the host.
const (
	ToolIostat    = "iostat"
	ToolNvidiaSMI = "nvidia-smi"
	ToolPS        = "ps"
)

func parseErr(err error, what string) error {
	return errors.WrapWithCode(err, errors.ErrCollect, "Couldn't parse "+what, "")
}

// CPU reads cumulative tick counters. Load averages are best effort.
func CPU(h Host) monitor.CPUSource {
	return monitor.CollectorFunc[monitor.CPUSnapshot](func(ctx context.Context) (monitor.CPUSnapshot, error) {
		raw, err := h.ReadFile(ctx, ProcStat)
		if err != nil {
			return monitor.CPUSnapshot{}, err
		}
		snap, err := parsers.ParseProcStat(raw)
		if err != nil {
			return monitor.CPUSnapshot{}, parseErr(err, ProcStat)
		}
		if raw, err := h.ReadFile(ctx, ProcLoadavg); err == nil {
			snap.LoadAvg, _ = parsers.ParseLoadAvg(raw)
		}
		return snap, nil
	})
}

// Memory reads /proc/meminfo.
func Memory(h Host) monitor.MemorySource {
	return monitor.CollectorFunc[monitor.MemInfo](func(ctx context.Context) (monitor.MemInfo, error) {
		raw, err := h.ReadFile(ctx, ProcMeminfo)
		if err != nil {
			return monitor.MemInfo{}, err
		}
		info, err := parsers.ParseMeminfo(raw)
		if err != nil {
			return monitor.MemInfo{}, parseErr(err, ProcMeminfo)
		}
		return info, nil
	})
}

// Network reads per-interface byte counters.
func Network(h Host) monitor.NetworkSource {
	return monitor.CollectorFunc[[]monitor.NetCounters](func(ctx context.Context) ([]monitor.NetCounters, error) {
		raw, err := h.ReadFile(ctx, ProcNetDev)
		if err != nil {
			return nil, err
		}
		ifaces, err := parsers.ParseNetDev(raw)
		if err != nil {
			return nil, parseErr(err, ProcNetDev)
		}
		return ifaces, nil
	})
}

// GPU samples nvidia-smi. A host without the tool reports the source as
// unavailable rather than as zero GPUs.
func GPU(h Host) monitor.GPUSource {
	return monitor.CollectorFunc[[]monitor.GPUStats](func(ctx context.Context) ([]monitor.GPUStats, error) {
		out, err := h.Run(ctx, ToolNvidiaSMI, parsers.NvidiaSMIArgs...)
		if err != nil {
			return nil, err
		}
		gpus, err := parsers.ParseNvidiaSMI(out)
		if err != nil {
			return nil, parseErr(err, "nvidia-smi output")
		}
		if len(gpus) == 0 {
			return nil, errors.New(errors.ErrCollect, "nvidia-smi reported no GPUs", "")
		}
		return gpus, nil
	})
}

// procIOPath is the per-process I/O accounting file.
func procIOPath(pid int32) string {
	return fmt.Sprintf("/proc/%d/io", pid)
}
