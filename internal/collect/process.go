package collect

import (
	"context"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/monitor"
	"github.com/rileyhilliard/tmon/internal/monitor/parsers"
)

// ProcessSource lists the busiest processes and attaches cumulative I/O
// counters to the top N of them.
type ProcessSource struct {
	host Host
	topN int
	list func(ctx context.Context) ([]monitor.ProcessInfo, error)
}

var _ monitor.ProcessSource = (*ProcessSource)(nil)

// Processes creates a process source. Local hosts are listed through
// gopsutil; remote hosts through ps.
func Processes(h Host, topN int) *ProcessSource {
	s := &ProcessSource{host: h, topN: topN}
	if h.IsLocal() {
		s.list = listLocal
	} else {
		s.list = s.listPS
	}
	return s
}

func (s *ProcessSource) Collect(ctx context.Context) ([]monitor.ProcessInfo, error) {
	procs, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	top := monitor.TopByCPU(procs, s.topN)
	s.attachIO(ctx, top)
	return top, nil
}

func listLocal(ctx context.Context) ([]monitor.ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCollect, "Couldn't list processes", "")
	}

	// One meminfo read per tick; the per-process percent call rereads it.
	var total uint64
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		total = vm.Total
	}

	out := make([]monitor.ProcessInfo, 0, len(procs))
	for _, p := range procs {
		// Processes exit between listing and inspection.
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cpu, _ := p.CPUPercentWithContext(ctx)
		var rss uint64
		if info, err := p.MemoryInfoWithContext(ctx); err == nil && info != nil {
			rss = info.RSS
		}
		out = append(out, monitor.ProcessInfo{
			PID:        p.Pid,
			Name:       name,
			CPUPercent: cpu,
			MemPercent: memPercent(rss, total),
		})
	}
	return out, nil
}

// memPercent is rss as a share of total memory, 0 when total is unknown.
func memPercent(rss, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(rss) / float64(total)
}

func (s *ProcessSource) listPS(ctx context.Context) ([]monitor.ProcessInfo, error) {
	out, err := s.host.Run(ctx, ToolPS, parsers.PSArgs...)
	if err != nil {
		return nil, err
	}
	procs, err := parsers.ParsePS(out)
	if err != nil {
		return nil, parseErr(err, "ps output")
	}
	return procs, nil
}

// attachIO fills IO where the counters are readable. Unreadable entries
// (permission, exited process) stay nil.
func (s *ProcessSource) attachIO(ctx context.Context, procs []monitor.ProcessInfo) {
	if len(procs) == 0 {
		return
	}

	if s.host.IsLocal() {
		for i := range procs {
			raw, err := s.host.ReadFile(ctx, procIOPath(procs[i].PID))
			if err != nil {
				continue
			}
			if io, err := parsers.ParseProcIO(raw); err == nil {
				procs[i].IO = &io
			}
		}
		return
	}

	// One round trip for every PID. grep exits non-zero when some files
	// are unreadable but still prints the rest.
	paths := make([]string, len(procs))
	for i, p := range procs {
		paths[i] = procIOPath(p.PID)
	}
	out, _ := s.host.Run(ctx, "grep", append([]string{"-H", "_bytes"}, paths...)...)
	counters := parsers.ParseProcIOBatch(out)
	for i := range procs {
		if io, ok := counters[procs[i].PID]; ok {
			procs[i].IO = &io
		}
	}
}
