package monitor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ProcessPanel lists the busiest processes with per-process storage I/O
// rates, and overlays their summed read (A) and write (B) rates in KB/s.
type ProcessPanel struct {
	panelBase
	src         ProcessSource
	tracker     *RateTracker
	read, write *TimeSeries
	rows        []ProcessRow
}

// ProcessRow is one rendered process line. Rates are nil until a second
// observation of the PID exists.
type ProcessRow struct {
	ProcessInfo
	ReadRate  *float64
	WriteRate *float64
}

// NewProcessPanel creates a process panel reading from src.
func NewProcessPanel(src ProcessSource, opts PanelOptions) *ProcessPanel {
	if opts.TopN < 1 {
		opts.TopN = 35
	}
	base := newPanelBase(opts)
	return &ProcessPanel{
		panelBase: base,
		src:       src,
		tracker:   NewRateTracker(),
		read:      NewTimeSeries(base.width),
		write:     NewTimeSeries(base.width),
	}
}

func (p *ProcessPanel) Title() string { return "Processes" }

func (p *ProcessPanel) Collect(ctx context.Context) Reading {
	procs, err := p.src.Collect(ctx)
	if err != nil {
		return Reading{At: time.Now(), Err: err}
	}
	return Reading{At: time.Now(), Value: procs}
}

// TopByCPU returns the n processes with the highest CPU share, highest first.
// Ties are broken by PID so the order is stable between ticks.
func TopByCPU(procs []ProcessInfo, n int) []ProcessInfo {
	sorted := append([]ProcessInfo(nil), procs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CPUPercent != sorted[j].CPUPercent {
			return sorted[i].CPUPercent > sorted[j].CPUPercent
		}
		return sorted[i].PID < sorted[j].PID
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func (p *ProcessPanel) Apply(r Reading) {
	if !p.record(r) {
		p.read.Push(0)
		p.write.Push(0)
		return
	}
	procs, ok := r.Value.([]ProcessInfo)
	if !ok {
		return
	}

	rec := p.opts.recorder()
	top := TopByCPU(procs, p.opts.TopN)
	p.rows = p.rows[:0]
	var totalRead, totalWrite float64
	anyKnown := false
	for _, proc := range top {
		row := ProcessRow{ProcessInfo: proc}
		pid := strconv.Itoa(int(proc.PID))

		// Unreadable counters show as a zero rate.
		if proc.IO == nil {
			row.ReadRate, row.WriteRate = ptr(0.0), ptr(0.0)
		} else {
			if rate, ok := p.tracker.Observe(pid+"/read", proc.IO.ReadBytes, r.At); ok {
				row.ReadRate = &rate
			}
			if rate, ok := p.tracker.Observe(pid+"/write", proc.IO.WriteBytes, r.At); ok {
				row.WriteRate = &rate
			}
		}

		if row.ReadRate != nil && row.WriteRate != nil {
			anyKnown = true
			totalRead += *row.ReadRate
			totalWrite += *row.WriteRate
			rec.Record(MetricProcRead, pid, *row.ReadRate)
			rec.Record(MetricProcWrite, pid, *row.WriteRate)
		}
		p.rows = append(p.rows, row)
	}
	p.forgetVanished(rec, top)
	p.tracker.Prune()

	if !anyKnown {
		return
	}
	p.read.Push(totalRead / 1024)
	p.write.Push(totalWrite / 1024)
}

// forgetVanished clears exported series for PIDs that left the table.
func (p *ProcessPanel) forgetVanished(rec Recorder, top []ProcessInfo) {
	present := make(map[string]bool, len(top))
	for _, proc := range top {
		present[strconv.Itoa(int(proc.PID))] = true
	}
	for _, key := range p.tracker.Keys() {
		pid, dir, _ := strings.Cut(key, "/")
		if dir == "read" && !present[pid] {
			rec.Forget(MetricProcRead, pid)
			rec.Forget(MetricProcWrite, pid)
		}
	}
}

// Rows returns the current table.
func (p *ProcessPanel) Rows() []ProcessRow {
	return p.rows
}

func (p *ProcessPanel) Resize(termWidth int) {
	p.width = p.opts.graphWidthFor(termWidth)
	p.read.Resize(p.width)
	p.write.Resize(p.width)
}

func formatRate(rate *float64) string {
	if rate == nil {
		return "--"
	}
	return FormatBytes(*rate, true)
}

func (p *ProcessPanel) View(now time.Time) string {
	summary := fmt.Sprintf("top %d by CPU", p.opts.TopN)

	lines := []string{LabelStyle.Render(fmt.Sprintf("%7s %-18s %6s %6s %12s %12s", "PID", "NAME", "CPU%", "MEM%", "READ", "WRITE"))}
	for _, row := range p.rows {
		name := row.Name
		if len(name) > 18 {
			name = name[:18]
		}
		line := fmt.Sprintf("%7d %-18s %6.1f %6.1f %12s %12s",
			row.PID, name, row.CPUPercent, row.MemPercent, formatRate(row.ReadRate), formatRate(row.WriteRate))
		lines = append(lines, MetricStyle(row.CPUPercent).Render(line))
	}

	graph := OverlapGraph(p.read, p.write, p.opts.Height).Render(RenderOptions{
		LabelA: "read KB/s",
		LabelB: "write KB/s",
		Now:    now,
	})
	return joinSections(p.header("Processes", summary), p.status(), graph, strings.Join(lines, "\n"))
}

func ptr[T any](v T) *T { return &v }
