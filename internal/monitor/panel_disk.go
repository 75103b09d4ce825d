package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DiskPanel overlays total read (A) and write (B) throughput in KB/s. The
// source already reports per-second rates, so no tracker is needed.
type DiskPanel struct {
	panelBase
	src         DiskSource
	read, write *TimeSeries
	devices     []DiskRate
	seen        map[string]bool
}

// NewDiskPanel creates a disk panel reading from src.
func NewDiskPanel(src DiskSource, opts PanelOptions) *DiskPanel {
	base := newPanelBase(opts)
	return &DiskPanel{
		panelBase: base,
		src:       src,
		read:      NewTimeSeries(base.width),
		write:     NewTimeSeries(base.width),
		seen:      make(map[string]bool),
	}
}

func (p *DiskPanel) Title() string { return "Disk" }

func (p *DiskPanel) Collect(ctx context.Context) Reading {
	rates, err := p.src.Collect(ctx)
	if err != nil {
		return Reading{At: time.Now(), Err: err}
	}
	return Reading{At: time.Now(), Value: rates}
}

func (p *DiskPanel) Apply(r Reading) {
	if !p.record(r) {
		p.read.Push(0)
		p.write.Push(0)
		return
	}
	rates, ok := r.Value.([]DiskRate)
	if !ok {
		return
	}

	rec := p.opts.recorder()
	current := make(map[string]bool, len(rates))
	var totalRead, totalWrite float64
	for _, d := range rates {
		current[d.Device] = true
		totalRead += max(0, d.ReadKBps)
		totalWrite += max(0, d.WriteKBps)
		rec.Record(MetricDiskRead, d.Device, max(0, d.ReadKBps)*1024)
		rec.Record(MetricDiskWrite, d.Device, max(0, d.WriteKBps)*1024)
	}
	for dev := range p.seen {
		if !current[dev] {
			rec.Forget(MetricDiskRead, dev)
			rec.Forget(MetricDiskWrite, dev)
		}
	}
	p.seen = current

	p.devices = append(p.devices[:0], rates...)
	sort.Slice(p.devices, func(i, j int) bool { return p.devices[i].Device < p.devices[j].Device })

	p.read.Push(totalRead)
	p.write.Push(totalWrite)
}

func (p *DiskPanel) Resize(termWidth int) {
	p.width = p.opts.graphWidthFor(termWidth)
	p.read.Resize(p.width)
	p.write.Resize(p.width)
}

func (p *DiskPanel) View(now time.Time) string {
	summary := fmt.Sprintf("read %s  write %s",
		FormatScaled(p.read.Latest(), UnitKB, true),
		FormatScaled(p.write.Latest(), UnitKB, true))

	var table []string
	for _, d := range p.devices {
		table = append(table, fmt.Sprintf("%s %s %s",
			LabelStyle.Render(fmt.Sprintf("%-12s", d.Device)),
			ValueStyle.Render(fmt.Sprintf("r %12s", FormatScaled(d.ReadKBps, UnitKB, true))),
			ValueStyle.Render(fmt.Sprintf("w %12s", FormatScaled(d.WriteKBps, UnitKB, true)))))
	}

	graph := OverlapGraph(p.read, p.write, p.opts.Height).Render(RenderOptions{
		LabelA: "read KB/s",
		LabelB: "write KB/s",
		Now:    now,
	})
	return joinSections(p.header("Disk", summary), p.status(), graph, strings.Join(table, "\n"))
}
