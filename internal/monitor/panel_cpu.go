package monitor

import (
	"context"
	"fmt"
	"time"
)

// CPUPanel plots aggregate CPU usage on a fixed 0-100% graph.
type CPUPanel struct {
	panelBase
	src     CPUSource
	tracker CPUTracker
	series  *TimeSeries
	last    CPUSnapshot
	usage   float64
	ready   bool
}

// NewCPUPanel creates a CPU panel reading from src.
func NewCPUPanel(src CPUSource, opts PanelOptions) *CPUPanel {
	base := newPanelBase(opts)
	return &CPUPanel{panelBase: base, src: src, series: NewTimeSeries(base.width)}
}

func (p *CPUPanel) Title() string { return "CPU" }

func (p *CPUPanel) Collect(ctx context.Context) Reading {
	snap, err := p.src.Collect(ctx)
	if err != nil {
		return Reading{At: time.Now(), Err: err}
	}
	return Reading{At: time.Now(), Value: snap}
}

func (p *CPUPanel) Apply(r Reading) {
	if !p.record(r) {
		p.series.Push(0)
		if r.Err != nil {
			p.ready = false
			p.usage = 0
		}
		return
	}
	snap, ok := r.Value.(CPUSnapshot)
	if !ok {
		return
	}
	p.last = snap

	usage, ok := p.tracker.Observe(snap.Ticks)
	if !ok {
		return
	}
	p.usage = usage
	p.ready = true
	p.series.Push(usage)
	p.opts.recorder().Record(MetricCPUPercent, "", usage)
	p.checkAlert(usage)
}

func (p *CPUPanel) Resize(termWidth int) {
	p.width = p.opts.graphWidthFor(termWidth)
	p.series.Resize(p.width)
}

func (p *CPUPanel) View(now time.Time) string {
	summary := p.summary(p.ready, fmt.Sprintf("%.0f%%", p.usage))
	var details string
	if p.lastErr == nil {
		details = LabelStyle.Render(fmt.Sprintf("%d cores · load %.2f %.2f %.2f",
			p.last.Cores, p.last.LoadAvg[0], p.last.LoadAvg[1], p.last.LoadAvg[2]))
	}

	graph := PercentGraph(p.series, p.opts.Height).Render(RenderOptions{AxisUnit: "%", Now: now})
	return joinSections(p.header("CPU", summary), details, p.status(), graph)
}
