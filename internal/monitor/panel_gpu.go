package monitor

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// GPUPanel plots utilization per device on a fixed 0-100% graph. Every
// telemetry field may be missing and then renders as N/A.
type GPUPanel struct {
	panelBase
	src    GPUSource
	series map[int]*TimeSeries
	last   []GPUStats
}

// NewGPUPanel creates a GPU panel reading from src.
func NewGPUPanel(src GPUSource, opts PanelOptions) *GPUPanel {
	return &GPUPanel{panelBase: newPanelBase(opts), src: src, series: make(map[int]*TimeSeries)}
}

func (p *GPUPanel) Title() string { return "GPU" }

func (p *GPUPanel) Collect(ctx context.Context) Reading {
	stats, err := p.src.Collect(ctx)
	if err != nil {
		return Reading{At: time.Now(), Err: err}
	}
	return Reading{At: time.Now(), Value: stats}
}

func (p *GPUPanel) seriesFor(index int) *TimeSeries {
	s, ok := p.series[index]
	if !ok {
		s = NewTimeSeries(p.width)
		p.series[index] = s
	}
	return s
}

func (p *GPUPanel) Apply(r Reading) {
	if !p.record(r) {
		for _, s := range p.series {
			s.Push(0)
		}
		if r.Err != nil {
			p.last = nil
		}
		return
	}
	stats, ok := r.Value.([]GPUStats)
	if !ok {
		return
	}
	p.last = stats

	rec := p.opts.recorder()
	peak := -1.0
	for _, g := range stats {
		util := 0.0
		if g.Utilization != nil {
			util = clampPercent(*g.Utilization)
			rec.Record(MetricGPUPercent, strconv.Itoa(g.Index), util)
			peak = max(peak, util)
		}
		p.seriesFor(g.Index).Push(util)
	}
	if peak >= 0 {
		p.checkAlert(peak)
	} else {
		p.alerted = false
	}
}

func (p *GPUPanel) Resize(termWidth int) {
	p.width = p.opts.graphWidthFor(termWidth)
	for _, s := range p.series {
		s.Resize(p.width)
	}
}

func (p *GPUPanel) View(now time.Time) string {
	summary := p.summary(p.last != nil, fmt.Sprintf("%d device(s)", len(p.last)))
	blocks := []string{p.header("GPU", summary), p.status()}

	for _, g := range p.last {
		title := HostNameStyle.Render(fmt.Sprintf("#%d %s", g.Index, g.Name))
		util := FormatOptional(g.Utilization, "%.0f%%")
		mem := NotAvailable
		if g.MemUsedMiB != nil && g.MemTotalMiB != nil {
			mem = fmt.Sprintf("%s / %s",
				FormatScaled(*g.MemUsedMiB, UnitMB, false),
				FormatScaled(*g.MemTotalMiB, UnitMB, false))
		}
		pstate := g.PState
		if pstate == "" {
			pstate = NotAvailable
		}
		details := LabelStyle.Render(fmt.Sprintf(
			"util %s · mem %s · power %s · temp %s · fan %s · %s · core %s · mem clk %s",
			util, mem,
			FormatOptional(g.PowerWatts, "%.1f W"),
			FormatOptional(g.TempCelsius, "%.0f°C"),
			FormatOptional(g.FanPercent, "%.0f%%"),
			pstate,
			FormatOptional(g.ClockCoreMHz, "%.0f MHz"),
			FormatOptional(g.ClockMemMHz, "%.0f MHz")))

		graph := PercentGraph(p.seriesFor(g.Index), p.opts.Height).Render(RenderOptions{AxisUnit: "%", Now: now})
		blocks = append(blocks, title, details, graph)
	}
	return joinSections(blocks...)
}
