package monitor

import (
	"context"
	"fmt"
	"time"
)

// MemoryPanel plots used memory on a fixed 0-100% graph with swap below.
type MemoryPanel struct {
	panelBase
	src    MemorySource
	series *TimeSeries
	last   MemInfo
	ready  bool
}

// NewMemoryPanel creates a memory panel reading from src.
func NewMemoryPanel(src MemorySource, opts PanelOptions) *MemoryPanel {
	base := newPanelBase(opts)
	return &MemoryPanel{panelBase: base, src: src, series: NewTimeSeries(base.width)}
}

func (p *MemoryPanel) Title() string { return "Memory" }

func (p *MemoryPanel) Collect(ctx context.Context) Reading {
	info, err := p.src.Collect(ctx)
	if err != nil {
		return Reading{At: time.Now(), Err: err}
	}
	return Reading{At: time.Now(), Value: info}
}

func (p *MemoryPanel) Apply(r Reading) {
	if !p.record(r) {
		p.series.Push(0)
		if r.Err != nil {
			p.ready = false
		}
		return
	}
	info, ok := r.Value.(MemInfo)
	if !ok {
		return
	}
	p.last = info
	p.ready = true

	used := info.UsedPercent()
	p.series.Push(used)
	rec := p.opts.recorder()
	rec.Record(MetricMemPercent, "", used)
	rec.Record(MetricSwapPercent, "", info.SwapPercent())
	p.checkAlert(used)
}

func (p *MemoryPanel) Resize(termWidth int) {
	p.width = p.opts.graphWidthFor(termWidth)
	p.series.Resize(p.width)
}

func (p *MemoryPanel) View(now time.Time) string {
	var summary, details string
	if p.ready {
		m := p.last
		summary = fmt.Sprintf("%.0f%%  %s / %s", m.UsedPercent(), FormatBytes(float64(m.Used()), false), FormatBytes(float64(m.Total), false))
		details = LabelStyle.Render(fmt.Sprintf("available %s · buffers %s · cached %s",
			FormatBytes(float64(m.Available), false),
			FormatBytes(float64(m.Buffers), false),
			FormatBytes(float64(m.Cached), false)))
		swap := LabelStyle.Render("swap ") + NotAvailable
		if m.SwapTotal > 0 {
			swap = LabelStyle.Render("swap ") + CompactProgressBar(20, m.SwapPercent()) +
				ValueStyle.Render(fmt.Sprintf(" %s / %s", FormatBytes(float64(m.SwapUsed()), false), FormatBytes(float64(m.SwapTotal), false)))
		}
		details = joinSections(details, swap)
	}
	summary = p.summary(p.ready, summary)

	graph := PercentGraph(p.series, p.opts.Height).Render(RenderOptions{AxisUnit: "%", Now: now})
	return joinSections(p.header("Memory", summary), details, p.status(), graph)
}
