package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// NetworkPanel overlays aggregate receive (A) and transmit (B) rates in KB/s
// and lists per-interface rates.
type NetworkPanel struct {
	panelBase
	src     NetworkSource
	tracker *RateTracker
	rx, tx  *TimeSeries
	rows    []ifaceRate
}

type ifaceRate struct {
	name   string
	rx, tx float64
	known  bool
}

// NewNetworkPanel creates a network panel reading from src.
func NewNetworkPanel(src NetworkSource, opts PanelOptions) *NetworkPanel {
	base := newPanelBase(opts)
	return &NetworkPanel{
		panelBase: base,
		src:       src,
		tracker:   NewRateTracker(),
		rx:        NewTimeSeries(base.width),
		tx:        NewTimeSeries(base.width),
	}
}

func (p *NetworkPanel) Title() string { return "Network" }

func (p *NetworkPanel) Collect(ctx context.Context) Reading {
	counters, err := p.src.Collect(ctx)
	if err != nil {
		return Reading{At: time.Now(), Err: err}
	}
	return Reading{At: time.Now(), Value: counters}
}

// IsLoopback reports whether name is the loopback interface.
func IsLoopback(name string) bool {
	return name == "lo" || strings.HasPrefix(name, "lo0")
}

func (p *NetworkPanel) Apply(r Reading) {
	if !p.record(r) {
		p.rx.Push(0)
		p.tx.Push(0)
		return
	}
	counters, ok := r.Value.([]NetCounters)
	if !ok {
		return
	}

	rec := p.opts.recorder()
	var totalRx, totalTx float64
	anyKnown := false
	p.rows = p.rows[:0]
	for _, c := range counters {
		if IsLoopback(c.Name) && !p.opts.IncludeLoopback {
			continue
		}
		rx, okRx := p.tracker.Observe(c.Name+"/rx", c.RxBytes, r.At)
		tx, okTx := p.tracker.Observe(c.Name+"/tx", c.TxBytes, r.At)
		known := okRx && okTx
		p.rows = append(p.rows, ifaceRate{name: c.Name, rx: rx, tx: tx, known: known})
		if !known {
			continue
		}
		anyKnown = true
		totalRx += rx
		totalTx += tx
		rec.Record(MetricNetRx, c.Name, rx)
		rec.Record(MetricNetTx, c.Name, tx)
	}
	p.forgetVanished(rec, counters)
	p.tracker.Prune()
	sort.Slice(p.rows, func(i, j int) bool { return p.rows[i].name < p.rows[j].name })

	if !anyKnown {
		return
	}
	p.rx.Push(totalRx / 1024)
	p.tx.Push(totalTx / 1024)
}

// forgetVanished clears exported series for interfaces that are gone.
func (p *NetworkPanel) forgetVanished(rec Recorder, counters []NetCounters) {
	present := make(map[string]bool, len(counters))
	for _, c := range counters {
		present[c.Name+"/rx"] = true
	}
	for _, key := range p.tracker.Keys() {
		name, dir, _ := strings.Cut(key, "/")
		if dir == "rx" && !present[key] {
			rec.Forget(MetricNetRx, name)
			rec.Forget(MetricNetTx, name)
		}
	}
}

func (p *NetworkPanel) Resize(termWidth int) {
	p.width = p.opts.graphWidthFor(termWidth)
	p.rx.Resize(p.width)
	p.tx.Resize(p.width)
}

func (p *NetworkPanel) View(now time.Time) string {
	summary := fmt.Sprintf("↓ %s  ↑ %s",
		FormatScaled(p.rx.Latest(), UnitKB, true),
		FormatScaled(p.tx.Latest(), UnitKB, true))

	var table []string
	for _, row := range p.rows {
		rx, tx := "--", "--"
		if row.known {
			rx, tx = FormatBytes(row.rx, true), FormatBytes(row.tx, true)
		}
		table = append(table, fmt.Sprintf("%s %s %s",
			LabelStyle.Render(fmt.Sprintf("%-12s", row.name)),
			ValueStyle.Render(fmt.Sprintf("↓ %12s", rx)),
			ValueStyle.Render(fmt.Sprintf("↑ %12s", tx))))
	}

	graph := OverlapGraph(p.rx, p.tx, p.opts.Height).Render(RenderOptions{
		LabelA: "RX KB/s",
		LabelB: "TX KB/s",
		Now:    now,
	})
	return joinSections(p.header("Network", summary), p.status(), graph, strings.Join(table, "\n"))
}
