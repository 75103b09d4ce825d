package monitor

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Cell is the category of one graph position.
type Cell uint8

const (
	CellEmpty Cell = iota
	CellFilled
	CellA
	CellB
	CellOverlap
)

// Graph is a rendered grid, top row first. Labels[i] is the value the
// boundary of row i stands for.
type Graph struct {
	Labels  []float64
	Cells   [][]Cell
	Scale   float64
	MaxAxis float64
	Overlap bool
}

// Height returns the number of rows.
func (g Graph) Height() int {
	return len(g.Cells)
}

// FilledRows counts the non-empty cells in column col.
func (g Graph) FilledRows(col int) int {
	n := 0
	for _, row := range g.Cells {
		if col < len(row) && row[col] != CellEmpty {
			n++
		}
	}
	return n
}

// PercentScale is the percentage step per row for a graph of height rows.
// Heights above 100 give a step of 1.
func PercentScale(height int) int {
	if height < 1 {
		height = 1
	}
	scale := 100 / height
	if scale < 1 {
		scale = 1
	}
	return scale
}

// PercentGraph plots a 0-100 series on a fixed axis. Rows step by
// PercentScale(height); the k-th row from the bottom fills once a value
// reaches k*step, so a column holding v fills floor(v/step) rows. When the
// step doesn't divide 100 an extra top row is emitted, so the grid may be
// one row taller than height. Labels are capped at 100.
func PercentGraph(series *TimeSeries, height int) Graph {
	scale := PercentScale(height)
	values := series.Values()
	rows := (100 + scale - 1) / scale

	g := Graph{Scale: float64(scale), MaxAxis: 100}
	for k := rows; k >= 1; k-- {
		cutoff := float64(k * scale)
		row := make([]Cell, len(values))
		for i, v := range values {
			if v >= cutoff {
				row[i] = CellFilled
			}
		}
		g.Labels = append(g.Labels, math.Min(cutoff, 100))
		g.Cells = append(g.Cells, row)
	}
	return g
}

// OverlapAxis returns the axis ceiling and per-row scale for a dual-series
// graph whose largest sample is peak. The ceiling is peak rounded up to a
// multiple of 100, never below 20.
func OverlapAxis(peak float64, height int) (maxAxis, scale float64) {
	if height < 1 {
		height = 1
	}
	if math.IsNaN(peak) || math.IsInf(peak, 0) || peak < 0 {
		peak = 0
	}
	maxAxis = math.Max(20, math.Ceil(peak/100)*100)
	scale = math.Max(1, math.Floor(maxAxis/float64(height)))
	return maxAxis, scale
}

// OverlapGraph plots two series against a shared, dynamically scaled axis.
// Each sample is rounded to the nearest row count and occupies rows 1
// through that count, inclusive. A cell that both series reach is
// CellOverlap regardless of which series is larger.
func OverlapGraph(a, b *TimeSeries, height int) Graph {
	if height < 1 {
		height = 1
	}
	maxAxis, scale := OverlapAxis(math.Max(a.Max(), b.Max()), height)

	va, vb := a.Values(), b.Values()
	width := max(len(va), len(vb))
	ha := rowHeights(va, width, scale)
	hb := rowHeights(vb, width, scale)

	g := Graph{Scale: scale, MaxAxis: maxAxis, Overlap: true}
	for r := height; r >= 1; r-- {
		row := make([]Cell, width)
		for i := range row {
			inA, inB := ha[i] >= r, hb[i] >= r
			switch {
			case inA && inB:
				row[i] = CellOverlap
			case inA:
				row[i] = CellA
			case inB:
				row[i] = CellB
			}
		}
		g.Labels = append(g.Labels, float64(r)*scale)
		g.Cells = append(g.Cells, row)
	}
	return g
}

// rowHeights converts samples to row counts, padding to width with zeros.
func rowHeights(values []float64, width int, scale float64) []int {
	out := make([]int, width)
	for i, v := range values {
		out[i] = int(math.Round(v / scale))
	}
	return out
}

// RenderOptions controls the text around a graph grid.
type RenderOptions struct {
	LabelA   string // legend name for series A (overlap graphs)
	LabelB   string // legend name for series B
	AxisUnit string // appended to each axis label, e.g. "%"
	Now      time.Time
}

var cellRunes = map[Cell]string{
	CellEmpty:   " ",
	CellFilled:  "█",
	CellA:       "▒",
	CellB:       "░",
	CellOverlap: "█",
}

func cellStyle(c Cell, label float64) lipgloss.Style {
	switch c {
	case CellFilled:
		return lipgloss.NewStyle().Foreground(MetricColor(label))
	case CellA:
		return lipgloss.NewStyle().Foreground(ColorGraph)
	case CellB:
		return lipgloss.NewStyle().Foreground(ColorAccent)
	case CellOverlap:
		return lipgloss.NewStyle().Foreground(ColorAccentDim)
	default:
		return lipgloss.NewStyle()
	}
}

// Legend returns the key line for an overlap graph.
func Legend(labelA, labelB string) string {
	part := func(c Cell, name string) string {
		return cellStyle(c, 0).Render(cellRunes[c]) + " " + LabelStyle.Render(name)
	}
	return part(CellA, labelA) + "  " + part(CellB, labelB) + "  " + part(CellOverlap, "both")
}

// Render draws the grid with a left axis, a border line and a timestamp.
// Overlap graphs get a legend line on top.
func (g Graph) Render(opts RenderOptions) string {
	labels := make([]string, len(g.Labels))
	gutter := 0
	for i, v := range g.Labels {
		labels[i] = strconv.FormatFloat(v, 'f', 0, 64) + opts.AxisUnit
		gutter = max(gutter, len(labels[i]))
	}
	width := 0
	if len(g.Cells) > 0 {
		width = len(g.Cells[0])
	}

	axis := lipgloss.NewStyle().Foreground(ColorBorder)
	muted := lipgloss.NewStyle().Foreground(ColorTextMuted)

	var lines []string
	if g.Overlap {
		lines = append(lines, Legend(opts.LabelA, opts.LabelB))
	}

	for i, row := range g.Cells {
		var b strings.Builder
		b.WriteString(muted.Render(padLeft(labels[i], gutter)))
		b.WriteString(axis.Render(" ┤"))
		writeRuns(&b, row, g.Labels[i])
		lines = append(lines, b.String())
	}

	indent := strings.Repeat(" ", gutter+1)
	lines = append(lines, indent+axis.Render("└"+strings.Repeat("─", width)))

	stamp := opts.Now.Format("15:04:05")
	lines = append(lines, indent+" "+muted.Render(padLeft(stamp, width)))

	return strings.Join(lines, "\n")
}

// writeRuns styles consecutive cells of the same category together.
func writeRuns(b *strings.Builder, row []Cell, label float64) {
	for start := 0; start < len(row); {
		end := start + 1
		for end < len(row) && row[end] == row[start] {
			end++
		}
		run := strings.Repeat(cellRunes[row[start]], end-start)
		if row[start] == CellEmpty {
			b.WriteString(run)
		} else {
			b.WriteString(cellStyle(row[start], label).Render(run))
		}
		start = end
	}
}

func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
