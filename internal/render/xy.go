package render

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/tabview/internal/core"
)

// pointStyle returns a style that renders points only (no connecting line).
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    4,
		DotColor:    col,
	}
}

// lineStyle connects points in row order.
func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: 2,
		StrokeColor: col,
	}
}

// points is one series mapped to axis coordinates.
type points struct {
	name string
	xs   []float64
	ys   []float64
}

// project maps every series onto the axes, dropping non-finite points.
func project(cmd *core.RenderCommand, xa, ya *axis) []points {
	out := make([]points, 0, len(cmd.Series))
	for _, s := range cmd.Series {
		p := points{name: s.Name}
		for i := range s.X {
			x, y := xa.value(s.X[i]), ya.value(s.Y[i])
			if !finite(x) || !finite(y) {
				continue
			}
			p.xs = append(p.xs, x)
			p.ys = append(p.ys, y)
		}
		if len(p.xs) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func bounds(ps []points) (xlo, xhi, ylo, yhi float64) {
	xlo, ylo = math.Inf(1), math.Inf(1)
	xhi, yhi = math.Inf(-1), math.Inf(-1)
	for _, p := range ps {
		for i := range p.xs {
			xlo, xhi = math.Min(xlo, p.xs[i]), math.Max(xhi, p.xs[i])
			ylo, yhi = math.Min(ylo, p.ys[i]), math.Max(yhi, p.ys[i])
		}
	}
	return xlo, xhi, ylo, yhi
}

func axes(cmd *core.RenderCommand) (*axis, *axis) {
	xs := make([][]core.Cell, len(cmd.Series))
	ys := make([][]core.Cell, len(cmd.Series))
	for i, s := range cmd.Series {
		xs[i], ys[i] = s.X, s.Y
	}
	return newAxis(cmd.XLabel, cmd.XType, xs...), newAxis(cmd.YLabel, cmd.YType, ys...)
}

// renderXY draws line and scatter charts, one go-chart series per group.
func renderXY(w io.Writer, cmd *core.RenderCommand, opts Options) error {
	xa, ya := axes(cmd)
	ps := project(cmd, xa, ya)
	if len(ps) == 0 {
		return ErrNothingToDraw
	}
	xlo, xhi, ylo, yhi := bounds(ps)

	series := make([]chart.Series, 0, len(ps))
	for i, p := range ps {
		col := chart.GetDefaultColor(i)
		st := lineStyle(col)
		if cmd.Kind != core.ChartLine {
			st = pointStyle(col)
		}
		xs, ys := p.xs, p.ys
		// Pad to at least two X values for go-chart
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0]}
			ys = []float64{ys[0], ys[0]}
		}
		series = append(series, chart.ContinuousSeries{Name: p.name, XValues: xs, YValues: ys, Style: st})
	}

	xAxis := chart.XAxis{
		Name:           xa.name,
		Ticks:          xa.ticks(),
		ValueFormatter: xa.formatter(),
	}
	if r := xa.paddedRange(xlo, xhi); r != nil {
		xAxis.Range = r
	}
	yAxis := chart.YAxis{
		Name:           ya.name,
		Ticks:          ya.ticks(),
		ValueFormatter: ya.formatter(),
	}
	if r := ya.paddedRange(ylo, yhi); r != nil {
		yAxis.Range = r
	}

	ch := chart.Chart{
		Title:      cmd.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      xAxis,
		YAxis:      yAxis,
		Series:     series,
	}
	if len(series) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s chart: %w", cmd.Kind, err)
	}
	return nil
}

// renderBar draws one bar per Chart Input row, in row order, from zero.
func renderBar(w io.Writer, cmd *core.RenderCommand, opts Options) error {
	_, ya := axes(cmd)

	var bars []chart.Value
	for _, s := range cmd.Series {
		for i := range s.X {
			y := ya.value(s.Y[i])
			if !finite(y) {
				continue
			}
			bars = append(bars, chart.Value{Label: truncate(s.X[i].Format(cmd.XType), 12), Value: y})
		}
	}
	if len(bars) == 0 {
		return ErrNothingToDraw
	}
	if len(bars) > maxCategoryTicks {
		step := (len(bars) + maxCategoryTicks - 1) / maxCategoryTicks
		for i := range bars {
			if i%step != 0 {
				bars[i].Label = ""
			}
		}
	}

	lo, hi := 0.0, 0.0
	for _, b := range bars {
		lo, hi = math.Min(lo, b.Value), math.Max(hi, b.Value)
	}
	if hi == lo {
		hi = lo + 1
	}

	bc := chart.BarChart{
		Title:        cmd.Title,
		Width:        opts.Width,
		Height:       opts.Height,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		BarWidth:     barWidth(opts.Width, len(bars)),
		UseBaseValue: true,
		BaseValue:    0,
		XAxis:        chart.Style{},
		YAxis: chart.YAxis{
			Name:           ya.name,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
			Ticks:          ya.ticks(),
			ValueFormatter: ya.formatter(),
		},
		Bars: bars,
	}
	if err := bc.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// barWidth fits n bars into the canvas with a little spacing.
func barWidth(width, n int) int {
	bw := (width - 120) / (n + 1)
	switch {
	case bw > 60:
		return 60
	case bw < 1:
		return 1
	}
	return bw
}
