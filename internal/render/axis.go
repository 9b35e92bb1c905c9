package render

import (
	"math"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/JonMunkholm/tabview/internal/core"
)

// timeLayouts are the text formats recognized as dates on an axis.
var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

type axisKind int

const (
	axisNumeric axisKind = iota
	axisTime
	axisCategory
)

// axis maps cells of one column to chart coordinates. Text columns become
// a time axis when every value parses with one layout, and an ordinal
// category axis otherwise.
type axis struct {
	name   string
	kind   axisKind
	layout string
	cats   map[string]int
	labels []string
}

func newAxis(name string, typ core.ColumnType, columns ...[]core.Cell) *axis {
	a := &axis{name: name}
	if typ == core.ColumnNumeric {
		return a
	}
	if layout, ok := detectTimeLayout(columns...); ok {
		a.kind, a.layout = axisTime, layout
		return a
	}
	a.kind = axisCategory
	a.cats = make(map[string]int)
	for _, cells := range columns {
		for _, c := range cells {
			if _, ok := a.cats[c.Text]; !ok {
				a.labels = append(a.labels, c.Text)
				a.cats[c.Text] = len(a.labels)
			}
		}
	}
	return a
}

func detectTimeLayout(columns ...[]core.Cell) (string, bool) {
	for _, layout := range timeLayouts {
		ok, seen := true, false
		for _, cells := range columns {
			for _, c := range cells {
				seen = true
				if _, err := time.Parse(layout, c.Text); err != nil {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
		}
		if ok && seen {
			return layout, true
		}
	}
	return "", false
}

// value returns the coordinate of a present cell.
func (a *axis) value(c core.Cell) float64 {
	switch a.kind {
	case axisTime:
		t, _ := time.Parse(a.layout, c.Text)
		return chart.TimeToFloat64(t)
	case axisCategory:
		return float64(a.cats[c.Text])
	}
	return c.Num
}

// ticks returns explicit labels for category axes, nil otherwise.
func (a *axis) ticks() []chart.Tick {
	if a.kind != axisCategory {
		return nil
	}
	// Label every category up to a point, then thin them out.
	step := 1
	if n := len(a.labels); n > maxCategoryTicks {
		step = (n + maxCategoryTicks - 1) / maxCategoryTicks
	}
	ticks := make([]chart.Tick, 0, len(a.labels)/step+1)
	for i, label := range a.labels {
		if i%step == 0 {
			ticks = append(ticks, chart.Tick{Value: float64(i + 1), Label: truncate(label, 16)})
		}
	}
	if len(ticks) == 1 {
		// go-chart needs two ticks to lay out an axis.
		ticks = append(ticks, chart.Tick{Value: 2, Label: ""})
	}
	return ticks
}

const maxCategoryTicks = 24

// formatter returns the tick formatter for time axes, nil otherwise.
func (a *axis) formatter() chart.ValueFormatter {
	if a.kind != axisTime {
		return nil
	}
	layout := "2006-01-02"
	if a.layout != "2006-01-02" && a.layout != "01/02/2006" && a.layout != "2006/01/02" {
		layout = "2006-01-02 15:04"
	}
	return func(v any) string {
		if f, ok := v.(float64); ok {
			return chart.TimeFromFloat64(f).UTC().Format(layout)
		}
		return ""
	}
}

// paddedRange returns an explicit range when the data would otherwise give
// go-chart a zero-width axis, and nil when go-chart can pick its own.
func (a *axis) paddedRange(lo, hi float64) *chart.ContinuousRange {
	if a.kind == axisCategory {
		top := float64(len(a.labels)) + 0.5
		if top < 2 {
			top = 2
		}
		return &chart.ContinuousRange{Min: 0.5, Max: top}
	}
	if hi > lo {
		return nil
	}
	pad := math.Abs(lo) * 0.1
	if a.kind == axisTime {
		pad = float64(24 * time.Hour)
	}
	if pad == 0 {
		pad = 1
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
