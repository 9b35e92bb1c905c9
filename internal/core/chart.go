package core

import (
	"fmt"
	"math"
	"strings"
)

// ChartKind is the closed set of chart strategies.
type ChartKind string

const (
	ChartLine               ChartKind = "line"
	ChartBar                ChartKind = "bar"
	ChartScatter            ChartKind = "scatter"
	ChartHeatmap            ChartKind = "heatmap"
	ChartInteractiveScatter ChartKind = "interactive_scatter"
)

// ChartKinds lists every chart kind in menu order.
var ChartKinds = []ChartKind{ChartLine, ChartBar, ChartScatter, ChartHeatmap, ChartInteractiveScatter}

// Valid reports whether k is one of the known chart kinds.
func (k ChartKind) Valid() bool {
	switch k {
	case ChartLine, ChartBar, ChartScatter, ChartHeatmap, ChartInteractiveScatter:
		return true
	}
	return false
}

// Label returns the menu label for k.
func (k ChartKind) Label() string {
	switch k {
	case ChartLine:
		return "Line"
	case ChartBar:
		return "Bar"
	case ChartScatter:
		return "Scatter"
	case ChartHeatmap:
		return "Correlation Heatmap"
	case ChartInteractiveScatter:
		return "Interactive Scatter"
	}
	return string(k)
}

// Interactive reports whether k renders to an interactive figure rather
// than a static image.
func (k ChartKind) Interactive() bool {
	return k == ChartInteractiveScatter
}

// ParseChartKind accepts a chart kind value or its menu label, ignoring case.
func ParseChartKind(s string) (ChartKind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "line":
		return ChartLine, nil
	case "bar":
		return ChartBar, nil
	case "scatter":
		return ChartScatter, nil
	case "heatmap", "correlation_heatmap", "seaborn_heatmap":
		return ChartHeatmap, nil
	case "interactive_scatter", "interactive", "plotly_interactive":
		return ChartInteractiveScatter, nil
	}
	return "", &ConfigurationError{Field: "chart", Column: s, Err: ErrUnknownChartKind}
}

// Series is one named sequence of (x, y) points in draw order.
type Series struct {
	Name string
	X    []Cell
	Y    []Cell
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.X)
}

// CorrelationMatrix holds pairwise Pearson coefficients. Values[i][j] is
// NaN when the pair has fewer than two complete observations or no variance.
type CorrelationMatrix struct {
	Columns []string
	Values  [][]float64
}

// RenderCommand is everything the rendering collaborator needs to draw one
// chart. Exactly one of Series or Heatmap is set.
type RenderCommand struct {
	Kind   ChartKind
	Title  string
	XLabel string
	YLabel string
	XType  ColumnType
	YType  ColumnType
	Series []Series
	// Color is the grouping column for interactive scatters, "" for none.
	Color   string
	Heatmap *CorrelationMatrix
}

// Points returns the total number of points across all series.
func (c *RenderCommand) Points() int {
	n := 0
	for _, s := range c.Series {
		n += s.Len()
	}
	return n
}

// MissingGroup names the interactive-scatter group of rows whose color
// value is missing.
const MissingGroup = "(missing)"

// ChartInput returns view without the rows where column x or y is missing.
// Row order is preserved.
func ChartInput(view *Dataset, x, y string) (*Dataset, error) {
	xc, ok := view.Column(x)
	if !ok {
		return nil, unknownColumn("x", x)
	}
	yc, ok := view.Column(y)
	if !ok {
		return nil, unknownColumn("y", y)
	}
	rows := make([]int, 0, view.NumRows())
	for i := 0; i < view.NumRows(); i++ {
		if xc.Cells[i].Valid && yc.Cells[i].Valid {
			rows = append(rows, i)
		}
	}
	return view.Take(rows), nil
}

// Project builds the render command for kind from the View.
//
// Line, Bar and Scatter plot y against x over the Chart Input in View order.
// InteractiveScatter does the same and groups points by color when set.
// CorrelationHeatmap ignores the axes and correlates every numeric column of
// the View.
func Project(view *Dataset, kind ChartKind, x, y, color string) (*RenderCommand, error) {
	if view == nil {
		view = &Dataset{}
	}
	switch kind {
	case ChartHeatmap:
		return projectHeatmap(view)
	case ChartLine, ChartBar, ChartScatter:
		if err := validateAxes(view, kind, x, y, ""); err != nil {
			return nil, err
		}
		return projectXY(view, kind, x, y, "")
	case ChartInteractiveScatter:
		if err := validateAxes(view, kind, x, y, color); err != nil {
			return nil, err
		}
		return projectXY(view, kind, x, y, color)
	default:
		return nil, &ConfigurationError{Field: "chart", Column: string(kind), Err: ErrUnknownChartKind}
	}
}

// validateAxes checks the x, y and color columns a chart kind reads.
func validateAxes(ds *Dataset, kind ChartKind, x, y, color string) error {
	if kind == ChartHeatmap {
		return nil
	}
	if _, ok := ds.Column(x); !ok {
		return unknownColumn("x", x)
	}
	if _, ok := ds.Column(y); !ok {
		return unknownColumn("y", y)
	}
	if kind == ChartInteractiveScatter && color != "" {
		if _, ok := ds.Column(color); !ok {
			return unknownColumn("color", color)
		}
	}
	return nil
}

func projectXY(view *Dataset, kind ChartKind, x, y, color string) (*RenderCommand, error) {
	input, err := ChartInput(view, x, y)
	if err != nil {
		return nil, err
	}
	if input.NumRows() == 0 {
		return nil, &ChartError{Kind: kind, Err: fmt.Errorf("%w: %q and %q have no complete rows", ErrNoChartRows, x, y)}
	}

	xc, _ := input.Column(x)
	yc, _ := input.Column(y)
	cmd := &RenderCommand{
		Kind:   kind,
		Title:  fmt.Sprintf("%s by %s", y, x),
		XLabel: x,
		YLabel: y,
		XType:  xc.Type,
		YType:  yc.Type,
		Color:  color,
	}

	if color == "" {
		cmd.Series = []Series{{Name: y, X: xc.Cells, Y: yc.Cells}}
		return cmd, nil
	}

	cc, _ := input.Column(color)
	groups := make(map[string]int)
	for i := range cc.Cells {
		name := MissingGroup
		if cc.Cells[i].Valid {
			name = cc.Cells[i].Format(cc.Type)
		}
		g, ok := groups[name]
		if !ok {
			g = len(cmd.Series)
			groups[name] = g
			cmd.Series = append(cmd.Series, Series{Name: name})
		}
		cmd.Series[g].X = append(cmd.Series[g].X, xc.Cells[i])
		cmd.Series[g].Y = append(cmd.Series[g].Y, yc.Cells[i])
	}
	return cmd, nil
}

func projectHeatmap(view *Dataset) (*RenderCommand, error) {
	numeric := view.NumericColumns()
	if len(numeric) < 2 {
		return nil, &ChartError{Kind: ChartHeatmap, Err: ErrInsufficientNumeric}
	}
	return &RenderCommand{
		Kind:    ChartHeatmap,
		Title:   "Correlation Heatmap",
		Heatmap: Correlate(view, numeric),
	}, nil
}

// Correlate computes the Pearson correlation matrix of the named numeric
// columns using pairwise-complete observations.
func Correlate(ds *Dataset, columns []string) *CorrelationMatrix {
	cols := make([]*Column, len(columns))
	for i, name := range columns {
		cols[i], _ = ds.Column(name)
	}

	m := &CorrelationMatrix{Columns: columns, Values: make([][]float64, len(cols))}
	for i := range cols {
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pearson(cols[i].Cells, cols[j].Cells)
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

// pearson returns the correlation of a and b over rows where both are present.
func pearson(a, b []Cell) float64 {
	var n, sumA, sumB float64
	for i := range a {
		if a[i].Valid && b[i].Valid {
			n++
			sumA += a[i].Num
			sumB += b[i].Num
		}
	}
	if n < 2 {
		return math.NaN()
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for i := range a {
		if a[i].Valid && b[i].Valid {
			da, db := a[i].Num-meanA, b[i].Num-meanB
			cov += da * db
			varA += da * da
			varB += db * db
		}
	}
	if varA == 0 || varB == 0 {
		return math.NaN()
	}
	r := cov / math.Sqrt(varA*varB)
	// Clamp rounding noise.
	return math.Max(-1, math.Min(1, r))
}
