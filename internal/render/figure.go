package render

import (
	"encoding/json"
	"io"
	"math"

	"github.com/JonMunkholm/tabview/internal/core"
)

// Figure is a plotly-compatible figure description.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is one marker series of a figure.
type Trace struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
	Name string `json:"name"`
	X    []any  `json:"x"`
	Y    []any  `json:"y"`
}

// Layout holds figure titles.
type Layout struct {
	Title      Title     `json:"title"`
	XAxis      AxisTitle `json:"xaxis"`
	YAxis      AxisTitle `json:"yaxis"`
	Legend     *Legend   `json:"legend,omitempty"`
	ShowLegend bool      `json:"showlegend"`
}

// Title is a text title as plotly nests it under "text".
type Title struct {
	Text string `json:"text"`
}

// AxisTitle is the title of one axis.
type AxisTitle struct {
	Title Title `json:"title"`
}

// Legend titles the legend with the color column when traces are grouped.
type Legend struct {
	Title Title `json:"title"`
}

// NewFigure builds the figure for an interactive scatter. Any XY command is
// accepted; groups become traces.
func NewFigure(cmd *core.RenderCommand) *Figure {
	fig := &Figure{
		Data: make([]Trace, 0, len(cmd.Series)),
		Layout: Layout{
			Title:      Title{Text: cmd.Title},
			XAxis:      AxisTitle{Title: Title{Text: cmd.XLabel}},
			YAxis:      AxisTitle{Title: Title{Text: cmd.YLabel}},
			ShowLegend: cmd.Color != "",
		},
	}
	if cmd.Color != "" {
		fig.Layout.Legend = &Legend{Title: Title{Text: cmd.Color}}
	}
	for _, s := range cmd.Series {
		tr := Trace{
			Type: "scatter",
			Mode: "markers",
			Name: s.Name,
			X:    make([]any, len(s.X)),
			Y:    make([]any, len(s.Y)),
		}
		for i := range s.X {
			tr.X[i] = jsonValue(s.X[i], cmd.XType)
			tr.Y[i] = jsonValue(s.Y[i], cmd.YType)
		}
		fig.Data = append(fig.Data, tr)
	}
	return fig
}

// jsonValue converts a cell to a JSON scalar. Non-finite numbers become
// null since JSON cannot carry them.
func jsonValue(c core.Cell, t core.ColumnType) any {
	if !c.Valid {
		return nil
	}
	if t == core.ColumnNumeric {
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return nil
		}
		return c.Num
	}
	return c.Text
}

// WriteFigure encodes the interactive figure for cmd as JSON.
func WriteFigure(w io.Writer, cmd *core.RenderCommand) error {
	return json.NewEncoder(w).Encode(NewFigure(cmd))
}
