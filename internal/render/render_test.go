package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabview/internal/core"
)

const salesCSV = "date,region,sales,units\n" +
	"2024-01-01,east,100,4\n" +
	"2024-01-02,west,80,3\n" +
	"2024-01-03,east,50,2\n" +
	"2024-01-04,north,120,6\n" +
	"2024-01-05,west,,1\n"

func mustProject(t *testing.T, kind core.ChartKind, x, y, color string) *core.RenderCommand {
	t.Helper()
	ds, err := core.Load([]byte(salesCSV), "sales.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cmd, err := core.Project(ds, kind, x, y, color)
	if err != nil {
		t.Fatalf("Project(%s): %v", kind, err)
	}
	return cmd
}

func assertPNG(t *testing.T, data []byte, width, height int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width != width || cfg.Height != height {
		t.Errorf("image size = %dx%d, want %dx%d", cfg.Width, cfg.Height, width, height)
	}
}

func TestRender_StaticKinds(t *testing.T) {
	tests := []struct {
		name string
		kind core.ChartKind
		x, y string
	}{
		{"line over dates", core.ChartLine, "date", "sales"},
		{"line numeric", core.ChartLine, "units", "sales"},
		{"bar", core.ChartBar, "region", "sales"},
		{"scatter categorical x", core.ChartScatter, "region", "sales"},
		{"scatter numeric", core.ChartScatter, "units", "sales"},
		{"heatmap", core.ChartHeatmap, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := mustProject(t, tt.kind, tt.x, tt.y, "")
			var buf bytes.Buffer
			if err := Render(&buf, cmd, Options{Width: 640, Height: 400}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			assertPNG(t, buf.Bytes(), 640, 400)
		})
	}
}

func TestRender_DefaultSize(t *testing.T) {
	cmd := mustProject(t, core.ChartScatter, "units", "sales", "")
	body, mime, err := Bytes(cmd, Options{})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if mime != MIMEPNG {
		t.Errorf("media type = %q, want %q", mime, MIMEPNG)
	}
	assertPNG(t, body, DefaultWidth, DefaultHeight)
}

func TestRender_SinglePoint(t *testing.T) {
	ds, err := core.Load([]byte("x,y\n3,7\n"), "one.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, kind := range []core.ChartKind{core.ChartLine, core.ChartBar, core.ChartScatter} {
		t.Run(string(kind), func(t *testing.T) {
			cmd, err := core.Project(ds, kind, "x", "y", "")
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			var buf bytes.Buffer
			if err := Render(&buf, cmd, Options{Width: 320, Height: 240}); err != nil {
				t.Fatalf("Render: %v", err)
			}
			assertPNG(t, buf.Bytes(), 320, 240)
		})
	}
}

func TestRender_SingleCategory(t *testing.T) {
	ds, err := core.Load([]byte("k,v\na,1\na,2\n"), "cat.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cmd, err := core.Project(ds, core.ChartScatter, "k", "v", "")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	var buf bytes.Buffer
	if err := Render(&buf, cmd, Options{Width: 320, Height: 240}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertPNG(t, buf.Bytes(), 320, 240)
}

func TestRender_NonFinitePointsDropped(t *testing.T) {
	cmd := &core.RenderCommand{
		Kind:   core.ChartScatter,
		XType:  core.ColumnNumeric,
		YType:  core.ColumnNumeric,
		Series: []core.Series{{Name: "y", X: []core.Cell{core.NumCell(math.Inf(1))}, Y: []core.Cell{core.NumCell(1)}}},
	}
	err := Render(&bytes.Buffer{}, cmd, Options{})
	if !errors.Is(err, ErrNothingToDraw) {
		t.Errorf("Render = %v, want ErrNothingToDraw", err)
	}

	cmd.Series[0].X = append(cmd.Series[0].X, core.NumCell(2))
	cmd.Series[0].Y = append(cmd.Series[0].Y, core.NumCell(5))
	var buf bytes.Buffer
	if err := Render(&buf, cmd, Options{Width: 200, Height: 200}); err != nil {
		t.Fatalf("Render with one finite point: %v", err)
	}
	assertPNG(t, buf.Bytes(), 200, 200)
}

func TestRender_UnknownKind(t *testing.T) {
	err := Render(&bytes.Buffer{}, &core.RenderCommand{Kind: "pie"}, Options{})
	if !errors.Is(err, core.ErrUnknownChartKind) {
		t.Errorf("Render = %v, want ErrUnknownChartKind", err)
	}
}

func TestRender_HeatmapWithUndefinedCells(t *testing.T) {
	ds, err := core.Load([]byte("a,b,c\n1,5,2\n2,5,4\n3,5,7\n"), "flat.csv")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cmd, err := core.Project(ds, core.ChartHeatmap, "", "", "")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !math.IsNaN(cmd.Heatmap.Values[0][1]) {
		t.Fatalf("corr(a, b) = %v, want NaN for a constant column", cmd.Heatmap.Values[0][1])
	}
	var buf bytes.Buffer
	if err := Render(&buf, cmd, Options{Width: 480, Height: 360}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	assertPNG(t, buf.Bytes(), 480, 360)
}

func TestRender_HeatmapTooSmall(t *testing.T) {
	cmd := mustProject(t, core.ChartHeatmap, "", "", "")
	if err := Render(&bytes.Buffer{}, cmd, Options{Width: 100, Height: 50}); err == nil {
		t.Error("Render into a 100x50 canvas succeeded, want error")
	}
}

func TestRender_InteractiveFigure(t *testing.T) {
	cmd := mustProject(t, core.ChartInteractiveScatter, "units", "sales", "region")

	body, mime, err := Bytes(cmd, Options{})
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	if mime != MIMEFigure {
		t.Errorf("media type = %q, want %q", mime, MIMEFigure)
	}

	var fig Figure
	if err := json.Unmarshal(body, &fig); err != nil {
		t.Fatalf("figure is not JSON: %v", err)
	}
	var names []string
	for _, tr := range fig.Data {
		names = append(names, tr.Name)
		if tr.Type != "scatter" || tr.Mode != "markers" {
			t.Errorf("trace %q type/mode = %s/%s", tr.Name, tr.Type, tr.Mode)
		}
	}
	if got := strings.Join(names, ","); got != "east,west,north" {
		t.Errorf("traces = %s, want east,west,north", got)
	}
	if !fig.Layout.ShowLegend || fig.Layout.Legend == nil || fig.Layout.Legend.Title.Text != "region" {
		t.Errorf("legend = %+v, want titled region", fig.Layout.Legend)
	}
	if fig.Layout.XAxis.Title.Text != "units" || fig.Layout.YAxis.Title.Text != "sales" {
		t.Errorf("axis titles = %q/%q", fig.Layout.XAxis.Title.Text, fig.Layout.YAxis.Title.Text)
	}
	// The row with missing sales is not part of the Chart Input.
	if n := len(fig.Data[1].X); n != 1 {
		t.Errorf("west trace has %d points, want 1", n)
	}
}

func TestRender_InteractiveAsPNG(t *testing.T) {
	cmd := mustProject(t, core.ChartInteractiveScatter, "units", "sales", "region")
	var buf bytes.Buffer
	if err := RenderPNG(&buf, cmd, Options{Width: 500, Height: 300}); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	assertPNG(t, buf.Bytes(), 500, 300)
}

func TestNewFigure_NonFiniteIsNull(t *testing.T) {
	cmd := &core.RenderCommand{
		Kind:  core.ChartInteractiveScatter,
		XType: core.ColumnNumeric,
		YType: core.ColumnText,
		Series: []core.Series{{
			Name: "y",
			X:    []core.Cell{core.NumCell(math.NaN()), core.NumCell(1)},
			Y:    []core.Cell{core.TextCell("a"), core.Missing},
		}},
	}
	var buf bytes.Buffer
	if err := WriteFigure(&buf, cmd); err != nil {
		t.Fatalf("WriteFigure: %v", err)
	}
	if !strings.Contains(buf.String(), `"x":[null,1]`) || !strings.Contains(buf.String(), `"y":["a",null]`) {
		t.Errorf("figure = %s", buf.String())
	}
	if strings.Contains(buf.String(), `"legend"`) {
		t.Errorf("figure without color has a legend: %s", buf.String())
	}
}

func TestMediaType(t *testing.T) {
	for _, kind := range core.ChartKinds {
		want := MIMEPNG
		if kind == core.ChartInteractiveScatter {
			want = MIMEFigure
		}
		if got := MediaType(kind); got != want {
			t.Errorf("MediaType(%s) = %q, want %q", kind, got, want)
		}
	}
}

func TestAxis_Detection(t *testing.T) {
	dates := []core.Cell{core.TextCell("2024-01-01"), core.TextCell("2024-02-01")}
	mixed := []core.Cell{core.TextCell("2024-01-01"), core.TextCell("soon")}

	if a := newAxis("d", core.ColumnText, dates); a.kind != axisTime {
		t.Errorf("dates axis kind = %d, want time", a.kind)
	}
	a := newAxis("m", core.ColumnText, mixed)
	if a.kind != axisCategory {
		t.Fatalf("mixed axis kind = %d, want category", a.kind)
	}
	if v := a.value(core.TextCell("soon")); v != 2 {
		t.Errorf("ordinal of second category = %v, want 2", v)
	}
	if r := a.paddedRange(1, 2); r.Min != 0.5 || r.Max != 2.5 {
		t.Errorf("category range = %v..%v, want 0.5..2.5", r.Min, r.Max)
	}
	if a := newAxis("n", core.ColumnNumeric); a.kind != axisNumeric || a.ticks() != nil {
		t.Errorf("numeric axis = %+v, want numeric without ticks", a)
	}
}

func TestAxis_PaddedRange(t *testing.T) {
	num := &axis{kind: axisNumeric}
	if r := num.paddedRange(1, 5); r != nil {
		t.Errorf("range for spread data = %v, want nil", r)
	}
	if r := num.paddedRange(10, 10); r.Min != 9 || r.Max != 11 {
		t.Errorf("range for constant 10 = %v..%v, want 9..11", r.Min, r.Max)
	}
	if r := num.paddedRange(0, 0); r.Min != -1 || r.Max != 1 {
		t.Errorf("range for constant 0 = %v..%v, want -1..1", r.Min, r.Max)
	}
}

func TestScaleColor(t *testing.T) {
	if c := scaleColor(1); c != colorPositive {
		t.Errorf("scaleColor(1) = %v, want %v", c, colorPositive)
	}
	if c := scaleColor(-1); c != colorNegative {
		t.Errorf("scaleColor(-1) = %v, want %v", c, colorNegative)
	}
	if c := scaleColor(0); c != colorNeutral {
		t.Errorf("scaleColor(0) = %v, want %v", c, colorNeutral)
	}
	if c := scaleColor(math.NaN()); c != colorUndefined {
		t.Errorf("scaleColor(NaN) = %v, want %v", c, colorUndefined)
	}
	if got := annotation(0.123456); got != "0.12" {
		t.Errorf("annotation = %q, want 0.12", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
