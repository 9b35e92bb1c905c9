package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseChartKind(t *testing.T) {
	tests := []struct {
		input   string
		want    ChartKind
		wantErr bool
	}{
		{input: "line", want: ChartLine},
		{input: "Bar", want: ChartBar},
		{input: " scatter ", want: ChartScatter},
		{input: "heatmap", want: ChartHeatmap},
		{input: "Correlation Heatmap", want: ChartHeatmap},
		{input: "Seaborn Heatmap", want: ChartHeatmap},
		{input: "interactive_scatter", want: ChartInteractiveScatter},
		{input: "Plotly Interactive", want: ChartInteractiveScatter},
		{input: "interactive-scatter", want: ChartInteractiveScatter},
		{input: "pie", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChartKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownChartKind) {
					t.Errorf("ParseChartKind(%q) error = %v, want ErrUnknownChartKind", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseChartKind(%q) = %q, %v, want %q", tt.input, got, err, tt.want)
			}
		})
	}
}

func TestChartKinds_AllValidAndLabelled(t *testing.T) {
	for _, k := range ChartKinds {
		if !k.Valid() {
			t.Errorf("%q not valid", k)
		}
		if k.Label() == string(k) {
			t.Errorf("%q has no label", k)
		}
		if back, err := ParseChartKind(k.Label()); err != nil || back != k {
			t.Errorf("label %q parses to %q, %v", k.Label(), back, err)
		}
	}
	if ChartKind("pie").Valid() {
		t.Error("unknown kind reported valid")
	}
}

func TestChartInput_DropsMissingAxes(t *testing.T) {
	ds := mustLoad(t, ordersCSV, "orders.csv")

	input, err := ChartInput(ds, "id", "amount")
	if err != nil {
		t.Fatalf("ChartInput: %v", err)
	}
	if input.NumRows() > ds.NumRows() {
		t.Errorf("Chart Input has %d rows, View has %d", input.NumRows(), ds.NumRows())
	}
	for _, name := range []string{"id", "amount"} {
		col, _ := input.Column(name)
		for i, c := range col.Cells {
			if !c.Valid {
				t.Errorf("%s row %d is missing", name, i)
			}
		}
	}
	if got := column(t, input, "id"); len(got) != 5 || got[2] != "4" {
		t.Errorf("ids = %v, want row 3 dropped in order", got)
	}

	// A missing value outside the axes does not drop the row.
	input, _ = ChartInput(ds, "id", "region")
	if input.NumRows() != 5 {
		t.Errorf("rows = %d, want 5", input.NumRows())
	}
}

func TestProject_XY(t *testing.T) {
	ds := mustLoad(t, ordersCSV, "orders.csv")

	for _, kind := range []ChartKind{ChartLine, ChartBar, ChartScatter} {
		t.Run(string(kind), func(t *testing.T) {
			cmd, err := Project(ds, kind, "region", "amount", "note")
			if err != nil {
				t.Fatalf("Project: %v", err)
			}
			if cmd.Kind != kind || cmd.XLabel != "region" || cmd.YLabel != "amount" {
				t.Errorf("command = %+v", cmd)
			}
			if cmd.XType != ColumnText || cmd.YType != ColumnNumeric {
				t.Errorf("axis types = %v/%v", cmd.XType, cmd.YType)
			}
			if len(cmd.Series) != 1 {
				t.Fatalf("series = %d, want 1 (color ignored)", len(cmd.Series))
			}
			// Rows 3 (no amount) and 6 (no region) are dropped.
			if cmd.Points() != 4 {
				t.Errorf("points = %d, want 4", cmd.Points())
			}
			if cmd.Heatmap != nil {
				t.Error("XY chart carries a heatmap")
			}
		})
	}
}

func TestProject_InteractiveGroups(t *testing.T) {
	ds := mustLoad(t, ordersCSV, "orders.csv")

	cmd, err := Project(ds, ChartInteractiveScatter, "id", "amount", "region")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	want := []struct {
		name string
		n    int
	}{{"east", 1}, {"west", 2}, {"north", 1}, {MissingGroup, 1}}
	if len(cmd.Series) != len(want) {
		t.Fatalf("series = %d, want %d", len(cmd.Series), len(want))
	}
	for i, w := range want {
		if cmd.Series[i].Name != w.name || cmd.Series[i].Len() != w.n {
			t.Errorf("series %d = %s/%d, want %s/%d", i, cmd.Series[i].Name, cmd.Series[i].Len(), w.name, w.n)
		}
	}

	cmd, err = Project(ds, ChartInteractiveScatter, "id", "amount", "")
	if err != nil {
		t.Fatalf("Project without color: %v", err)
	}
	if len(cmd.Series) != 1 {
		t.Errorf("series = %d, want 1", len(cmd.Series))
	}
}

func TestProject_Errors(t *testing.T) {
	ds := mustLoad(t, ordersCSV, "orders.csv")
	allMissing := mustLoad(t, "x,y\n1,\n2,\n", "m.csv")

	tests := []struct {
		name      string
		ds        *Dataset
		kind      ChartKind
		x, y, c   string
		wantChart error
		wantCfg   bool
	}{
		{name: "unknown x", ds: ds, kind: ChartLine, x: "nope", y: "amount", wantCfg: true},
		{name: "unknown y", ds: ds, kind: ChartScatter, x: "id", y: "nope", wantCfg: true},
		{name: "unknown color", ds: ds, kind: ChartInteractiveScatter, x: "id", y: "amount", c: "nope", wantCfg: true},
		{name: "unknown kind", ds: ds, kind: ChartKind("pie"), x: "id", y: "amount", wantCfg: true},
		{name: "no complete rows", ds: allMissing, kind: ChartLine, x: "x", y: "y", wantChart: ErrNoChartRows},
		{name: "heatmap one numeric column", ds: mustLoad(t, salesCSV, "s.csv"), kind: ChartHeatmap, wantChart: ErrInsufficientNumeric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Project(tt.ds, tt.kind, tt.x, tt.y, tt.c)
			if err == nil {
				t.Fatalf("Project = %+v, want error", cmd)
			}
			if tt.wantCfg && !IsConfigurationError(err) {
				t.Errorf("error = %v, want ConfigurationError", err)
			}
			if tt.wantChart != nil {
				var ce *ChartError
				if !errors.As(err, &ce) || ce.Kind != tt.kind {
					t.Fatalf("error = %v, want ChartError for %s", err, tt.kind)
				}
				if !errors.Is(err, tt.wantChart) {
					t.Errorf("error = %v, want %v", err, tt.wantChart)
				}
			}
		})
	}
}

func TestProject_HeatmapSingleNumericMessage(t *testing.T) {
	ds := mustLoad(t, "name,v\na,1\nb,2\n", "one.csv")
	_, err := Project(ds, ChartHeatmap, "", "", "")
	if err == nil || err.Error() != "insufficient numeric columns" {
		t.Errorf("error = %v, want insufficient numeric columns", err)
	}
}

func TestProject_Heatmap(t *testing.T) {
	data := "a,b,c,d,label\n" +
		"1,2,9,5,x\n" +
		"2,4,8,5,y\n" +
		"3,6,7,5,z\n" +
		"4,,6,5,w\n"
	ds := mustLoad(t, data, "corr.csv")

	cmd, err := Project(ds, ChartHeatmap, "ignored", "ignored", "")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	m := cmd.Heatmap
	if m == nil || len(m.Columns) != 4 {
		t.Fatalf("heatmap = %+v, want 4 numeric columns", m)
	}

	near := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
	if !near(m.Values[0][1], 1) {
		t.Errorf("corr(a,b) = %v, want 1", m.Values[0][1])
	}
	if !near(m.Values[0][2], -1) {
		t.Errorf("corr(a,c) = %v, want -1", m.Values[0][2])
	}
	if !math.IsNaN(m.Values[0][3]) {
		t.Errorf("corr(a,d) = %v, want NaN for constant column", m.Values[0][3])
	}
	if !math.IsNaN(m.Values[3][3]) {
		t.Errorf("corr(d,d) = %v, want NaN", m.Values[3][3])
	}
	for i := 0; i < 3; i++ {
		if m.Values[i][i] != 1 {
			t.Errorf("diagonal %d = %v, want 1", i, m.Values[i][i])
		}
	}
	for i := range m.Values {
		for j := range m.Values {
			a, b := m.Values[i][j], m.Values[j][i]
			if a != b && !(math.IsNaN(a) && math.IsNaN(b)) {
				t.Errorf("matrix not symmetric at %d,%d", i, j)
			}
		}
	}
}

// The heatmap reads the View, so a filter can leave too few numeric rows to
// correlate without affecting the column count.
func TestProject_HeatmapUsesView(t *testing.T) {
	ds := mustLoad(t, ordersCSV, "orders.csv")
	view, err := Apply(ds, Selection{
		Categorical: &CategoricalFilter{Column: "region", Values: []string{"north"}},
		Sort:        SortSpec{Column: "id"},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	cmd, err := Project(view, ChartHeatmap, "", "", "")
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if !math.IsNaN(cmd.Heatmap.Values[0][1]) {
		t.Errorf("corr on one row = %v, want NaN", cmd.Heatmap.Values[0][1])
	}
}
