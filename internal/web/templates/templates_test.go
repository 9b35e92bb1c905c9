package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/tabview/internal/core"
)

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Bad <input>", "Try again", "CFG001").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Bad &lt;input&gt;") || !strings.Contains(out, "CFG001") || !strings.Contains(out, "Try again") {
		t.Errorf("alert = %q", out)
	}
}

func TestUploadPage(t *testing.T) {
	var buf bytes.Buffer
	if err := UploadPage(100<<20).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<!doctype html>") || !strings.Contains(out, "100 MB") || !strings.Contains(out, `accept=".csv,.xlsx"`) {
		t.Errorf("page = %q", out)
	}
}

func TestDashboard(t *testing.T) {
	lo := 10.0
	p := DashboardParams{
		SessionID: "id-1",
		FileName:  "sales.csv",
		Selection: core.Selection{
			Categorical: &core.CategoricalFilter{Column: "region", Values: []string{"east"}, IncludeMissing: true},
			Numeric:     &core.NumericFilter{Column: "sales", Min: &lo},
			Sort:        core.SortSpec{Column: "date", Dir: core.SortDesc},
			Chart:       core.ChartInteractiveScatter,
			X:           "date",
			Y:           "sales",
			Color:       "region",
		},
		TextColumns:    []string{"date", "region"},
		NumericColumns: []string{"sales"},
		AllColumns:     []string{"date", "region", "sales"},
		CategoryValues: []string{"east", "west"},
		HasMissing:     true,
		NumericMin:     "5",
		NumericMax:     "100",
		Header:         []string{"date", "region", "sales"},
		Rows:           [][]string{{"2024-01-01", "east", ""}},
		TotalRows:      3,
		ViewRows:       1,
		ChartURL:       "/session/id-1/chart?v=1",
		Interactive:    true,
		ExportURL:      "/session/id-1/export",
	}

	var buf bytes.Buffer
	if err := Dashboard(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()

	checks := []string{
		`hx-post="/session/id-1/selection"`,
		`name="categorical_values" value="east" checked`,
		`name="categorical_values" value="west">`,
		`name="include_missing" value="true" checked`,
		`name="numeric_min" value="10" placeholder="5"`,
		`<option value="desc" selected>`,
		`<option value="interactive_scatter" selected>Interactive Scatter</option>`,
		`id="color"`,
		`<td class="missing">NaN</td>`,
		`data-chart-url="/session/id-1/chart?v=1"`,
		`Plotly.newPlot`,
		`Showing 1 of 1 filtered rows (3 loaded)`,
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("dashboard missing %q", c)
		}
	}
}

func TestDashboard_ChartWarningAndHeatmap(t *testing.T) {
	p := DashboardParams{
		SessionID:    "id-2",
		FileName:     "one.csv",
		Selection:    core.Selection{Chart: core.ChartHeatmap, Sort: core.SortSpec{Column: "a"}},
		AllColumns:   []string{"a"},
		ChartWarning: "Not enough numeric columns",
		Error:        &core.UserMessage{Message: "Rejected", Code: "CFG001"},
	}
	var buf bytes.Buffer
	if err := DashboardPage(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "alert-warning") || strings.Contains(out, "<img") {
		t.Error("warning should replace the chart image")
	}
	if strings.Contains(out, `id="x"`) {
		t.Error("heatmap should not offer axis selectors")
	}
	if !strings.Contains(out, "Rejected") {
		t.Error("rejected selection message missing")
	}
}
