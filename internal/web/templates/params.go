// Package templates holds the templ components of the dashboard.
//
// The .templ files are the source; the _templ.go files next to them are
// generated with `templ generate`.
package templates

import (
	"fmt"

	"github.com/JonMunkholm/tabview/internal/core"
)

// DashboardParams is everything the dashboard shows for one session.
type DashboardParams struct {
	SessionID string
	FileName  string
	Selection core.Selection

	TextColumns    []string
	NumericColumns []string
	AllColumns     []string
	// CategoryValues are the choices for the selected categorical column.
	CategoryValues []string
	HasMissing     bool
	// NumericMin and NumericMax bound the selected numeric column, if any.
	NumericMin, NumericMax string

	Header    []string
	Rows      [][]string
	TotalRows int
	ViewRows  int

	ChartURL     string
	Interactive  bool
	ChartWarning string
	ExportURL    string

	// Error is shown above the controls when the last change was rejected.
	Error *core.UserMessage
}

func (p DashboardParams) selectionURL() string {
	return "/session/" + p.SessionID + "/selection"
}

func (p DashboardParams) categoricalColumn() string {
	if p.Selection.Categorical == nil {
		return ""
	}
	return p.Selection.Categorical.Column
}

func (p DashboardParams) categoryChosen(v string) bool {
	if p.Selection.Categorical == nil {
		return false
	}
	for _, c := range p.Selection.Categorical.Values {
		if c == v {
			return true
		}
	}
	return false
}

func (p DashboardParams) numericColumn() string {
	if p.Selection.Numeric == nil {
		return ""
	}
	return p.Selection.Numeric.Column
}

// numericMin and numericMax are the bounds the user entered, or "".
func (p DashboardParams) numericMin() string {
	if p.Selection.Numeric == nil || p.Selection.Numeric.Min == nil {
		return ""
	}
	return core.FormatNumber(*p.Selection.Numeric.Min)
}

func (p DashboardParams) numericMax() string {
	if p.Selection.Numeric == nil || p.Selection.Numeric.Max == nil {
		return ""
	}
	return core.FormatNumber(*p.Selection.Numeric.Max)
}

// withNone prepends the empty choice to values.
func withNone(values []string) []string {
	return append([]string{""}, values...)
}

func optionLabel(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return fmt.Sprintf("%d MB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
