package core

import (
	"fmt"
	"strings"
)

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// PreviewRows is the number of rows shown when the full dataset is hidden.
const PreviewRows = 5

// CategoricalFilter keeps rows whose text value is in Values.
// Missing cells are kept only when IncludeMissing is set.
type CategoricalFilter struct {
	Column         string   `json:"column" yaml:"column"`
	Values         []string `json:"values" yaml:"values"`
	IncludeMissing bool     `json:"include_missing,omitempty" yaml:"include_missing,omitempty"`
}

// NumericFilter keeps rows whose value lies in [Min, Max].
// A nil bound defaults to the column minimum or maximum of the rows that
// survived the categorical filter.
type NumericFilter struct {
	Column string   `json:"column" yaml:"column"`
	Min    *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// SortSpec represents the sort column and direction.
type SortSpec struct {
	Column string `json:"column" yaml:"column"`
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"` // "asc" or "desc"
}

// Descending reports whether the sort runs high to low.
func (s SortSpec) Descending() bool {
	return strings.EqualFold(s.Dir, SortDesc)
}

// Selection is the user's current choice of filters, sort, chart and axes.
// It is replaced wholesale when a new file is loaded.
type Selection struct {
	Categorical *CategoricalFilter `json:"categorical,omitempty" yaml:"categorical,omitempty"`
	Numeric     *NumericFilter     `json:"numeric,omitempty" yaml:"numeric,omitempty"`
	Sort        SortSpec           `json:"sort" yaml:"sort"`
	Chart       ChartKind          `json:"chart" yaml:"chart"`
	X           string             `json:"x" yaml:"x"`
	Y           string             `json:"y" yaml:"y"`
	Color       string             `json:"color,omitempty" yaml:"color,omitempty"`
	ShowFull    bool               `json:"show_full,omitempty" yaml:"show_full,omitempty"`
}

// DefaultSelection returns the selection a session starts with after a
// successful load: no filters, sorted by the first column ascending, the
// first two columns as axes and a line chart.
func DefaultSelection(ds *Dataset) Selection {
	sel := Selection{Chart: ChartLine, Sort: SortSpec{Dir: SortAsc}}
	names := ds.ColumnNames()
	if len(names) > 0 {
		sel.Sort.Column = names[0]
		sel.X = names[0]
		sel.Y = names[0]
	}
	if len(names) > 1 {
		sel.Y = names[1]
	}
	return sel
}

// PreviewLimit returns how many View rows to display; 0 means all.
func (s Selection) PreviewLimit() int {
	if s.ShowFull {
		return 0
	}
	return PreviewRows
}

// Clone returns a copy that shares no mutable state with s.
func (s Selection) Clone() Selection {
	out := s
	if s.Categorical != nil {
		c := *s.Categorical
		c.Values = append([]string(nil), s.Categorical.Values...)
		out.Categorical = &c
	}
	if s.Numeric != nil {
		n := *s.Numeric
		if s.Numeric.Min != nil {
			v := *s.Numeric.Min
			n.Min = &v
		}
		if s.Numeric.Max != nil {
			v := *s.Numeric.Max
			n.Max = &v
		}
		out.Numeric = &n
	}
	return out
}

// Validate checks every column the selection names against the Dataset.
// It returns the first *ConfigurationError found.
func (s Selection) Validate(ds *Dataset) error {
	if err := s.validatePipeline(ds); err != nil {
		return err
	}
	if !s.Chart.Valid() {
		return &ConfigurationError{Field: "chart", Column: string(s.Chart), Err: ErrUnknownChartKind}
	}
	return validateAxes(ds, s.Chart, s.X, s.Y, s.Color)
}

// validatePipeline checks the filter and sort columns used by Apply.
func (s Selection) validatePipeline(ds *Dataset) error {
	if f := s.Categorical; f != nil {
		col, ok := ds.Column(f.Column)
		if !ok {
			return unknownColumn("categorical.column", f.Column)
		}
		if col.Type != ColumnText {
			return wrongType("categorical.column", f.Column, ColumnText)
		}
	}
	if f := s.Numeric; f != nil {
		col, ok := ds.Column(f.Column)
		if !ok {
			return unknownColumn("numeric.column", f.Column)
		}
		if col.Type != ColumnNumeric {
			return wrongType("numeric.column", f.Column, ColumnNumeric)
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			return &ConfigurationError{
				Field:  "numeric.min",
				Column: f.Column,
				Err:    fmt.Errorf("range minimum %s exceeds maximum %s", FormatNumber(*f.Min), FormatNumber(*f.Max)),
			}
		}
	}
	if _, ok := ds.Column(s.Sort.Column); !ok {
		return unknownColumn("sort.column", s.Sort.Column)
	}
	switch strings.ToLower(s.Sort.Dir) {
	case "", SortAsc, SortDesc:
	default:
		return &ConfigurationError{Field: "sort.dir", Column: s.Sort.Column, Err: fmt.Errorf("unknown sort direction %q", s.Sort.Dir)}
	}
	return nil
}

// CategoricalDefaults returns the no-op filter for column: every distinct
// value currently present, plus missing values if there are any.
func CategoricalDefaults(ds *Dataset, column string) (*CategoricalFilter, error) {
	values, hasMissing, err := DistinctValues(ds, column)
	if err != nil {
		return nil, err
	}
	return &CategoricalFilter{Column: column, Values: values, IncludeMissing: hasMissing}, nil
}

// DistinctValues returns the distinct present values of a text column in
// order of first appearance, and whether the column has missing cells.
func DistinctValues(ds *Dataset, column string) ([]string, bool, error) {
	col, ok := ds.Column(column)
	if !ok {
		return nil, false, unknownColumn("categorical.column", column)
	}
	if col.Type != ColumnText {
		return nil, false, wrongType("categorical.column", column, ColumnText)
	}
	seen := make(map[string]bool)
	var values []string
	hasMissing := false
	for _, c := range col.Cells {
		if !c.Valid {
			hasMissing = true
			continue
		}
		if !seen[c.Text] {
			seen[c.Text] = true
			values = append(values, c.Text)
		}
	}
	return values, hasMissing, nil
}

// NumericRange returns the minimum and maximum present value of a numeric
// column. ok is false when the column has no present values.
func NumericRange(ds *Dataset, column string) (lo, hi float64, ok bool, err error) {
	col, found := ds.Column(column)
	if !found {
		return 0, 0, false, unknownColumn("numeric.column", column)
	}
	if col.Type != ColumnNumeric {
		return 0, 0, false, wrongType("numeric.column", column, ColumnNumeric)
	}
	lo, hi, ok = cellRange(col.Cells, allRows(len(col.Cells)))
	return lo, hi, ok, nil
}

// NumericDomain returns the range of a numeric column over the rows that
// reach the numeric filter, i.e. those kept by sel's categorical filter.
// Unset numeric bounds default to this range in Apply.
func NumericDomain(ds *Dataset, sel Selection, column string) (lo, hi float64, ok bool, err error) {
	col, found := ds.Column(column)
	if !found {
		return 0, 0, false, unknownColumn("numeric.column", column)
	}
	if col.Type != ColumnNumeric {
		return 0, 0, false, wrongType("numeric.column", column, ColumnNumeric)
	}
	if f := sel.Categorical; f != nil {
		cat, found := ds.Column(f.Column)
		if !found {
			return 0, 0, false, unknownColumn("categorical.column", f.Column)
		}
		if cat.Type != ColumnText {
			return 0, 0, false, wrongType("categorical.column", f.Column, ColumnText)
		}
	}
	rows := applyCategorical(ds, allRows(ds.NumRows()), sel.Categorical)
	lo, hi, ok = cellRange(col.Cells, rows)
	return lo, hi, ok, nil
}

// cellRange returns the min and max of the present cells among rows.
func cellRange(cells []Cell, rows []int) (lo, hi float64, ok bool) {
	for _, i := range rows {
		c := cells[i]
		if !c.Valid {
			continue
		}
		if !ok {
			lo, hi, ok = c.Num, c.Num, true
			continue
		}
		if c.Num < lo {
			lo = c.Num
		}
		if c.Num > hi {
			hi = c.Num
		}
	}
	return lo, hi, ok
}
