package core

import (
	"sort"
	"strings"
)

// Apply computes the View: the Dataset after the categorical filter, the
// numeric range filter and the sort described by sel, in that order.
//
// Apply is a pure function of its inputs. The same Dataset and Selection
// always produce the same View, and ds is never modified. A selection that
// names a column missing from ds, or a column of the wrong type, fails with
// a *ConfigurationError.
func Apply(ds *Dataset, sel Selection) (*Dataset, error) {
	if ds == nil {
		ds = &Dataset{}
	}
	if err := sel.validatePipeline(ds); err != nil {
		return nil, err
	}

	rows := allRows(ds.NumRows())
	rows = applyCategorical(ds, rows, sel.Categorical)
	rows = applyNumeric(ds, rows, sel.Numeric)
	sortRows(ds, rows, sel.Sort)

	return ds.Take(rows), nil
}

// applyCategorical keeps rows whose value is in the include set.
// An empty dataset has no distinct values and skips the step.
func applyCategorical(ds *Dataset, rows []int, f *CategoricalFilter) []int {
	if f == nil || len(rows) == 0 {
		return rows
	}
	col, _ := ds.Column(f.Column)

	include := make(map[string]bool, len(f.Values))
	for _, v := range f.Values {
		include[v] = true
	}

	kept := rows[:0:0]
	for _, i := range rows {
		c := col.Cells[i]
		if (c.Valid && include[c.Text]) || (!c.Valid && f.IncludeMissing) {
			kept = append(kept, i)
		}
	}
	return kept
}

// applyNumeric keeps rows whose value falls inside the inclusive range.
// Unset bounds default to the min/max of the rows that reached this step,
// so a filter with no bounds is a no-op. An all-missing column skips the step.
func applyNumeric(ds *Dataset, rows []int, f *NumericFilter) []int {
	if f == nil || (f.Min == nil && f.Max == nil) {
		return rows
	}
	col, _ := ds.Column(f.Column)

	lo, hi, ok := cellRange(col.Cells, rows)
	if !ok {
		return rows
	}
	if f.Min != nil {
		lo = *f.Min
	}
	if f.Max != nil {
		hi = *f.Max
	}

	kept := rows[:0:0]
	for _, i := range rows {
		c := col.Cells[i]
		if c.Valid && c.Num >= lo && c.Num <= hi {
			kept = append(kept, i)
		}
	}
	return kept
}

// sortRows stable-sorts row indices by the sort column. Missing values go
// last in both directions; equal keys keep their relative order.
func sortRows(ds *Dataset, rows []int, spec SortSpec) {
	col, _ := ds.Column(spec.Column)
	desc := spec.Descending()

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := col.Cells[rows[i]], col.Cells[rows[j]]
		if !a.Valid || !b.Valid {
			return a.Valid && !b.Valid
		}
		cmp := compareCells(col.Type, a, b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareCells orders two present cells of the same column type.
func compareCells(t ColumnType, a, b Cell) int {
	if t == ColumnNumeric {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		}
		return 0
	}
	return strings.Compare(a.Text, b.Text)
}
