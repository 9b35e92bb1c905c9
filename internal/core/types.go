package core

import (
	"fmt"
	"math"
	"strconv"
)

// ColumnType is the inferred type of a column.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnNumeric
)

// String returns the lowercase type name used in JSON and templates.
func (t ColumnType) String() string {
	if t == ColumnNumeric {
		return "numeric"
	}
	return "text"
}

// MarshalText implements encoding.TextMarshaler.
func (t ColumnType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ColumnType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "numeric":
		*t = ColumnNumeric
	case "text":
		*t = ColumnText
	default:
		return fmt.Errorf("unknown column type %q", text)
	}
	return nil
}

// Cell is a single value. Num is meaningful for numeric columns and Text for
// text columns. Valid is false for a missing cell.
type Cell struct {
	Num   float64
	Text  string
	Valid bool
}

// Missing is the missing-value marker shared by all column types.
var Missing = Cell{}

// NumCell returns a present numeric cell.
func NumCell(v float64) Cell {
	return Cell{Num: v, Valid: true}
}

// TextCell returns a present text cell.
func TextCell(s string) Cell {
	return Cell{Text: s, Valid: true}
}

// Format renders the cell the way the exporter writes it.
// Missing cells render as the empty string.
func (c Cell) Format(t ColumnType) string {
	if !c.Valid {
		return ""
	}
	if t == ColumnNumeric {
		return FormatNumber(c.Num)
	}
	return c.Text
}

// FormatNumber renders a float in its shortest round-trip form.
func FormatNumber(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Column is a named, homogeneously typed sequence of cells.
type Column struct {
	Name  string
	Type  ColumnType
	Cells []Cell
}

// Dataset is an ordered set of equally long columns.
type Dataset struct {
	Columns []*Column
}

// NumRows returns the number of rows. Every column has the same length.
func (d *Dataset) NumRows() int {
	if d == nil || len(d.Columns) == 0 {
		return 0
	}
	return len(d.Columns[0].Cells)
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	if d == nil {
		return 0
	}
	return len(d.Columns)
}

// Column returns the column with the given name.
func (d *Dataset) Column(name string) (*Column, bool) {
	if d == nil {
		return nil, false
	}
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	if d == nil {
		return nil
	}
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the names of numeric columns in order.
func (d *Dataset) NumericColumns() []string {
	return d.columnsOfType(ColumnNumeric)
}

// TextColumns returns the names of text columns in order.
func (d *Dataset) TextColumns() []string {
	return d.columnsOfType(ColumnText)
}

func (d *Dataset) columnsOfType(t ColumnType) []string {
	if d == nil {
		return nil
	}
	var names []string
	for _, c := range d.Columns {
		if c.Type == t {
			names = append(names, c.Name)
		}
	}
	return names
}

// Row returns row i formatted as strings, in column order.
func (d *Dataset) Row(i int) []string {
	row := make([]string, len(d.Columns))
	for j, c := range d.Columns {
		row[j] = c.Cells[i].Format(c.Type)
	}
	return row
}

// Head returns at most n rows formatted as strings. n <= 0 returns all rows.
func (d *Dataset) Head(n int) [][]string {
	total := d.NumRows()
	if n <= 0 || n > total {
		n = total
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = d.Row(i)
	}
	return rows
}

// Take returns a new Dataset holding the given rows in the given order.
// Column order and types are preserved; cells are copied.
func (d *Dataset) Take(indices []int) *Dataset {
	out := &Dataset{Columns: make([]*Column, len(d.Columns))}
	for j, c := range d.Columns {
		cells := make([]Cell, len(indices))
		for k, i := range indices {
			cells[k] = c.Cells[i]
		}
		out.Columns[j] = &Column{Name: c.Name, Type: c.Type, Cells: cells}
	}
	return out
}

// Clone returns a deep copy of the Dataset.
func (d *Dataset) Clone() *Dataset {
	return d.Take(allRows(d.NumRows()))
}

// Equal reports whether two datasets have the same columns, types and cells.
// Missing cells compare equal to each other regardless of payload.
func (d *Dataset) Equal(o *Dataset) bool {
	if d.NumColumns() != o.NumColumns() || d.NumRows() != o.NumRows() {
		return false
	}
	for j, c := range d.Columns {
		oc := o.Columns[j]
		if c.Name != oc.Name || c.Type != oc.Type {
			return false
		}
		for i, cell := range c.Cells {
			if !cellsEqual(c.Type, cell, oc.Cells[i]) {
				return false
			}
		}
	}
	return true
}

func cellsEqual(t ColumnType, a, b Cell) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	if t == ColumnNumeric {
		return a.Num == b.Num || (math.IsNaN(a.Num) && math.IsNaN(b.Num))
	}
	return a.Text == b.Text
}

func allRows(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// ColumnMeta describes a column for presentation layers.
type ColumnMeta struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	Missing int        `json:"missing"`
}

// Describe returns per-column metadata in column order.
func (d *Dataset) Describe() []ColumnMeta {
	if d == nil {
		return nil
	}
	meta := make([]ColumnMeta, len(d.Columns))
	for i, c := range d.Columns {
		missing := 0
		for _, cell := range c.Cells {
			if !cell.Valid {
				missing++
			}
		}
		meta[i] = ColumnMeta{Name: c.Name, Type: c.Type, Missing: missing}
	}
	return meta
}
