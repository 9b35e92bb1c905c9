package core

// convert.go turns raw cell text from CSV and spreadsheet files into typed cells.
//
// These functions handle the messy reality of user-provided data:
//   - Excel formula prefixes (="value")
//   - The usual spellings of "no value" (NA, N/A, NaN, null, None, #N/A)
//   - Leading/trailing whitespace around numbers
//
// Type inference is per column: a column is numeric only when every present
// cell parses as a number.

import (
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingMarkers are cell spellings treated as missing values.
var missingMarkers = map[string]bool{
	"":         true,
	"NA":       true,
	"N/A":      true,
	"n/a":      true,
	"NaN":      true,
	"nan":      true,
	"-NaN":     true,
	"-nan":     true,
	"null":     true,
	"NULL":     true,
	"None":     true,
	"#N/A":     true,
	"#NA":      true,
	"<NA>":     true,
	"#N/A N/A": true,
}

// CleanCell removes common artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}

// IsMissing reports whether a cleaned cell value denotes a missing value.
func IsMissing(s string) bool {
	return missingMarkers[s]
}

// ParseNumber parses a cleaned cell as a float.
// Returns false for anything that is not a plain decimal or scientific number;
// "inf" and "-inf" are accepted the way the exporter writes them.
func ParseNumber(s string) (float64, bool) {
	switch strings.ToLower(s) {
	case "inf", "+inf", "infinity":
		v, _ := strconv.ParseFloat("+Inf", 64)
		return v, true
	case "-inf", "-infinity":
		v, _ := strconv.ParseFloat("-Inf", 64)
		return v, true
	}
	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BuildColumn infers the column type from raw cell strings and converts them.
func BuildColumn(name string, raw []string) *Column {
	cleaned := make([]string, len(raw))
	numeric := true
	for i, s := range raw {
		s = CleanCell(s)
		cleaned[i] = s
		if IsMissing(s) {
			continue
		}
		if _, ok := ParseNumber(s); !ok {
			numeric = false
		}
	}

	// An all-missing column stays numeric.
	col := &Column{Name: name, Type: ColumnText, Cells: make([]Cell, len(raw))}
	if numeric {
		col.Type = ColumnNumeric
	}

	for i, s := range cleaned {
		if IsMissing(s) {
			col.Cells[i] = Missing
			continue
		}
		if col.Type == ColumnNumeric {
			v, _ := ParseNumber(s)
			col.Cells[i] = NumCell(v)
		} else {
			col.Cells[i] = TextCell(s)
		}
	}
	return col
}

// makeHeader normalizes header names: blank names become "Unnamed: i" and
// duplicates get ".1", ".2", ... suffixes in order of appearance.
func makeHeader(raw []string) []string {
	header := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	suffix := make(map[string]int)
	for i, h := range raw {
		h = CleanCell(h)
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		if used[name] {
			n := suffix[h]
			for {
				n++
				name = h + "." + strconv.Itoa(n)
				if !used[name] {
					break
				}
			}
			suffix[h] = n
		}
		used[name] = true
		header[i] = name
	}
	return header
}
