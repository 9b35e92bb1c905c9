package core

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Supported upload extensions.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
)

// SupportedExtensions lists the accepted upload extensions in display order.
var SupportedExtensions = []string{ExtCSV, ExtXLSX}

// Load parses an uploaded file into a Dataset. The parser is chosen by the
// filename extension. Any failure is returned as a *LoadError.
func Load(data []byte, filename string) (*Dataset, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ExtCSV && ext != ExtXLSX {
		return nil, &LoadError{FileName: filename, Err: fmt.Errorf("%w %q (expected %s)",
			ErrUnsupportedFile, filepath.Ext(filename), strings.Join(SupportedExtensions, " or "))}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &LoadError{FileName: filename, Err: ErrEmptyFile}
	}

	var (
		records [][]string
		err     error
	)
	if ext == ExtCSV {
		records, err = readCSV(bytes.NewReader(data))
	} else {
		records, err = readXLSX(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &LoadError{FileName: filename, Err: err}
	}

	ds, err := buildDataset(records)
	if err != nil {
		return nil, &LoadError{FileName: filename, Err: err}
	}
	return ds, nil
}

// LoadReader reads r to the end and calls Load. Datasets are held in memory,
// so the whole upload is buffered.
func LoadReader(r io.Reader, filename string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{FileName: filename, Err: fmt.Errorf("read upload: %w", err)}
	}
	return Load(data, filename)
}

// readCSV parses comma-separated text with the header in the first record.
func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(NewInputReader(r))
	cr.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readXLSX reads the first sheet of a workbook.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("invalid spreadsheet: no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet: sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// buildDataset turns header + data records into typed columns.
func buildDataset(records [][]string) (*Dataset, error) {
	// Leading blank lines carry no header.
	for len(records) > 0 && isEmptyRow(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := makeHeader(records[0])
	width := len(header)
	data := records[1:]

	raw := make([][]string, width)
	for j := range raw {
		raw[j] = make([]string, 0, len(data))
	}

	for i, rec := range data {
		if len(rec) > width {
			// Trailing empty cells beyond the header are spreadsheet noise.
			if !isEmptyRow(rec[width:]) {
				return nil, fmt.Errorf("invalid csv: line %d: expected %d fields, saw %d", i+2, width, len(rec))
			}
			rec = rec[:width]
		}
		for j := 0; j < width; j++ {
			if j < len(rec) {
				raw[j] = append(raw[j], rec[j])
			} else {
				raw[j] = append(raw[j], "")
			}
		}
	}

	ds := &Dataset{Columns: make([]*Column, width)}
	for j, name := range header {
		ds.Columns[j] = BuildColumn(name, raw[j])
	}
	return ds, nil
}

// isEmptyRow reports whether every field is blank.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
