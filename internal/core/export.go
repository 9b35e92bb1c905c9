package core

import (
	"bytes"
	"encoding/csv"
	"io"
)

// Download metadata for an exported View.
const (
	ExportFileName = "filtered_data.csv"
	ExportMIME     = "text/csv"
)

// Export serializes view as comma-separated UTF-8 text with a header row.
// Missing cells become empty fields. A view with no rows still produces the
// header line.
func Export(view *Dataset) []byte {
	var buf bytes.Buffer
	// Writing to a bytes.Buffer cannot fail.
	_ = WriteCSV(&buf, view)
	return buf.Bytes()
}

// WriteCSV streams the same bytes Export returns to w.
func WriteCSV(w io.Writer, view *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(view.ColumnNames()); err != nil {
		return err
	}
	for i := 0; i < view.NumRows(); i++ {
		if err := cw.Write(view.Row(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
