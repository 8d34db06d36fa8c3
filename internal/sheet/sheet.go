// Package sheet converts between tabular files and row maps. The import and
// export flows only ever see []map[string]any; the file format stays behind
// these two interfaces.
package sheet

import (
	"io"
	"path/filepath"
	"strings"
)

const (
	ExtCSV  = "csv"
	ExtXLSX = "xlsx"
)

// Reader parses a tabular file into one map per data row, keyed by the header
// row. Cells left empty are absent from the map, so a missing required field
// shows up as a nil lookup downstream.
type Reader interface {
	Read(r io.Reader) ([]map[string]any, error)
}

// Writer renders rows in header order.
type Writer interface {
	Write(w io.Writer, headers []string, rows []map[string]any) error
}

// WriterFor returns the writer for an export extension.
func WriterFor(ext string) (Writer, bool) {
	switch strings.ToLower(ext) {
	case ExtCSV:
		return CSV{}, true
	case ExtXLSX:
		return XLSX{}, true
	}
	return nil, false
}

// ReaderFor picks a reader from an uploaded file name.
func ReaderFor(name string) (Reader, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case ExtCSV:
		return CSV{}, true
	case ExtXLSX:
		return XLSX{}, true
	}
	return nil, false
}
