package parser

import (
	"math"
	"strings"
)

// Well-known column names written by the experiment runner.
const (
	NeuronsColumn  = "neurons"
	AccuracyColumn = "accuracy"
	MaxLevelColumn = "max_level"
)

// ResultRow is a single measurement line of a result file.
// Values holds one entry per header column, in header order.
type ResultRow struct {
	Line   int // 1-based line number in the source file
	Values []float64
}

// ResultFile holds every row of one (method, dataset) result table.
type ResultFile struct {
	Path     string
	Columns  []string
	Rows     []ResultRow
	Warnings []string // non-fatal issues found while parsing
}

// NewResultFile initializes an empty ResultFile for path.
func NewResultFile(path string) *ResultFile {
	return &ResultFile{
		Path:     path,
		Columns:  make([]string, 0),
		Rows:     make([]ResultRow, 0),
		Warnings: make([]string, 0),
	}
}

// IsEmpty reports whether the file carried no data rows.
func (f *ResultFile) IsEmpty() bool {
	return len(f.Rows) == 0
}

// ColumnIndex returns the position of name in the header.
// An empty file (no header at all) has no columns, which is not an error:
// callers get -1 and nil so that empty inputs aggregate to empty series.
func (f *ResultFile) ColumnIndex(name string) (int, error) {
	if len(f.Columns) == 0 {
		return -1, nil
	}
	for i, c := range f.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, &MissingColumnError{Path: f.Path, Column: name, Available: f.Columns}
}

// Value returns the value of column idx in row, or NaN if idx is out of range.
func (r ResultRow) Value(idx int) float64 {
	if idx < 0 || idx >= len(r.Values) {
		return math.NaN()
	}
	return r.Values[idx]
}

func normalizeColumnName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
