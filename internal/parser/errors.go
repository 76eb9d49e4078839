package parser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInfiniteValue is wrapped by ParseError for cells such as "inf" or "-Inf".
var ErrInfiniteValue = errors.New("infinite value")

// FileAccessError is returned when a result file cannot be opened or read.
// A missing file unwraps to os.ErrNotExist.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot access result file %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// ParseError describes a malformed row or cell.
type ParseError struct {
	Path   string
	Line   int
	Column string // empty when the whole record is malformed
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: malformed record: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %q: cannot parse %q: %v", e.Path, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// MissingColumnError is returned when a grouping or value column is not in the header.
type MissingColumnError struct {
	Path      string
	Column    string
	Available []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: column %q not found (have: %s)", e.Path, e.Column, strings.Join(e.Available, ", "))
}
