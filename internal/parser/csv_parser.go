package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ParseResultFile reads a comma separated result table from disk.
// A zero-byte file or a file with only a header yields an empty ResultFile.
func ParseResultFile(path string) (*ResultFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer file.Close()

	return ParseResults(file, path)
}

// ParseResults parses a result table from r. path is only used in messages.
func ParseResults(r io.Reader, path string) (*ResultFile, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	result := NewResultFile(path)

	header, err := reader.Read()
	if err == io.EOF {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: file is empty", path))
		return result, nil
	}
	if err != nil {
		return nil, toParseError(path, err)
	}

	seen := make(map[string]bool, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		col := normalizeColumnName(name)
		if seen[col] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: duplicate column %q, first occurrence is used", path, col))
		}
		seen[col] = true
		result.Columns = append(result.Columns, col)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, toParseError(path, err)
		}
		line, _ := reader.FieldPos(0)

		row := ResultRow{Line: line, Values: make([]float64, len(record))}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				// Missing cells behave like NaN and are dropped during aggregation.
				result.Warnings = append(result.Warnings, fmt.Sprintf("%s:%d: empty %q value, treated as NaN", path, line, result.Columns[i]))
				row.Values[i] = math.NaN()
				continue
			}
			val, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &ParseError{Path: path, Line: line, Column: result.Columns[i], Value: cell, Err: err}
			}
			if math.IsInf(val, 0) {
				return nil, &ParseError{Path: path, Line: line, Column: result.Columns[i], Value: cell, Err: ErrInfiniteValue}
			}
			row.Values[i] = val
		}
		result.Rows = append(result.Rows, row)
	}

	if len(result.Rows) == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no data rows", path))
	}
	return result, nil
}

// toParseError converts csv reader failures into ParseError values.
func toParseError(path string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Path: path, Line: csvErr.Line, Err: csvErr.Err}
	}
	return &FileAccessError{Path: path, Err: err}
}
