// Package survey turns a wide survey export into one record per physician
// and vignette. It owns the raw table, column discovery, decision
// normalisation and the reshaping step.
package survey

import (
	"errors"
	"strings"
)

var (
	// ErrNoTable is returned when no input table was supplied.
	ErrNoTable = errors.New("survey table is absent")
	// ErrNoRows is returned when the input table has no data rows.
	ErrNoRows = errors.New("survey table has no rows")
	// ErrTableNotFound is returned when the export file does not exist.
	ErrTableNotFound = errors.New("survey data not found")
)

// Cell is one value of the raw table. Valid is false for missing values.
type Cell struct {
	Value string
	Valid bool
}

// Blank reports whether the cell is missing or whitespace only.
func (c Cell) Blank() bool {
	return !c.Valid || strings.TrimSpace(c.Value) == ""
}

// missingTokens mirrors the NA markers recognised by common CSV readers.
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissingToken reports whether s marks a missing value in an export.
func IsMissingToken(s string) bool {
	_, ok := missingTokens[s]
	return ok
}

// NewCell converts a raw export string into a Cell.
func NewCell(s string) Cell {
	if IsMissingToken(s) {
		return Cell{}
	}
	return Cell{Value: s, Valid: true}
}

// Table is the raw response table: one row per physician, one column per
// survey prompt. It is read-only after construction.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// NewTable builds a Table from raw strings. Short rows are padded with
// missing cells and long rows are truncated to the header width.
func NewTable(headers []string, rows [][]string) *Table {
	t := &Table{
		Headers: append([]string(nil), headers...),
		Rows:    make([][]Cell, 0, len(rows)),
	}
	for _, raw := range rows {
		row := make([]Cell, len(headers))
		for i := 0; i < len(headers) && i < len(raw); i++ {
			row[i] = NewCell(raw[i])
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Headers)
}

// Cell returns the value at (row, col); out-of-range positions are missing.
func (t *Table) Cell(row, col int) Cell {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Cell{}
	}
	return t.Rows[row][col]
}

// ColumnIndex returns the position of the first column named name, or -1.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// NonMissingCount counts the valid cells in column col.
func (t *Table) NonMissingCount(col int) int {
	n := 0
	for r := 0; r < t.NumRows(); r++ {
		if t.Cell(r, col).Valid {
			n++
		}
	}
	return n
}

// DistinctValues returns the valid values of column col in first-seen order.
// A limit above zero caps the number of values returned.
func (t *Table) DistinctValues(col, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for r := 0; r < t.NumRows(); r++ {
		c := t.Cell(r, col)
		if !c.Valid {
			continue
		}
		if _, ok := seen[c.Value]; ok {
			continue
		}
		seen[c.Value] = struct{}{}
		out = append(out, c.Value)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
