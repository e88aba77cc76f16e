// Package frame provides an immutable column-addressable view over one
// layer snapshot. The validation rule engine and the generic artifact read
// path operate on frames; the transformation stages use typed records.
package frame

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Cell is one value in a frame. Invalid cells model nulls; everything else
// is carried as the text it had in the artifact, coerced on demand.
type Cell struct {
	Valid bool
	Text  string
}

// Null returns an invalid cell.
func Null() Cell { return Cell{} }

// String returns a valid cell holding s. An empty string is treated as
// null, matching CSV round-trip semantics.
func String(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Valid: true, Text: s}
}

// Float parses the cell as a float64.
func (c Cell) Float() (float64, bool) {
	if !c.Valid {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Frame is an ordered set of named columns over row-major cells.
type Frame struct {
	cols []string
	idx  map[string]int
	rows [][]Cell
}

// New builds a frame from column names and row-major cells. Every row must
// have exactly one cell per column.
func New(cols []string, rows [][]Cell) (*Frame, error) {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		if _, ok := idx[c]; ok {
			return nil, eris.Errorf("frame: duplicate column %q", c)
		}
		idx[c] = i
	}
	for i, r := range rows {
		if len(r) != len(cols) {
			return nil, eris.Errorf("frame: row %d has %d cells, want %d", i, len(r), len(cols))
		}
	}
	return &Frame{cols: cols, idx: idx, rows: rows}, nil
}

// FromStrings builds a frame from string rows, mapping empty strings to
// nulls. Used by the CSV read path.
func FromStrings(cols []string, rows [][]string) (*Frame, error) {
	cells := make([][]Cell, len(rows))
	for i, r := range rows {
		row := make([]Cell, len(r))
		for j, s := range r {
			row[j] = String(s)
		}
		cells[i] = row
	}
	return New(cols, cells)
}

// Columns returns the ordered column names.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

// RowCount returns the number of rows.
func (f *Frame) RowCount() int { return len(f.rows) }

// HasColumn reports whether the frame has the named column.
func (f *Frame) HasColumn(name string) bool {
	_, ok := f.idx[name]
	return ok
}

// Column returns all cells of the named column in row order.
func (f *Frame) Column(name string) ([]Cell, error) {
	i, ok := f.idx[name]
	if !ok {
		return nil, eris.Errorf("frame: unknown column %q", name)
	}
	out := make([]Cell, len(f.rows))
	for r, row := range f.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Row returns the cells of one row in column order.
func (f *Frame) Row(i int) []Cell {
	out := make([]Cell, len(f.cols))
	copy(out, f.rows[i])
	return out
}

// Strings returns the frame as string rows, with nulls as empty strings.
// Used by the CSV write path.
func (f *Frame) Strings() [][]string {
	out := make([][]string, len(f.rows))
	for i, row := range f.rows {
		r := make([]string, len(row))
		for j, c := range row {
			if c.Valid {
				r[j] = c.Text
			}
		}
		out[i] = r
	}
	return out
}
