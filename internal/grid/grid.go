// Package grid holds the in-memory document model: a sheet of text cells
// addressed by stable row and column identifiers. Display order lives in
// rowOrder/colOrder; identifiers are surrogate and never reused, so undo
// deltas keep pointing at the same logical row or column no matter how the
// sheet has been rearranged since.
package grid

import (
	"errors"
	"fmt"
	"slices"
)

// RowID identifies a row for the lifetime of a session.
type RowID int

// ColID identifies a column for the lifetime of a session.
type ColID int

// CellRef addresses a single cell by identity.
type CellRef struct {
	Row RowID
	Col ColID
}

// ErrNotFound is returned when a structural operation references an
// identifier that is not currently part of the sheet.
var ErrNotFound = errors.New("grid: id not found")

// Grid is the document: cell contents plus row/column display order.
// An absent cell reads as the empty string.
type Grid struct {
	rowOrder []RowID
	colOrder []ColID
	cells    map[CellRef]string
	nextRow  RowID
	nextCol  ColID
}

// New returns an empty grid.
func New() *Grid {
	return &Grid{cells: make(map[CellRef]string)}
}

// AllocRowID hands out a fresh row identifier. IDs are monotonically
// increasing and never reused, even after the row is deleted.
func (g *Grid) AllocRowID() RowID {
	id := g.nextRow
	g.nextRow++
	return id
}

// AllocColID hands out a fresh column identifier.
func (g *Grid) AllocColID() ColID {
	id := g.nextCol
	g.nextCol++
	return id
}

// Get returns the cell value, or "" if the cell was never written.
func (g *Grid) Get(r RowID, c ColID) string {
	return g.cells[CellRef{r, c}]
}

// Set stores a value and returns the previous one for delta construction.
// Setting "" removes the entry so absence and empty stay interchangeable.
func (g *Grid) Set(r RowID, c ColID, v string) (old string) {
	ref := CellRef{r, c}
	old = g.cells[ref]
	if v == "" {
		delete(g.cells, ref)
	} else {
		g.cells[ref] = v
	}
	return old
}

// InsertRow splices a row into display order at pos (0..Rows()) and writes
// its initial cells. The id must come from AllocRowID or a delta being
// replayed; inserting an id already in display order is a consistency fault.
func (g *Grid) InsertRow(pos int, id RowID, cells map[ColID]string) error {
	if pos < 0 || pos > len(g.rowOrder) {
		return fmt.Errorf("grid: row position %d out of range 0..%d", pos, len(g.rowOrder))
	}
	if slices.Contains(g.rowOrder, id) {
		return fmt.Errorf("grid: row %d already present", id)
	}
	if id >= g.nextRow {
		g.nextRow = id + 1
	}
	g.rowOrder = slices.Insert(g.rowOrder, pos, id)
	for c, v := range cells {
		g.Set(id, c, v)
	}
	return nil
}

// RemoveRow deletes a row, returning its display position and the cells it
// held so the caller can build an invertible delta.
func (g *Grid) RemoveRow(id RowID) (pos int, removed map[ColID]string, err error) {
	pos = slices.Index(g.rowOrder, id)
	if pos < 0 {
		return 0, nil, fmt.Errorf("grid: row %d: %w", id, ErrNotFound)
	}
	removed = make(map[ColID]string)
	for ref, v := range g.cells {
		if ref.Row == id {
			removed[ref.Col] = v
			delete(g.cells, ref)
		}
	}
	g.rowOrder = slices.Delete(g.rowOrder, pos, pos+1)
	return pos, removed, nil
}

// InsertCol splices a column into display order at pos (0..Cols()).
func (g *Grid) InsertCol(pos int, id ColID, cells map[RowID]string) error {
	if pos < 0 || pos > len(g.colOrder) {
		return fmt.Errorf("grid: column position %d out of range 0..%d", pos, len(g.colOrder))
	}
	if slices.Contains(g.colOrder, id) {
		return fmt.Errorf("grid: column %d already present", id)
	}
	if id >= g.nextCol {
		g.nextCol = id + 1
	}
	g.colOrder = slices.Insert(g.colOrder, pos, id)
	for r, v := range cells {
		g.Set(r, id, v)
	}
	return nil
}

// RemoveCol deletes a column, returning its position and held cells.
func (g *Grid) RemoveCol(id ColID) (pos int, removed map[RowID]string, err error) {
	pos = slices.Index(g.colOrder, id)
	if pos < 0 {
		return 0, nil, fmt.Errorf("grid: column %d: %w", id, ErrNotFound)
	}
	removed = make(map[RowID]string)
	for ref, v := range g.cells {
		if ref.Col == id {
			removed[ref.Row] = v
			delete(g.cells, ref)
		}
	}
	g.colOrder = slices.Delete(g.colOrder, pos, pos+1)
	return pos, removed, nil
}

// Rows returns the number of rows in display order.
func (g *Grid) Rows() int { return len(g.rowOrder) }

// Cols returns the number of columns in display order.
func (g *Grid) Cols() int { return len(g.colOrder) }

// RowAt returns the id of the row displayed at index i.
func (g *Grid) RowAt(i int) (RowID, bool) {
	if i < 0 || i >= len(g.rowOrder) {
		return 0, false
	}
	return g.rowOrder[i], true
}

// ColAt returns the id of the column displayed at index i.
func (g *Grid) ColAt(i int) (ColID, bool) {
	if i < 0 || i >= len(g.colOrder) {
		return 0, false
	}
	return g.colOrder[i], true
}

// RowIndex returns the display position of a row id.
func (g *Grid) RowIndex(id RowID) (int, bool) {
	i := slices.Index(g.rowOrder, id)
	return i, i >= 0
}

// ColIndex returns the display position of a column id.
func (g *Grid) ColIndex(id ColID) (int, bool) {
	i := slices.Index(g.colOrder, id)
	return i, i >= 0
}

// RowCells returns a copy of the stored cells for one row.
func (g *Grid) RowCells(id RowID) map[ColID]string {
	out := make(map[ColID]string)
	for ref, v := range g.cells {
		if ref.Row == id {
			out[ref.Col] = v
		}
	}
	return out
}

// ColCells returns a copy of the stored cells for one column.
func (g *Grid) ColCells(id ColID) map[RowID]string {
	out := make(map[RowID]string)
	for ref, v := range g.cells {
		if ref.Col == id {
			out[ref.Row] = v
		}
	}
	return out
}

// Equal reports full structural equality: display order, every stored
// cell, and the id counters. Used by tests to check undo/redo symmetry.
func (g *Grid) Equal(o *Grid) bool {
	if g.nextRow != o.nextRow || g.nextCol != o.nextCol {
		return false
	}
	return g.EqualContent(o)
}

// EqualContent is Equal without the id counters. Undo never rolls the
// counters back (ids are never reused), so comparisons against a state
// from before an insert must ignore them.
func (g *Grid) EqualContent(o *Grid) bool {
	if !slices.Equal(g.rowOrder, o.rowOrder) || !slices.Equal(g.colOrder, o.colOrder) {
		return false
	}
	if len(g.cells) != len(o.cells) {
		return false
	}
	for ref, v := range g.cells {
		if o.cells[ref] != v {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		rowOrder: slices.Clone(g.rowOrder),
		colOrder: slices.Clone(g.colOrder),
		cells:    make(map[CellRef]string, len(g.cells)),
		nextRow:  g.nextRow,
		nextCol:  g.nextCol,
	}
	for ref, v := range g.cells {
		c.cells[ref] = v
	}
	return c
}

// Entry is one stored cell in a serialized grid.
type Entry struct {
	Row   RowID  `yaml:"row"`
	Col   ColID  `yaml:"col"`
	Value string `yaml:"value"`
}

// Dump is the serializable form of a grid. Entries are emitted in display
// order so dumps are deterministic.
type Dump struct {
	RowOrder []RowID `yaml:"row_order"`
	ColOrder []ColID `yaml:"col_order"`
	Cells    []Entry `yaml:"cells"`
	NextRow  RowID   `yaml:"next_row"`
	NextCol  ColID   `yaml:"next_col"`
}

// ToDump serializes the grid.
func (g *Grid) ToDump() Dump {
	d := Dump{
		RowOrder: slices.Clone(g.rowOrder),
		ColOrder: slices.Clone(g.colOrder),
		NextRow:  g.nextRow,
		NextCol:  g.nextCol,
	}
	for _, r := range g.rowOrder {
		for _, c := range g.colOrder {
			if v, ok := g.cells[CellRef{r, c}]; ok {
				d.Cells = append(d.Cells, Entry{Row: r, Col: c, Value: v})
			}
		}
	}
	return d
}

// FromDump reconstructs a grid, validating structural invariants: unique
// ids in display order, ids below their counters, and cells referencing
// only known id ranges.
func FromDump(d Dump) (*Grid, error) {
	g := New()
	seenRows := make(map[RowID]bool, len(d.RowOrder))
	for _, id := range d.RowOrder {
		if id < 0 || id >= d.NextRow {
			return nil, fmt.Errorf("grid: row id %d outside counter range %d", id, d.NextRow)
		}
		if seenRows[id] {
			return nil, fmt.Errorf("grid: duplicate row id %d", id)
		}
		seenRows[id] = true
	}
	seenCols := make(map[ColID]bool, len(d.ColOrder))
	for _, id := range d.ColOrder {
		if id < 0 || id >= d.NextCol {
			return nil, fmt.Errorf("grid: column id %d outside counter range %d", id, d.NextCol)
		}
		if seenCols[id] {
			return nil, fmt.Errorf("grid: duplicate column id %d", id)
		}
		seenCols[id] = true
	}
	for _, e := range d.Cells {
		if e.Row < 0 || e.Row >= d.NextRow || e.Col < 0 || e.Col >= d.NextCol {
			return nil, fmt.Errorf("grid: cell (%d,%d) references unknown ids", e.Row, e.Col)
		}
	}
	g.rowOrder = slices.Clone(d.RowOrder)
	g.colOrder = slices.Clone(d.ColOrder)
	g.nextRow = d.NextRow
	g.nextCol = d.NextCol
	for _, e := range d.Cells {
		if e.Value != "" {
			g.cells[CellRef{e.Row, e.Col}] = e.Value
		}
	}
	return g, nil
}
