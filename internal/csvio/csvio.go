// Package csvio moves grids in and out of CSV files. Files are treated as
// headerless rectangles of text; ragged input rows are accepted and padded
// with empty cells on read, and writes always emit the full rectangle in
// display order.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/zjrosen/tabula/internal/grid"
)

// Read parses a CSV file into a fresh grid. A missing file yields an empty
// grid so `tabula new.csv` starts a new sheet.
func Read(path string) (*grid.Grid, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is the user's document
	if os.IsNotExist(err) {
		return grid.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvio: read %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvio: parse %s: %w", path, err)
	}
	return FromRecords(records)
}

// Write emits the grid to path. The write goes through a tmp file and
// rename so an interrupted save never truncates the document.
func Write(path string, g *grid.Grid) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // G304: path is the user's document
	if err != nil {
		return fmt.Errorf("csvio: write %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.WriteAll(ToRecords(g)); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("csvio: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("csvio: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("csvio: write %s: %w", path, err)
	}
	return nil
}

// FromRecords builds a grid from raw rows, allocating fresh ids. The
// column count is the widest record seen.
func FromRecords(records [][]string) (*grid.Grid, error) {
	g := grid.New()
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	cols := make([]grid.ColID, width)
	for i := range cols {
		cols[i] = g.AllocColID()
		if err := g.InsertCol(i, cols[i], nil); err != nil {
			return nil, err
		}
	}
	for i, rec := range records {
		cells := make(map[grid.ColID]string, len(rec))
		for j, v := range rec {
			if v != "" {
				cells[cols[j]] = v
			}
		}
		if err := g.InsertRow(i, g.AllocRowID(), cells); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ToRecords flattens the grid into rows of values in display order.
func ToRecords(g *grid.Grid) [][]string {
	records := make([][]string, 0, g.Rows())
	for i := 0; i < g.Rows(); i++ {
		row, _ := g.RowAt(i)
		rec := make([]string, g.Cols())
		for j := 0; j < g.Cols(); j++ {
			col, _ := g.ColAt(j)
			rec[j] = g.Get(row, col)
		}
		records = append(records, rec)
	}
	return records
}

// ReplaceDeltas builds the delta group that swaps the whole sheet for the
// contents of next: every current row and column is deleted, then next's
// rows and columns are inserted under fresh ids from g's counters. Reload
// goes through the undo engine like any other mutation, so a reload can be
// undone.
func ReplaceDeltas(g *grid.Grid, next [][]string) []grid.Delta {
	var deltas []grid.Delta
	// Rows first so column deletes carry no cell payload.
	for i := g.Rows() - 1; i >= 0; i-- {
		id, _ := g.RowAt(i)
		deltas = append(deltas, grid.RowDelete(id, i, g.RowCells(id)))
	}
	for i := g.Cols() - 1; i >= 0; i-- {
		id, _ := g.ColAt(i)
		deltas = append(deltas, grid.ColDelete(id, i, nil))
	}

	width := 0
	for _, rec := range next {
		if len(rec) > width {
			width = len(rec)
		}
	}
	cols := make([]grid.ColID, width)
	for i := range cols {
		cols[i] = g.AllocColID()
		deltas = append(deltas, grid.ColInsert(cols[i], i, nil))
	}
	for i, rec := range next {
		cells := make(map[grid.ColID]string, len(rec))
		for j, v := range rec {
			if v != "" {
				cells[cols[j]] = v
			}
		}
		deltas = append(deltas, grid.RowInsert(g.AllocRowID(), i, cells))
	}
	return deltas
}
