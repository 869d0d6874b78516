package grid

import "fmt"

// Kind discriminates the delta variants.
type Kind int

const (
	// KindCellEdit replaces one cell value.
	KindCellEdit Kind = iota
	// KindRowInsert splices a row into display order.
	KindRowInsert
	// KindRowDelete removes a row from display order.
	KindRowDelete
	// KindColInsert splices a column into display order.
	KindColInsert
	// KindColDelete removes a column from display order.
	KindColDelete
)

func (k Kind) String() string {
	switch k {
	case KindCellEdit:
		return "cell-edit"
	case KindRowInsert:
		return "row-insert"
	case KindRowDelete:
		return "row-delete"
	case KindColInsert:
		return "col-insert"
	case KindColDelete:
		return "col-delete"
	default:
		return "unknown"
	}
}

// Delta is one invertible mutation. The same vocabulary expresses both
// directions: a row insert inverts to a row delete carrying the identical
// payload, so apply(d) followed by apply(d.Invert()) restores the grid
// exactly.
//
// Row/Col and Pos identify where the mutation lands; Cells carries the
// row or column payload for structural deltas (the values a delete removed,
// or an insert writes back).
type Delta struct {
	Kind  Kind    `yaml:"kind"`
	Row   RowID   `yaml:"row,omitempty"`
	Col   ColID   `yaml:"col,omitempty"`
	Pos   int     `yaml:"pos,omitempty"`
	Old   string  `yaml:"old,omitempty"`
	New   string  `yaml:"new,omitempty"`
	Cells []Entry `yaml:"cells,omitempty"`
}

// CellEdit builds a delta replacing the value at (r, c).
func CellEdit(r RowID, c ColID, old, new string) Delta {
	return Delta{Kind: KindCellEdit, Row: r, Col: c, Old: old, New: new}
}

// RowInsert builds a delta splicing row id at pos with the given cells.
func RowInsert(id RowID, pos int, cells map[ColID]string) Delta {
	d := Delta{Kind: KindRowInsert, Row: id, Pos: pos}
	for c, v := range cells {
		d.Cells = append(d.Cells, Entry{Row: id, Col: c, Value: v})
	}
	return d
}

// RowDelete builds a delta removing row id from pos; removed holds the
// cells the row carried so the inverse insert can restore them.
func RowDelete(id RowID, pos int, removed map[ColID]string) Delta {
	d := RowInsert(id, pos, removed)
	d.Kind = KindRowDelete
	return d
}

// ColInsert builds a delta splicing column id at pos with the given cells.
func ColInsert(id ColID, pos int, cells map[RowID]string) Delta {
	d := Delta{Kind: KindColInsert, Col: id, Pos: pos}
	for r, v := range cells {
		d.Cells = append(d.Cells, Entry{Row: r, Col: id, Value: v})
	}
	return d
}

// ColDelete builds a delta removing column id from pos.
func ColDelete(id ColID, pos int, removed map[RowID]string) Delta {
	d := ColInsert(id, pos, removed)
	d.Kind = KindColDelete
	return d
}

// Invert returns the delta that exactly reverses this one.
func (d Delta) Invert() Delta {
	inv := d
	switch d.Kind {
	case KindCellEdit:
		inv.Old, inv.New = d.New, d.Old
	case KindRowInsert:
		inv.Kind = KindRowDelete
	case KindRowDelete:
		inv.Kind = KindRowInsert
	case KindColInsert:
		inv.Kind = KindColDelete
	case KindColDelete:
		inv.Kind = KindColInsert
	}
	return inv
}

// Apply performs the mutation. Structural deltas referencing ids that are
// not (or already are) in display order fail without modifying the grid.
func (d Delta) Apply(g *Grid) error {
	switch d.Kind {
	case KindCellEdit:
		g.Set(d.Row, d.Col, d.New)
		return nil
	case KindRowInsert:
		cells := make(map[ColID]string, len(d.Cells))
		for _, e := range d.Cells {
			cells[e.Col] = e.Value
		}
		return g.InsertRow(d.Pos, d.Row, cells)
	case KindRowDelete:
		_, _, err := g.RemoveRow(d.Row)
		return err
	case KindColInsert:
		cells := make(map[RowID]string, len(d.Cells))
		for _, e := range d.Cells {
			cells[e.Row] = e.Value
		}
		return g.InsertCol(d.Pos, d.Col, cells)
	case KindColDelete:
		_, _, err := g.RemoveCol(d.Col)
		return err
	default:
		return fmt.Errorf("grid: unknown delta kind %d", d.Kind)
	}
}

// Validate checks that the delta's identifiers fall inside the grid's
// counter ranges. Used when restoring snapshots: a delta naming an id the
// session never allocated means the snapshot is corrupt.
func (d Delta) Validate(g *Grid) error {
	switch d.Kind {
	case KindCellEdit:
		if d.Row < 0 || d.Row >= g.nextRow || d.Col < 0 || d.Col >= g.nextCol {
			return fmt.Errorf("grid: %s delta references unknown ids (%d,%d)", d.Kind, d.Row, d.Col)
		}
	case KindRowInsert, KindRowDelete:
		if d.Row < 0 || d.Row >= g.nextRow {
			return fmt.Errorf("grid: %s delta references unknown row %d", d.Kind, d.Row)
		}
	case KindColInsert, KindColDelete:
		if d.Col < 0 || d.Col >= g.nextCol {
			return fmt.Errorf("grid: %s delta references unknown column %d", d.Kind, d.Col)
		}
	default:
		return fmt.Errorf("grid: unknown delta kind %d", d.Kind)
	}
	for _, e := range d.Cells {
		if e.Row < 0 || e.Row >= g.nextRow || e.Col < 0 || e.Col >= g.nextCol {
			return fmt.Errorf("grid: %s delta payload references unknown ids (%d,%d)", d.Kind, e.Row, e.Col)
		}
	}
	return nil
}
