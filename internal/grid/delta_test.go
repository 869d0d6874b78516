package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCellEditInvert(t *testing.T) {
	d := CellEdit(1, 2, "old", "new")
	inv := d.Invert()
	require.Equal(t, KindCellEdit, inv.Kind)
	require.Equal(t, "new", inv.Old)
	require.Equal(t, "old", inv.New)
}

func TestStructuralInvertsArePaired(t *testing.T) {
	tests := []struct {
		name string
		d    Delta
		want Kind
	}{
		{"row insert", RowInsert(3, 0, nil), KindRowDelete},
		{"row delete", RowDelete(3, 0, nil), KindRowInsert},
		{"col insert", ColInsert(2, 1, nil), KindColDelete},
		{"col delete", ColDelete(2, 1, nil), KindColInsert},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.d.Invert().Kind)
			// Double inversion is the identity.
			require.Equal(t, tc.d, tc.d.Invert().Invert())
		})
	}
}

func TestApplyThenInvertRestores(t *testing.T) {
	g, rows, cols := twoByTwo(t)

	deltas := []Delta{
		CellEdit(rows[0], cols[1], "30", "31"),
		RowInsert(g.AllocRowID(), 0, map[ColID]string{cols[0]: "Carol"}),
		RowDelete(rows[1], 1, g.RowCells(rows[1])),
		ColInsert(g.AllocColID(), 2, map[RowID]string{rows[0]: "yes"}),
		ColDelete(cols[0], 0, g.ColCells(cols[0])),
	}
	for _, d := range deltas {
		before := g.Clone()
		require.NoError(t, d.Apply(g))
		require.NoError(t, d.Invert().Apply(g))
		require.True(t, g.Equal(before), "delta %s did not round-trip", d.Kind)
	}
}

func TestApplyRowDeleteUnknownID(t *testing.T) {
	g, _, _ := twoByTwo(t)
	d := RowDelete(99, 0, nil)
	require.Error(t, d.Apply(g))
}

func TestValidateRejectsUnknownIDs(t *testing.T) {
	g, rows, cols := twoByTwo(t)

	require.NoError(t, CellEdit(rows[0], cols[0], "", "x").Validate(g))
	require.Error(t, CellEdit(900, cols[0], "", "x").Validate(g))
	require.Error(t, RowDelete(900, 0, nil).Validate(g))
	require.Error(t, ColInsert(900, 0, nil).Validate(g))

	bad := RowInsert(rows[0], 0, nil)
	bad.Cells = []Entry{{Row: rows[0], Col: 900, Value: "x"}}
	require.Error(t, bad.Validate(g))
}

// Random single deltas always round-trip through their inverse.
func TestDeltaInverseProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New()
		nCols := rapid.IntRange(1, 4).Draw(t, "cols")
		nRows := rapid.IntRange(1, 4).Draw(t, "rows")
		for i := 0; i < nCols; i++ {
			if err := g.InsertCol(i, g.AllocColID(), nil); err != nil {
				t.Fatal(err)
			}
		}
		for i := 0; i < nRows; i++ {
			cells := make(map[ColID]string)
			for j := 0; j < nCols; j++ {
				id, _ := g.ColAt(j)
				cells[id] = rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "cell")
			}
			if err := g.InsertRow(i, g.AllocRowID(), cells); err != nil {
				t.Fatal(err)
			}
		}

		row, _ := g.RowAt(rapid.IntRange(0, nRows-1).Draw(t, "rowIdx"))
		col, _ := g.ColAt(rapid.IntRange(0, nCols-1).Draw(t, "colIdx"))

		var d Delta
		switch rapid.IntRange(0, 4).Draw(t, "kind") {
		case 0:
			d = CellEdit(row, col, g.Get(row, col), rapid.StringMatching(`[a-z]{0,6}`).Draw(t, "new"))
		case 1:
			d = RowInsert(g.AllocRowID(), rapid.IntRange(0, nRows).Draw(t, "pos"), map[ColID]string{col: "v"})
		case 2:
			pos, _ := g.RowIndex(row)
			d = RowDelete(row, pos, g.RowCells(row))
		case 3:
			d = ColInsert(g.AllocColID(), rapid.IntRange(0, nCols).Draw(t, "pos"), map[RowID]string{row: "v"})
		case 4:
			pos, _ := g.ColIndex(col)
			d = ColDelete(col, pos, g.ColCells(col))
		}

		before := g.Clone()
		if err := d.Apply(g); err != nil {
			t.Fatal(err)
		}
		if err := d.Invert().Apply(g); err != nil {
			t.Fatal(err)
		}
		if !g.Equal(before) {
			t.Fatalf("delta %s did not restore prior state", d.Kind)
		}
	})
}
