package command

import (
	"fmt"

	"github.com/zjrosen/tabula/internal/grid"
)

// hasCell reports whether the cursor sits on a real cell.
func hasCell(ctx Context) bool {
	return ctx.Grid.Rows() > 0 && ctx.Grid.Cols() > 0
}

func hasRows(ctx Context) bool { return ctx.Grid.Rows() > 0 }
func hasCols(ctx Context) bool { return ctx.Grid.Cols() > 0 }

// cellAt resolves the cursor to ids, clamping to the sheet.
func cellAt(ctx Context) (grid.RowID, grid.ColID, error) {
	r, ok := ctx.Grid.RowAt(ctx.Cursor.Y)
	if !ok {
		return 0, 0, fmt.Errorf("command: cursor row %d out of range", ctx.Cursor.Y)
	}
	c, ok := ctx.Grid.ColAt(ctx.Cursor.X)
	if !ok {
		return 0, 0, fmt.Errorf("command: cursor column %d out of range", ctx.Cursor.X)
	}
	return r, c, nil
}

// actionOnly wraps an Action into a Run function for commands whose whole
// effect lives in the app layer.
func actionOnly(a Action) func(Context) (Result, error) {
	return func(Context) (Result, error) {
		return Result{Action: a}, nil
	}
}

// RegisterBuiltins installs the full built-in command set. Registration
// order is the palette's tie-break order, so related commands stay grouped.
func RegisterBuiltins(r *Registry) error {
	builtins := []*Command{
		{Name: "move.up", Label: "Move up", Chords: [][]string{{"k"}, {"up"}}, Run: actionOnly(ActionMoveUp)},
		{Name: "move.down", Label: "Move down", Chords: [][]string{{"j"}, {"down"}}, Run: actionOnly(ActionMoveDown)},
		{Name: "move.left", Label: "Move left", Chords: [][]string{{"h"}, {"left"}}, Run: actionOnly(ActionMoveLeft)},
		{Name: "move.right", Label: "Move right", Chords: [][]string{{"l"}, {"right"}}, Run: actionOnly(ActionMoveRight)},
		{Name: "jump.up", Label: "Jump up", Chords: [][]string{{"pgup"}}, Run: actionOnly(ActionJumpUp)},
		{Name: "jump.down", Label: "Jump down", Chords: [][]string{{"pgdown"}}, Run: actionOnly(ActionJumpDown)},
		{Name: "jump.left", Label: "Jump left", Chords: [][]string{{"ctrl+left"}}, Run: actionOnly(ActionJumpLeft)},
		{Name: "jump.right", Label: "Jump right", Chords: [][]string{{"ctrl+right"}}, Run: actionOnly(ActionJumpRight)},
		{Name: "goto.start", Label: "Go to first cell", Chords: [][]string{{"ctrl+home"}}, Run: actionOnly(ActionHome)},
		{Name: "goto.end", Label: "Go to last cell", Chords: [][]string{{"ctrl+end"}}, Run: actionOnly(ActionEnd)},
		{Name: "goto.row.start", Label: "Go to row start", Chords: [][]string{{"home"}}, Run: actionOnly(ActionHomeRow)},
		{Name: "goto.row.end", Label: "Go to row end", Chords: [][]string{{"end"}}, Run: actionOnly(ActionEndRow)},
		{Name: "goto.col.start", Label: "Go to column top", Chords: [][]string{{"ctrl+up"}}, Run: actionOnly(ActionHomeCol)},
		{Name: "goto.col.end", Label: "Go to column bottom", Chords: [][]string{{"ctrl+down"}}, Run: actionOnly(ActionEndCol)},

		{Name: "cell.edit", Label: "Edit cell", Chords: [][]string{{"f2"}, {"i"}}, When: hasCell, Run: actionOnly(ActionEdit)},
		{Name: "cell.replace", Label: "Replace cell", Chords: [][]string{{"enter"}}, When: hasCell, Run: actionOnly(ActionReplace)},
		{Name: "cell.clear", Label: "Clear cell", Chords: [][]string{{"backspace"}, {"delete"}}, When: hasCell, Run: runClearCell},

		{Name: "row.insert", Label: "Insert row", Chords: [][]string{{"alt++", "r"}}, When: hasCols, Run: runInsertRow},
		{Name: "row.delete", Label: "Delete row", Chords: [][]string{{"alt+-", "r"}}, When: hasRows, Run: runDeleteRow},
		{Name: "col.insert", Label: "Insert column", Chords: [][]string{{"alt++", "c"}}, Run: runInsertCol},
		{Name: "col.delete", Label: "Delete column", Chords: [][]string{{"alt+-", "c"}}, When: hasCols, Run: runDeleteCol},

		{Name: "history.undo", Label: "Undo", Chords: [][]string{{"ctrl+z"}, {"u"}}, Run: actionOnly(ActionUndo)},
		{Name: "history.redo", Label: "Redo", Chords: [][]string{{"ctrl+y"}}, Run: actionOnly(ActionRedo)},

		{Name: "file.write", Label: "Write file", Chords: [][]string{{"ctrl+s"}}, Run: actionOnly(ActionWrite)},
		{Name: "file.read", Label: "Reload file", Chords: [][]string{{"ctrl+r"}}, Run: actionOnly(ActionRead)},

		{Name: "app.palette", Label: "Command palette", Chords: [][]string{{"f1"}}, Run: actionOnly(ActionTogglePalette)},
		{Name: "app.debug", Label: "Toggle debug overlay", Chords: [][]string{{"f12"}}, Run: actionOnly(ActionToggleDebug)},
		{Name: "app.dump", Label: "Dump state to disk", Chords: [][]string{{"f10"}}, Run: actionOnly(ActionDumpState)},
		{Name: "app.quit", Label: "Quit", Chords: [][]string{{"q"}, {"ctrl+c"}}, Run: actionOnly(ActionQuit)},
	}
	for _, c := range builtins {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func runClearCell(ctx Context) (Result, error) {
	row, col, err := cellAt(ctx)
	if err != nil {
		return Result{}, err
	}
	old := ctx.Grid.Get(row, col)
	if old == "" {
		// Already empty; nothing to record.
		return Result{}, nil
	}
	return Result{Deltas: []grid.Delta{grid.CellEdit(row, col, old, "")}}, nil
}

func runInsertRow(ctx Context) (Result, error) {
	pos := ctx.Cursor.Y
	if pos > ctx.Grid.Rows() {
		pos = ctx.Grid.Rows()
	}
	id := ctx.Grid.AllocRowID()
	return Result{Deltas: []grid.Delta{grid.RowInsert(id, pos, nil)}}, nil
}

func runDeleteRow(ctx Context) (Result, error) {
	id, ok := ctx.Grid.RowAt(ctx.Cursor.Y)
	if !ok {
		return Result{}, fmt.Errorf("command: cursor row %d out of range", ctx.Cursor.Y)
	}
	pos, _ := ctx.Grid.RowIndex(id)
	return Result{Deltas: []grid.Delta{grid.RowDelete(id, pos, ctx.Grid.RowCells(id))}}, nil
}

func runInsertCol(ctx Context) (Result, error) {
	pos := ctx.Cursor.X
	if pos > ctx.Grid.Cols() {
		pos = ctx.Grid.Cols()
	}
	id := ctx.Grid.AllocColID()
	return Result{Deltas: []grid.Delta{grid.ColInsert(id, pos, nil)}}, nil
}

func runDeleteCol(ctx Context) (Result, error) {
	id, ok := ctx.Grid.ColAt(ctx.Cursor.X)
	if !ok {
		return Result{}, fmt.Errorf("command: cursor column %d out of range", ctx.Cursor.X)
	}
	pos, _ := ctx.Grid.ColIndex(id)
	return Result{Deltas: []grid.Delta{grid.ColDelete(id, pos, ctx.Grid.ColCells(id))}}, nil
}
