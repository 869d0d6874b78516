// Package session ties the live editor state to a crash-safe snapshot on
// disk. The manager keeps the last committed serialization in memory and
// flushes it with an atomic rename; a snapshot present at startup means the
// previous run did not exit cleanly.
package session

import (
	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/grid"
	"github.com/zjrosen/tabula/internal/history"
)

// State is everything a session needs to resume: the document, the undo
// stacks, the cursor, any open chord prefix, and the dirty flag.
type State struct {
	Path    string
	Grid    *grid.Grid
	History *history.History
	Cursor  command.Position
	Chord   []string
	Dirty   bool
}

// NewState returns a session over an already-loaded grid.
func NewState(path string, g *grid.Grid, historyLimit int) *State {
	return &State{
		Path:    path,
		Grid:    g,
		History: history.New(historyLimit),
	}
}

// ClampCursor keeps the cursor on the sheet after structural changes.
func (s *State) ClampCursor() {
	if s.Cursor.Y >= s.Grid.Rows() {
		s.Cursor.Y = s.Grid.Rows() - 1
	}
	if s.Cursor.Y < 0 {
		s.Cursor.Y = 0
	}
	if s.Cursor.X >= s.Grid.Cols() {
		s.Cursor.X = s.Grid.Cols() - 1
	}
	if s.Cursor.X < 0 {
		s.Cursor.X = 0
	}
}
