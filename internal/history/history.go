// Package history is the undo/redo engine. Applied mutations are recorded
// as groups of invertible deltas on an undo stack; undoing moves a group to
// the redo stack and replays inverses, redoing does the opposite. Every
// application is all-or-nothing: a failing delta rolls back the ones before
// it, leaving both the grid and the stacks untouched.
package history

import (
	"errors"
	"fmt"

	"github.com/zjrosen/tabula/internal/grid"
)

// DefaultLimit caps how many undo groups are retained when no limit is
// configured. Oldest groups are discarded first; groups are never expired
// by time.
const DefaultLimit = 1000

// ErrEmptyStack reports an undo or redo with nothing to do. Callers show
// it as a status line, never as a failure.
var ErrEmptyStack = errors.New("history: nothing to do")

// Group is one user-visible undo step: one or more deltas applied together.
type Group struct {
	Deltas []grid.Delta `yaml:"deltas"`
}

// History holds the two stacks. Most-recent entries sit at the end.
type History struct {
	undo  []Group
	redo  []Group
	limit int

	// coalesce is armed after a single-cell edit lands and disarmed by
	// Break (cursor movement) or any structural group. While armed, a new
	// edit to the same cell merges into the top group instead of pushing.
	coalesce bool
}

// New returns an engine retaining at most limit undo groups.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Restore rebuilds an engine from dumped stacks, e.g. out of a session
// snapshot. Coalescing starts disarmed so a restored session never merges
// into a pre-crash edit.
func Restore(limit int, undo, redo []Group) *History {
	h := New(limit)
	h.undo = undo
	h.redo = redo
	return h
}

// Apply runs the deltas against the grid as one group, pushes it onto the
// undo stack, and clears the redo stack. If any delta fails, the ones
// already applied are reverted and the stacks are left unmodified.
func (h *History) Apply(g *grid.Grid, deltas ...grid.Delta) error {
	if len(deltas) == 0 {
		return nil
	}
	if err := applyAll(g, deltas); err != nil {
		return err
	}
	h.push(Group{Deltas: deltas})
	h.redo = nil
	return nil
}

// applyAll applies deltas in order, unwinding on the first failure.
func applyAll(g *grid.Grid, deltas []grid.Delta) error {
	for i, d := range deltas {
		if err := d.Apply(g); err != nil {
			for j := i - 1; j >= 0; j-- {
				if uerr := deltas[j].Invert().Apply(g); uerr != nil {
					return fmt.Errorf("history: rollback failed after %v: %w", err, uerr)
				}
			}
			return err
		}
	}
	return nil
}

// push records a freshly applied group, coalescing consecutive edits to
// the same cell so undo granularity tracks logical edits, not keystrokes.
// The merged group keeps the original Old value and takes the newest New.
func (h *History) push(g Group) {
	if h.coalesce && isCellEdit(g) && len(h.undo) > 0 {
		top := &h.undo[len(h.undo)-1]
		if isCellEdit(*top) &&
			top.Deltas[0].Row == g.Deltas[0].Row &&
			top.Deltas[0].Col == g.Deltas[0].Col {
			top.Deltas[0].New = g.Deltas[0].New
			return
		}
	}
	h.undo = append(h.undo, g)
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	h.coalesce = isCellEdit(g)
}

func isCellEdit(g Group) bool {
	return len(g.Deltas) == 1 && g.Deltas[0].Kind == grid.KindCellEdit
}

// Break disarms coalescing. The app calls it when the cursor moves so the
// next edit opens a new undo step even if it targets the same cell.
func (h *History) Break() {
	h.coalesce = false
}

// Undo reverts the most recent group and moves it to the redo stack.
// Inverses are applied in reverse delta order.
func (h *History) Undo(g *grid.Grid) error {
	if len(h.undo) == 0 {
		return ErrEmptyStack
	}
	top := h.undo[len(h.undo)-1]
	inv := make([]grid.Delta, len(top.Deltas))
	for i, d := range top.Deltas {
		inv[len(inv)-1-i] = d.Invert()
	}
	if err := applyAll(g, inv); err != nil {
		return fmt.Errorf("history: undo: %w", err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	h.coalesce = false
	return nil
}

// Redo re-applies the most recently undone group in original order and
// moves it back to the undo stack.
func (h *History) Redo(g *grid.Grid) error {
	if len(h.redo) == 0 {
		return ErrEmptyStack
	}
	top := h.redo[len(h.redo)-1]
	if err := applyAll(g, top.Deltas); err != nil {
		return fmt.Errorf("history: redo: %w", err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, top)
	h.coalesce = false
	return nil
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Depth returns the undo and redo stack sizes, mostly for the status bar.
func (h *History) Depth() (undo, redo int) {
	return len(h.undo), len(h.redo)
}

// Dump returns copies of both stacks for snapshotting.
func (h *History) Dump() (undo, redo []Group) {
	undo = make([]Group, len(h.undo))
	copy(undo, h.undo)
	redo = make([]Group, len(h.redo))
	copy(redo, h.redo)
	return undo, redo
}

// Validate checks every recorded delta against the grid's id counters.
// Used when restoring snapshots.
func (h *History) Validate(g *grid.Grid) error {
	for _, stack := range [][]Group{h.undo, h.redo} {
		for _, grp := range stack {
			for _, d := range grp.Deltas {
				if err := d.Validate(g); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
