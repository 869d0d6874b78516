package chordpopup

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/command"
)

func TestHiddenByDefault(t *testing.T) {
	m := New()
	require.False(t, m.Visible())
	require.Equal(t, "", m.View())
}

func TestShowListsCompletions(t *testing.T) {
	row := &command.Command{Name: "row.delete", Label: "Delete row", Chords: [][]string{{"alt+-", "r"}}}
	col := &command.Command{Name: "col.delete", Label: "Delete column", Chords: [][]string{{"alt+-", "c"}}}

	m := New().Show([]string{"alt+-"}, []*command.Command{row, col})
	require.True(t, m.Visible())

	out := m.View()
	require.Contains(t, out, "alt+-")
	require.Contains(t, out, "Delete row")
	require.Contains(t, out, "Delete column")
	// Only the remaining keys are shown, not the whole chord again.
	require.Contains(t, out, "r  ")
	require.Contains(t, out, "c  ")
}

func TestHideClears(t *testing.T) {
	row := &command.Command{Name: "row.delete", Label: "Delete row", Chords: [][]string{{"alt+-", "r"}}}
	m := New().Show([]string{"alt+-"}, []*command.Command{row}).Hide()
	require.False(t, m.Visible())
}

func TestOverlayPassthroughWhenHidden(t *testing.T) {
	m := New().SetSize(20, 5)
	require.Equal(t, "background", m.Overlay("background"))
}
