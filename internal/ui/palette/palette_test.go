package palette

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/grid"
)

func newRegistry(t *testing.T) (*command.Registry, command.Context) {
	t.Helper()
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Command{Name: "row.delete", Label: "Delete row", Chords: [][]string{{"alt+-", "r"}}}))
	require.NoError(t, r.Register(&command.Command{Name: "col.delete", Label: "Delete column", Chords: [][]string{{"alt+-", "c"}}}))
	require.NoError(t, r.Register(&command.Command{Name: "app.quit", Label: "Quit"}))
	return r, command.Context{Grid: grid.New()}
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestOpensWithAllCommands(t *testing.T) {
	r, ctx := newRegistry(t)
	m := New(r, ctx)
	require.Len(t, m.Filtered(), 3)

	sel, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, "row.delete", sel.Name)
}

func TestTypingFilters(t *testing.T) {
	r, ctx := newRegistry(t)
	m := typeString(New(r, ctx), "delete")
	require.Len(t, m.Filtered(), 2)

	m = typeString(m, " column")
	require.Len(t, m.Filtered(), 1)
	require.Equal(t, "col.delete", m.Filtered()[0].Name)
}

func TestNavigationAndSelect(t *testing.T) {
	r, ctx := newRegistry(t)
	m := New(r, ctx)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	sel, _ := m.Selected()
	require.Equal(t, "col.delete", sel.Name)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(SelectMsg)
	require.True(t, ok)
	require.Equal(t, "col.delete", msg.Cmd.Name)
}

func TestEscCancels(t *testing.T) {
	r, ctx := newRegistry(t)
	m := New(r, ctx)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.IsType(t, CancelMsg{}, cmd())
}

func TestCtrlUClearsQuery(t *testing.T) {
	r, ctx := newRegistry(t)
	m := typeString(New(r, ctx), "quit")
	require.Len(t, m.Filtered(), 1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	require.Equal(t, "", m.Query())
	require.Len(t, m.Filtered(), 3)
}

func TestEnterOnEmptyResultIsNoop(t *testing.T) {
	r, ctx := newRegistry(t)
	m := typeString(New(r, ctx), "zzzzz")
	require.Empty(t, m.Filtered())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
}

func TestViewShowsChords(t *testing.T) {
	r, ctx := newRegistry(t)
	m := New(r, ctx).SetSize(80, 24)
	out := m.View()
	require.Contains(t, out, "Delete row")
	require.Contains(t, out, "alt+- r")
}
