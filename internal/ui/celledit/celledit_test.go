package celledit

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestEditModeSeedsValue(t *testing.T) {
	m := New("B2", "30")
	require.Equal(t, "30", m.Value())
}

func TestReplaceModeStartsBlank(t *testing.T) {
	m := New("B2", "")
	require.Equal(t, "", m.Value())
}

func TestTypingAppends(t *testing.T) {
	m := New("A1", "3")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	require.Equal(t, "31", m.Value())
}

func TestEnterCommits(t *testing.T) {
	m := New("A1", "31")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, CommitMsg{Value: "31"}, cmd())
}

func TestEscCancels(t *testing.T) {
	m := New("A1", "31")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	require.Equal(t, CancelMsg{}, cmd())
}

func TestViewShowsLabelAndValue(t *testing.T) {
	m := New("B2", "hello").SetSize(80, 24)
	out := m.View()
	require.Contains(t, out, "B2")
	require.Contains(t, out, "hello")
}
