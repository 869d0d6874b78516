package logoverlay

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/log"
)

// TestMain initializes the logger for all tests in this package.
func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "logoverlay-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	cleanup, err := log.Init(filepath.Join(tmpDir, "test.log"))
	if err != nil {
		panic(err)
	}
	defer cleanup()

	os.Exit(m.Run())
}

func TestNew(t *testing.T) {
	m := New()

	require.False(t, m.Visible())
	require.Empty(t, m.View())
	require.Equal(t, log.LevelDebug, m.minLevel)
}

func TestToggle(t *testing.T) {
	m := New()
	require.False(t, m.Visible())

	m.Toggle()
	require.True(t, m.Visible())

	m.Toggle()
	require.False(t, m.Visible())
}

func TestViewShowsBufferedEntries(t *testing.T) {
	log.ClearBuffer()
	log.Info(log.CatSession, "snapshot written", "path", "x.yaml")

	m := New()
	m.SetSize(80, 24)
	m.Toggle()

	out := m.View()
	require.Contains(t, out, "Logs")
	require.Contains(t, out, "snapshot written")
}

func TestLevelFilterHidesLowerEntries(t *testing.T) {
	log.ClearBuffer()
	log.Debug(log.CatUI, "noisy detail")
	log.Error(log.CatUI, "broken thing")

	m := New()
	m.SetSize(80, 24)
	m.Toggle()

	// Filter to errors only.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	out := m.View()
	require.Contains(t, out, "broken thing")
	require.NotContains(t, out, "noisy detail")

	// Back to debug shows both.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	out = m.View()
	require.Contains(t, out, "noisy detail")
}

func TestClearKeyEmptiesBuffer(t *testing.T) {
	log.ClearBuffer()
	log.Info(log.CatUI, "to be cleared")

	m := New()
	m.SetSize(80, 24)
	m.Toggle()

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	require.Contains(t, m.View(), "No logs to display")
}

func TestEscCloses(t *testing.T) {
	m := New()
	m.SetSize(80, 24)
	m.Toggle()

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Visible())
	require.NotNil(t, cmd)
	require.IsType(t, CloseMsg{}, cmd())
}

func TestUpdateIgnoredWhenHidden(t *testing.T) {
	m := New()
	m2, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	require.Nil(t, cmd)
	require.Equal(t, m.minLevel, m2.minLevel)
}
