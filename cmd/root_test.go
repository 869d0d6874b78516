package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/grid"
	"github.com/zjrosen/tabula/internal/session"
)

func TestBuildRegistry_Defaults(t *testing.T) {
	reg, err := buildRegistry(nil)
	require.NoError(t, err)

	_, ok := reg.Lookup("row.delete")
	require.True(t, ok)
}

func TestBuildRegistry_Rebind(t *testing.T) {
	reg, err := buildRegistry(map[string][][]string{
		"row.delete": {{"d", "r"}},
	})
	require.NoError(t, err)

	c, ok := reg.Lookup("row.delete")
	require.True(t, ok)
	require.Equal(t, [][]string{{"d", "r"}}, c.Chords)
}

func TestBuildRegistry_ConflictNamesTheCommand(t *testing.T) {
	// "k" is taken by move.up.
	_, err := buildRegistry(map[string][][]string{
		"row.delete": {{"k"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "keys.row.delete")
}

func TestBuildRegistry_UnknownCommand(t *testing.T) {
	_, err := buildRegistry(map[string][][]string{
		"no.such.command": {{"x"}},
	})
	require.Error(t, err)
}

// writeSnapshot puts a valid one-cell session snapshot on disk.
func writeSnapshot(t *testing.T, mgr *session.Manager, docPath string) {
	t.Helper()

	g := grid.New()
	c := g.AllocColID()
	require.NoError(t, g.InsertCol(0, c, nil))
	r := g.AllocRowID()
	require.NoError(t, g.InsertRow(0, r, nil))
	g.Set(r, c, "hello")

	st := session.NewState(docPath, g, 100)
	st.Dirty = true
	require.NoError(t, mgr.Commit(st))
	require.NoError(t, mgr.Write())
}

func TestRecoverSession_NoSnapshot(t *testing.T) {
	mgr := session.NewManager(filepath.Join(t.TempDir(), "s.yaml"), 100)

	var out bytes.Buffer
	st := recoverSession(mgr, "doc.csv", strings.NewReader(""), &out)
	require.Nil(t, st)
	require.Empty(t, out.String())
}

func TestRecoverSession_Accepted(t *testing.T) {
	mgr := session.NewManager(filepath.Join(t.TempDir(), "s.yaml"), 100)
	writeSnapshot(t, mgr, "old/doc.csv")

	var out bytes.Buffer
	st := recoverSession(mgr, "doc.csv", strings.NewReader("y\n"), &out)
	require.NotNil(t, st)
	require.Equal(t, "doc.csv", st.Path)
	require.True(t, st.Dirty)
	require.Contains(t, out.String(), "Recover it?")
}

func TestRecoverSession_Declined(t *testing.T) {
	mgr := session.NewManager(filepath.Join(t.TempDir(), "s.yaml"), 100)
	writeSnapshot(t, mgr, "doc.csv")

	var out bytes.Buffer
	st := recoverSession(mgr, "doc.csv", strings.NewReader("n\n"), &out)
	require.Nil(t, st)
	require.False(t, mgr.HasSnapshot(), "declined snapshot should be discarded")
}

func TestRecoverSession_EmptyAnswerDeclines(t *testing.T) {
	mgr := session.NewManager(filepath.Join(t.TempDir(), "s.yaml"), 100)
	writeSnapshot(t, mgr, "doc.csv")

	var out bytes.Buffer
	st := recoverSession(mgr, "doc.csv", strings.NewReader("\n"), &out)
	require.Nil(t, st)
	require.False(t, mgr.HasSnapshot())
}

func TestRecoverSession_CorruptSnapshotDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::: not yaml :::"), 0o644))
	mgr := session.NewManager(path, 100)

	var out bytes.Buffer
	st := recoverSession(mgr, "doc.csv", strings.NewReader("y\n"), &out)
	require.Nil(t, st)
	require.False(t, mgr.HasSnapshot(), "corrupt snapshot should be discarded")
	require.Contains(t, out.String(), "unreadable")
}
