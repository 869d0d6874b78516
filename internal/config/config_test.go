package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	require.Equal(t, 1000, cfg.HistoryLimit)
	require.Equal(t, 2*time.Second, cfg.ChordTimeout)
	require.True(t, cfg.Watch)
	require.True(t, cfg.UI.ShowStatusBar)
	require.NotEmpty(t, cfg.Theme.Highlight)
}

func TestValidateFallsBackToDefaults(t *testing.T) {
	cfg := Config{HistoryLimit: -5, ChordTimeout: 0, UI: UIConfig{ColWidth: 1}}
	cfg.Validate()

	d := Defaults()
	require.Equal(t, d.HistoryLimit, cfg.HistoryLimit)
	require.Equal(t, d.ChordTimeout, cfg.ChordTimeout)
	require.Equal(t, d.SnapshotInterval, cfg.SnapshotInterval)
	require.Equal(t, d.UI.ColWidth, cfg.UI.ColWidth)
}

func TestValidateKeepsConfiguredValues(t *testing.T) {
	cfg := Config{HistoryLimit: 50, ChordTimeout: time.Second, SnapshotInterval: time.Minute, UI: UIConfig{ColWidth: 20}}
	cfg.Validate()
	require.Equal(t, 50, cfg.HistoryLimit)
	require.Equal(t, time.Second, cfg.ChordTimeout)
	require.Equal(t, time.Minute, cfg.SnapshotInterval)
	require.Equal(t, 20, cfg.UI.ColWidth)
}

func TestSnapshotPathIsUniquePerDocument(t *testing.T) {
	cfg := Config{SnapshotDir: "/tmp/snaps"}
	a := cfg.SnapshotPath("/data/a.csv")
	b := cfg.SnapshotPath("/data/b.csv")
	require.NotEqual(t, a, b)
	require.True(t, strings.HasPrefix(a, "/tmp/snaps/"))
	require.True(t, strings.HasSuffix(a, ".session.yaml"))
	// The flattened name keeps no path separators.
	require.NotContains(t, filepath.Base(a), "/")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".tabula", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "history_limit: 1000")
	require.Contains(t, string(data), "chord_timeout: 2s")
}
