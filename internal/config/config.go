// Package config provides configuration types and defaults for tabula.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/tabula/internal/log"
)

// Config holds all configuration options for tabula.
type Config struct {
	// HistoryLimit caps the number of retained undo groups.
	HistoryLimit int `mapstructure:"history_limit"`

	// ChordTimeout is how long an ambiguous chord stays open before it
	// is cancelled.
	ChordTimeout time.Duration `mapstructure:"chord_timeout"`

	// SnapshotDir overrides where session snapshots land.
	// Default: ~/.local/state/tabula
	SnapshotDir string `mapstructure:"snapshot_dir"`

	// SnapshotInterval debounces idle snapshot writes.
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`

	// Watch toggles the external-change warning for the open file.
	Watch bool `mapstructure:"watch"`

	UI    UIConfig    `mapstructure:"ui"`
	Theme ThemeConfig `mapstructure:"theme"`

	// Keys overrides default chords per command name. Each value is a
	// list of chords; each chord is a list of key tokens.
	// Example:
	//   keys:
	//     row.delete: [["d", "r"]]
	Keys map[string][][]string `mapstructure:"keys"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	// ColWidth is the rendered width of one column in cells.
	ColWidth int `mapstructure:"col_width"`
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	Highlight string `mapstructure:"highlight"` // selected cell
	Subtle    string `mapstructure:"subtle"`    // chrome, separators
	Error     string `mapstructure:"error"`     // error status messages
	Success   string `mapstructure:"success"`   // confirmation status messages
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		HistoryLimit:     1000,
		ChordTimeout:     2 * time.Second,
		SnapshotInterval: 3 * time.Second,
		Watch:            true,
		UI: UIConfig{
			ShowStatusBar: true,
			ColWidth:      12,
		},
		Theme: ThemeConfig{
			Highlight: "#54A0FF",
			Subtle:    "#6C6C6C",
			Error:     "#FF8787",
			Success:   "#73F59F",
		},
	}
}

// DefaultSnapshotDir returns where session snapshots live when not
// configured. Falls back to a local dot directory if home is unavailable.
func DefaultSnapshotDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tabula"
	}
	return filepath.Join(home, ".local", "state", "tabula")
}

// SnapshotPath derives the snapshot file for one document: a flattened
// form of its absolute path, so two open files never share a snapshot.
func (c Config) SnapshotPath(docPath string) string {
	dir := c.SnapshotDir
	if dir == "" {
		dir = DefaultSnapshotDir()
	}
	abs, err := filepath.Abs(docPath)
	if err != nil {
		abs = docPath
	}
	name := strings.NewReplacer("/", "%", "\\", "%", ":", "%").Replace(abs)
	return filepath.Join(dir, name+".session.yaml")
}

// DefaultConfigTemplate returns the commented starter config file.
func DefaultConfigTemplate() string {
	return `# Tabula configuration
#
# Lookup order:
#   1. .tabula/config.yaml (current directory)
#   2. ~/.config/tabula/config.yaml

# Number of undo steps kept in memory.
history_limit: 1000

# How long a partially typed key chord stays open (Go duration).
chord_timeout: 2s

# How often the crash-recovery snapshot is flushed while idle.
snapshot_interval: 3s

# Warn when the open file changes on disk.
watch: true

ui:
  show_status_bar: true
  col_width: 12

theme:
  highlight: "#54A0FF"
  subtle: "#6C6C6C"
  error: "#FF8787"
  success: "#73F59F"

# Rebind commands. Each binding is a list of chords; a chord is a list
# of key tokens.
# keys:
#   row.delete: [["d", "r"]]
`
}

// WriteDefaultConfig writes the starter config to configPath.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// Validate sanity-checks configured values, falling back to defaults for
// out-of-range numbers rather than failing startup.
func (c *Config) Validate() {
	d := Defaults()
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	if c.ChordTimeout <= 0 {
		c.ChordTimeout = d.ChordTimeout
	}
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = d.SnapshotInterval
	}
	if c.UI.ColWidth < 3 {
		c.UI.ColWidth = d.UI.ColWidth
	}
}
