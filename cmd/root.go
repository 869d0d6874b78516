package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/tabula/internal/app"
	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/config"
	"github.com/zjrosen/tabula/internal/csvio"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/session"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "tabula <file.csv>",
	Short:   "A terminal CSV editor",
	Long:    `A terminal CSV editor with chorded keybindings, a fuzzy command palette, delta-based undo, and crash-safe session recovery.`,
	Version: version,
	Args:    cobra.ExactArgs(1),
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/tabula/config.yaml)")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false,
		"write a debug log and enable the F12 log overlay")
	rootCmd.Flags().Bool("no-watch", false,
		"disable the warning when the file changes on disk")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("history_limit", defaults.HistoryLimit)
	viper.SetDefault("chord_timeout", defaults.ChordTimeout)
	viper.SetDefault("snapshot_interval", defaults.SnapshotInterval)
	viper.SetDefault("watch", defaults.Watch)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.col_width", defaults.UI.ColWidth)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .tabula/config.yaml (current directory)
		// 2. ~/.config/tabula/config.yaml (user config)
		if _, err := os.Stat(".tabula/config.yaml"); err == nil {
			viper.SetConfigFile(".tabula/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "tabula"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .tabula/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".tabula/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// buildRegistry installs the built-in commands and applies any rebindings
// from the config. A bad rebinding fails startup with the conflict spelled
// out rather than silently dropping the user's chord.
func buildRegistry(keys map[string][][]string) (*command.Registry, error) {
	reg := command.NewRegistry()
	if err := command.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	for name, chords := range keys {
		if err := reg.Rebind(name, chords); err != nil {
			return nil, fmt.Errorf("keys.%s: %w", name, err)
		}
	}
	return reg, nil
}

// recoverSession offers to restore a crash snapshot. Returns nil when there
// is nothing to recover, the user declines, or the snapshot is corrupt; in
// every non-recovery case the snapshot file is discarded.
func recoverSession(mgr *session.Manager, docPath string, in io.Reader, out io.Writer) *session.State {
	if !mgr.HasSnapshot() {
		return nil
	}

	st, err := mgr.Load()
	if err != nil {
		fmt.Fprintf(out, "Found a session snapshot for %s but it is unreadable: %v\nStarting fresh.\n", docPath, err)
		log.ErrorErr(log.CatSession, "snapshot recovery failed", err, "path", mgr.Path())
		_ = mgr.Discard()
		return nil
	}

	fmt.Fprintf(out, "Found an unsaved session for %s. Recover it? [y/N] ", docPath)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	if s := strings.ToLower(strings.TrimSpace(answer)); s != "y" && s != "yes" {
		_ = mgr.Discard()
		return nil
	}

	// The snapshot may have been taken under a different relative path.
	st.Path = docPath
	log.Info(log.CatSession, "session recovered", "path", docPath)
	return st
}

func runApp(cmd *cobra.Command, args []string) error {
	docPath := args[0]

	if debug {
		logPath := filepath.Join(filepath.Dir(docPath), ".tabula-debug.log")
		if cleanup, err := log.Init(logPath); err == nil {
			defer cleanup()
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "debug log unavailable: %v\n", err)
		}
	}

	cfg.Validate()
	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.Watch = false
	}

	styles.ApplyTheme(cfg.Theme.Highlight, cfg.Theme.Subtle, cfg.Theme.Error, cfg.Theme.Success)

	reg, err := buildRegistry(cfg.Keys)
	if err != nil {
		return fmt.Errorf("invalid key configuration: %w", err)
	}

	mgr := session.NewManager(cfg.SnapshotPath(docPath), cfg.HistoryLimit)

	st := recoverSession(mgr, docPath, cmd.InOrStdin(), cmd.OutOrStdout())
	if st == nil {
		g, err := csvio.Read(docPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", docPath, err)
		}
		st = session.NewState(docPath, g, cfg.HistoryLimit)
	}

	model := app.New(cfg, st, reg, mgr)
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	// SIGTERM flushes the last committed snapshot before the program dies,
	// so the next start can offer recovery.
	stop := mgr.OnSignal(func(os.Signal) { p.Kill() }, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
