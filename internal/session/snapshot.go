package session

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/grid"
	"github.com/zjrosen/tabula/internal/history"
	"github.com/zjrosen/tabula/internal/log"
)

// snapshotVersion guards against loading snapshots written by an
// incompatible build.
const snapshotVersion = 1

// ErrCorruptSnapshot wraps any structural violation found while decoding:
// malformed YAML, unknown version, ids outside counter ranges, or deltas
// referencing ids the session never allocated. A corrupt snapshot is
// reported and discarded, never partially applied.
var ErrCorruptSnapshot = errors.New("session: corrupt snapshot")

// ErrNoSnapshot is returned by Load when no snapshot file exists.
var ErrNoSnapshot = errors.New("session: no snapshot")

type snapshotFile struct {
	Version int              `yaml:"version"`
	Path    string           `yaml:"path"`
	Cursor  command.Position `yaml:"cursor"`
	Chord   []string         `yaml:"chord,omitempty"`
	Dirty   bool             `yaml:"dirty"`
	Grid    grid.Dump        `yaml:"grid"`
	Undo    []history.Group  `yaml:"undo,omitempty"`
	Redo    []history.Group  `yaml:"redo,omitempty"`
}

// Encode serializes a session state.
func Encode(s *State) ([]byte, error) {
	undo, redo := s.History.Dump()
	f := snapshotFile{
		Version: snapshotVersion,
		Path:    s.Path,
		Cursor:  s.Cursor,
		Chord:   s.Chord,
		Dirty:   s.Dirty,
		Grid:    s.Grid.ToDump(),
		Undo:    undo,
		Redo:    redo,
	}
	return yaml.Marshal(f)
}

// Decode reconstructs a session state, validating every structural
// invariant before handing anything back.
func Decode(data []byte, historyLimit int) (*State, error) {
	var f snapshotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if f.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrCorruptSnapshot, f.Version, snapshotVersion)
	}
	g, err := grid.FromDump(f.Grid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	h := history.Restore(historyLimit, f.Undo, f.Redo)
	if err := h.Validate(g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	s := &State{
		Path:    f.Path,
		Grid:    g,
		History: h,
		Cursor:  f.Cursor,
		Chord:   f.Chord,
		Dirty:   f.Dirty,
	}
	s.ClampCursor()
	return s, nil
}

// Manager owns the snapshot file for one session. Commit captures a
// serialization; Write flushes the last committed bytes atomically. Keeping
// the two apart means the crash path never serializes live state that a
// panic may have left half-mutated.
type Manager struct {
	path         string
	historyLimit int

	mu       sync.Mutex
	lastGood []byte
}

// NewManager returns a manager writing to path.
func NewManager(path string, historyLimit int) *Manager {
	return &Manager{path: path, historyLimit: historyLimit}
}

// Path returns the snapshot file location.
func (m *Manager) Path() string { return m.path }

// Commit serializes s and stashes the bytes as the recovery image. Called
// after each fully processed event, when the state is known consistent.
func (m *Manager) Commit(s *State) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("session: commit: %w", err)
	}
	m.mu.Lock()
	m.lastGood = data
	m.mu.Unlock()
	return nil
}

// Write flushes the last committed snapshot with a tmp-file rename, so a
// crash mid-write leaves the previous snapshot intact. A Write with
// nothing committed is a no-op.
func (m *Manager) Write() error {
	m.mu.Lock()
	data := m.lastGood
	m.mu.Unlock()
	if data == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("session: write snapshot: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("session: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("session: write snapshot: %w", err)
	}
	return nil
}

// HasSnapshot reports whether a snapshot file exists. Since Discard runs
// on every clean exit, an existing file means the previous run crashed.
func (m *Manager) HasSnapshot() bool {
	_, err := os.Stat(m.path)
	return err == nil
}

// Load reads and decodes the snapshot file.
func (m *Manager) Load() (*State, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("session: load snapshot: %w", err)
	}
	return Decode(data, m.historyLimit)
}

// Discard removes the snapshot file. Called on clean exit and after a
// declined or corrupt recovery.
func (m *Manager) Discard() error {
	err := os.Remove(m.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("session: discard snapshot: %w", err)
	}
	return nil
}

// Guard is deferred at the top of the update loop. On panic it flushes the
// last committed snapshot before re-panicking, so the recovery image lands
// on disk before any terminal restoration tears the process down.
func (m *Manager) Guard() {
	if r := recover(); r != nil {
		if err := m.Write(); err != nil {
			log.ErrorErr(log.CatSession, "snapshot write during panic failed", err)
		}
		panic(r)
	}
}

// OnSignal flushes the snapshot when one of the given signals arrives and
// then invokes fn. The returned stop function releases the handler.
func (m *Manager) OnSignal(fn func(os.Signal), sigs ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			if err := m.Write(); err != nil {
				log.ErrorErr(log.CatSession, "snapshot write on signal failed", err, "signal", sig)
			}
			if fn != nil {
				fn(sig)
			}
		case <-done:
		}
	}()
	return func() {
		signal.Stop(ch)
		close(done)
	}
}
