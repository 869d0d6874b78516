// Package app contains the root application model. It routes key tokens
// through the chord dispatcher, applies command results to the grid via the
// history, keeps the crash snapshot committed after every event, and
// composites the overlay components over the sheet.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/chord"
	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/config"
	"github.com/zjrosen/tabula/internal/csvio"
	"github.com/zjrosen/tabula/internal/grid"
	"github.com/zjrosen/tabula/internal/history"
	"github.com/zjrosen/tabula/internal/log"
	"github.com/zjrosen/tabula/internal/session"
	"github.com/zjrosen/tabula/internal/ui/celledit"
	"github.com/zjrosen/tabula/internal/ui/chordpopup"
	"github.com/zjrosen/tabula/internal/ui/gridview"
	"github.com/zjrosen/tabula/internal/ui/logoverlay"
	"github.com/zjrosen/tabula/internal/ui/palette"
	"github.com/zjrosen/tabula/internal/ui/styles"
	"github.com/zjrosen/tabula/internal/watcher"
)

// chordTimeoutMsg fires when an open chord has waited too long for its next
// key. Gen ties the timer to the dispatcher state that armed it.
type chordTimeoutMsg struct {
	gen int
}

// snapshotTickMsg drives the periodic snapshot flush.
type snapshotTickMsg struct{}

// fileChangedMsg reports an external edit to the open document.
type fileChangedMsg struct{}

// Model is the root application state.
type Model struct {
	cfg   config.Config
	state *session.State

	reg        *command.Registry
	dispatcher *chord.Dispatcher
	snapshots  *session.Manager

	gridView   gridview.Model
	popup      chordpopup.Model
	palette    palette.Model
	editor     celledit.Model
	logOverlay logoverlay.Model

	paletteOpen bool
	editing     bool
	editRow     grid.RowID
	editCol     grid.ColID

	statusMsg string
	statusErr bool

	width  int
	height int

	quitting    bool
	resumeChord bool

	watcherHandle *watcher.Watcher
	watcherCh     <-chan struct{}

	logCtx      context.Context
	logCancel   context.CancelFunc
	logListener *log.LogListener
}

// New creates the application model over an already-loaded session. The
// session may come fresh from the CSV file or from a recovered snapshot; a
// pending chord prefix in the snapshot is restored into the dispatcher.
func New(cfg config.Config, st *session.State, reg *command.Registry, snaps *session.Manager) Model {
	d := chord.New(reg)

	m := Model{
		cfg:        cfg,
		state:      st,
		reg:        reg,
		dispatcher: d,
		snapshots:  snaps,
		gridView:   gridview.New(cfg.UI.ColWidth),
		popup:      chordpopup.New(),
		logOverlay: logoverlay.New(),
	}

	if len(st.Chord) > 0 {
		d.SetPrefix(st.Chord)
		res := reg.LookupChord(st.Chord, m.cmdCtx())
		if res.Kind == command.Ambiguous {
			m.popup = m.popup.Show(st.Chord, res.Candidates)
			m.resumeChord = true
		} else {
			// The sheet no longer supports the pending chord.
			d.Cancel()
			st.Chord = nil
		}
	}

	if cfg.Watch {
		w, err := watcher.New(watcher.DefaultConfig(st.Path))
		if err == nil {
			ch, startErr := w.Start()
			if startErr == nil {
				m.watcherHandle = w
				m.watcherCh = ch
			} else {
				_ = w.Stop()
				log.Warn(log.CatWatcher, "watcher start failed", "error", startErr)
			}
		} else {
			log.Warn(log.CatWatcher, "watcher init failed", "error", err)
		}
	}

	m.logCtx, m.logCancel = context.WithCancel(context.Background())
	m.logListener = log.NewListener(m.logCtx)

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.snapshotTick()}
	if m.watcherCh != nil {
		cmds = append(cmds, m.listenFileChanges())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	if m.resumeChord {
		cmds = append(cmds, m.chordTimeout(m.dispatcher.Generation()))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model. Every event ends with a snapshot commit so
// the crash image always reflects a fully processed state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.snapshots.Guard()

	next, cmd := m.handle(msg)
	if next.quitting {
		return next, cmd
	}

	next.gridView = next.gridView.EnsureVisible(next.state.Cursor)
	if err := next.snapshots.Commit(next.state); err != nil {
		log.ErrorErr(log.CatSession, "snapshot commit failed", err)
	}
	return next, cmd
}

// handle dispatches one message.
func (m Model) handle(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.resize(msg.Width, msg.Height), nil

	case log.LogEvent:
		m.logOverlay.Refresh()
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case fileChangedMsg:
		log.Warn(log.CatWatcher, "document changed on disk", "path", m.state.Path)
		m = m.setError("file changed on disk, ctrl+r to reload")
		return m, m.listenFileChanges()

	case snapshotTickMsg:
		if err := m.snapshots.Write(); err != nil {
			log.ErrorErr(log.CatSession, "snapshot flush failed", err)
		}
		return m, m.snapshotTick()

	case chordTimeoutMsg:
		if ev, ok := m.dispatcher.Timeout(msg.gen); ok {
			m = m.chordCancelled(ev)
		}
		return m, nil

	case celledit.CommitMsg:
		return m.commitEdit(msg.Value), nil

	case celledit.CancelMsg:
		m.editing = false
		return m, nil

	case palette.SelectMsg:
		m.paletteOpen = false
		return m.execute(msg.Cmd)

	case palette.CancelMsg:
		m.paletteOpen = false
		return m, nil

	case logoverlay.CloseMsg:
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes a key to whichever layer owns the keyboard: the debug
// overlay, the cell editor, the palette, or the chord dispatcher.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.logOverlay.Visible() {
		var cmd tea.Cmd
		m.logOverlay, cmd = m.logOverlay.Update(msg)
		return m, cmd
	}

	if m.editing {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	if m.paletteOpen {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	m.statusMsg = ""
	m.statusErr = false

	ev := m.dispatcher.Feed(msg.String(), m.cmdCtx())
	switch ev.Kind {
	case chord.Resolved:
		m.popup = m.popup.Hide()
		m.state.Chord = nil
		return m.execute(ev.Cmd)

	case chord.Pending:
		m.popup = m.popup.Show(ev.Prefix, ev.Candidates)
		m.state.Chord = ev.Prefix
		return m, m.chordTimeout(ev.Gen)

	case chord.Cancelled:
		return m.chordCancelled(ev), nil
	}

	// Unbound keys are swallowed.
	return m, nil
}

// chordCancelled clears the pending chord UI and reports what was dropped.
func (m Model) chordCancelled(ev chord.Event) Model {
	m.popup = m.popup.Hide()
	m.state.Chord = nil
	if len(ev.Prefix) > 0 {
		m.statusMsg = "cancelled: " + strings.Join(ev.Prefix, " ")
		m.statusErr = false
	}
	return m
}

// execute runs a resolved command: deltas go through the history, the
// action is handled in the app layer.
func (m Model) execute(c *command.Command) (Model, tea.Cmd) {
	res, err := c.Run(m.cmdCtx())
	if err != nil {
		log.ErrorErr(log.CatUI, "command failed", err, "command", c.Name)
		return m.setError(err.Error()), nil
	}

	if len(res.Deltas) > 0 {
		if err := m.state.History.Apply(m.state.Grid, res.Deltas...); err != nil {
			log.ErrorErr(log.CatHistory, "apply failed", err, "command", c.Name)
			return m.setError(err.Error()), nil
		}
		m.state.Dirty = true
		m.state.ClampCursor()
	}

	return m.applyAction(res.Action)
}

// applyAction performs the app-level effect a command requested.
func (m Model) applyAction(a command.Action) (Model, tea.Cmd) {
	switch a {
	case command.ActionMoveUp:
		return m.moveCursor(0, -1), nil
	case command.ActionMoveDown:
		return m.moveCursor(0, 1), nil
	case command.ActionMoveLeft:
		return m.moveCursor(-1, 0), nil
	case command.ActionMoveRight:
		return m.moveCursor(1, 0), nil

	case command.ActionJumpUp:
		return m.moveCursor(0, -m.pageRows()), nil
	case command.ActionJumpDown:
		return m.moveCursor(0, m.pageRows()), nil
	case command.ActionJumpLeft:
		return m.moveCursor(-m.pageCols(), 0), nil
	case command.ActionJumpRight:
		return m.moveCursor(m.pageCols(), 0), nil

	case command.ActionHome:
		return m.setCursor(0, 0), nil
	case command.ActionEnd:
		return m.setCursor(m.state.Grid.Cols()-1, m.state.Grid.Rows()-1), nil
	case command.ActionHomeRow:
		return m.setCursor(0, m.state.Cursor.Y), nil
	case command.ActionEndRow:
		return m.setCursor(m.state.Grid.Cols()-1, m.state.Cursor.Y), nil
	case command.ActionHomeCol:
		return m.setCursor(m.state.Cursor.X, 0), nil
	case command.ActionEndCol:
		return m.setCursor(m.state.Cursor.X, m.state.Grid.Rows()-1), nil

	case command.ActionEdit:
		return m.openEditor(true)
	case command.ActionReplace:
		return m.openEditor(false)

	case command.ActionUndo:
		return m.undo(), nil
	case command.ActionRedo:
		return m.redo(), nil

	case command.ActionWrite:
		return m.writeFile(), nil
	case command.ActionRead:
		return m.reloadFile(), nil

	case command.ActionTogglePalette:
		return m.openPalette()
	case command.ActionToggleDebug:
		m.logOverlay.Toggle()
		return m, nil
	case command.ActionDumpState:
		return m.dumpState(), nil

	case command.ActionQuit:
		return m.quit()
	}

	return m, nil
}

// moveCursor shifts the cursor and breaks edit coalescing, so edits on
// either side of a move undo separately.
func (m Model) moveCursor(dx, dy int) Model {
	return m.setCursor(m.state.Cursor.X+dx, m.state.Cursor.Y+dy)
}

// setCursor clamps and assigns an absolute cursor position.
func (m Model) setCursor(x, y int) Model {
	m.state.History.Break()
	m.state.Cursor = command.Position{X: x, Y: y}
	m.state.ClampCursor()
	return m
}

// pageRows is the vertical jump distance, one viewport of rows.
func (m Model) pageRows() int {
	if r := m.gridView.VisibleRows(); r > 0 {
		return r
	}
	return 10
}

// pageCols is the horizontal jump distance.
func (m Model) pageCols() int {
	if c := m.gridView.VisibleCols(); c > 0 {
		return c
	}
	return 5
}

// openEditor starts a cell edit. The target cell ids are captured now so a
// commit lands on the same cell even if positions shift meanwhile.
func (m Model) openEditor(seeded bool) (Model, tea.Cmd) {
	row, ok := m.state.Grid.RowAt(m.state.Cursor.Y)
	if !ok {
		return m, nil
	}
	col, ok := m.state.Grid.ColAt(m.state.Cursor.X)
	if !ok {
		return m, nil
	}

	initial := ""
	if seeded {
		initial = m.state.Grid.Get(row, col)
	}

	m.editRow = row
	m.editCol = col
	m.editor = celledit.New(m.cellRef(), initial).SetSize(m.width, m.height)
	m.editing = true
	return m, m.editor.Init()
}

// commitEdit turns the editor result into a cell edit delta. Consecutive
// commits on the same cell coalesce in the history.
func (m Model) commitEdit(value string) Model {
	m.editing = false

	// The cell may have been deleted while the editor was open.
	if _, ok := m.state.Grid.RowIndex(m.editRow); !ok {
		return m.setError("cell no longer exists")
	}
	if _, ok := m.state.Grid.ColIndex(m.editCol); !ok {
		return m.setError("cell no longer exists")
	}

	old := m.state.Grid.Get(m.editRow, m.editCol)
	if value == old {
		return m
	}

	d := grid.CellEdit(m.editRow, m.editCol, old, value)
	if err := m.state.History.Apply(m.state.Grid, d); err != nil {
		log.ErrorErr(log.CatHistory, "cell edit failed", err)
		return m.setError(err.Error())
	}
	m.state.Dirty = true
	return m
}

func (m Model) undo() Model {
	err := m.state.History.Undo(m.state.Grid)
	if errors.Is(err, history.ErrEmptyStack) {
		return m.setStatus("nothing to undo")
	}
	if err != nil {
		log.ErrorErr(log.CatHistory, "undo failed", err)
		return m.setError(err.Error())
	}
	m.state.Dirty = true
	m.state.ClampCursor()
	return m.setStatus("undo")
}

func (m Model) redo() Model {
	err := m.state.History.Redo(m.state.Grid)
	if errors.Is(err, history.ErrEmptyStack) {
		return m.setStatus("nothing to redo")
	}
	if err != nil {
		log.ErrorErr(log.CatHistory, "redo failed", err)
		return m.setError(err.Error())
	}
	m.state.Dirty = true
	m.state.ClampCursor()
	return m.setStatus("redo")
}

// writeFile saves the grid to the document path. The watcher is told to
// swallow the resulting event so our own save does not warn.
func (m Model) writeFile() Model {
	if m.watcherHandle != nil {
		m.watcherHandle.SuppressNext()
	}
	if err := csvio.Write(m.state.Path, m.state.Grid); err != nil {
		log.ErrorErr(log.CatFile, "write failed", err, "path", m.state.Path)
		return m.setError(err.Error())
	}
	m.state.Dirty = false
	m.state.History.Break()
	log.Info(log.CatFile, "document written", "path", m.state.Path)
	return m.setStatus("wrote " + filepath.Base(m.state.Path))
}

// reloadFile replaces the sheet with the on-disk content. The replacement
// is applied as a delta group, so it is a single undoable step.
func (m Model) reloadFile() Model {
	g, err := csvio.Read(m.state.Path)
	if err != nil {
		log.ErrorErr(log.CatFile, "reload failed", err, "path", m.state.Path)
		return m.setError(err.Error())
	}

	deltas := csvio.ReplaceDeltas(m.state.Grid, csvio.ToRecords(g))
	if len(deltas) > 0 {
		m.state.History.Break()
		if err := m.state.History.Apply(m.state.Grid, deltas...); err != nil {
			log.ErrorErr(log.CatHistory, "reload apply failed", err)
			return m.setError(err.Error())
		}
		m.state.History.Break()
	}
	m.state.Dirty = false
	m.state.ClampCursor()
	log.Info(log.CatFile, "document reloaded", "path", m.state.Path)
	return m.setStatus("reloaded " + filepath.Base(m.state.Path))
}

// openPalette opens the fuzzy command palette over the current context.
func (m Model) openPalette() (Model, tea.Cmd) {
	m.palette = palette.New(m.reg, m.cmdCtx()).SetSize(m.width, m.height)
	m.paletteOpen = true
	return m, m.palette.Init()
}

// dumpState writes the full session state next to the document.
func (m Model) dumpState() Model {
	data, err := session.Encode(m.state)
	if err != nil {
		log.ErrorErr(log.CatSession, "state dump failed", err)
		return m.setError(err.Error())
	}
	path := m.state.Path + ".dump.yaml"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.ErrorErr(log.CatSession, "state dump failed", err, "path", path)
		return m.setError(err.Error())
	}
	log.Info(log.CatSession, "state dumped", "path", path)
	return m.setStatus("dumped " + filepath.Base(path))
}

// quit tears the session down cleanly. Discarding the snapshot here is
// what distinguishes a clean exit from a crash at the next startup.
func (m Model) quit() (Model, tea.Cmd) {
	if err := m.snapshots.Discard(); err != nil {
		log.ErrorErr(log.CatSession, "snapshot discard failed", err)
	}
	m.Close()
	m.quitting = true
	return m, tea.Quit
}

// Close releases resources held by the application.
func (m *Model) Close() {
	if m.logCancel != nil {
		m.logCancel()
	}
	if m.watcherHandle != nil {
		if err := m.watcherHandle.Stop(); err != nil {
			log.ErrorErr(log.CatWatcher, "watcher stop failed", err)
		}
		m.watcherHandle = nil
	}
}

// resize propagates the terminal size to every component.
func (m Model) resize(width, height int) Model {
	m.width = width
	m.height = height

	gridHeight := height
	if m.cfg.UI.ShowStatusBar {
		gridHeight--
	}
	m.gridView = m.gridView.SetSize(width, gridHeight)
	m.popup = m.popup.SetSize(width, height)
	m.palette = m.palette.SetSize(width, height)
	m.editor = m.editor.SetSize(width, height)
	m.logOverlay.SetSize(width, height)
	return m
}

func (m Model) setStatus(msg string) Model {
	m.statusMsg = msg
	m.statusErr = false
	return m
}

func (m Model) setError(msg string) Model {
	m.statusMsg = msg
	m.statusErr = true
	return m
}

// cmdCtx is the context commands and the dispatcher see.
func (m Model) cmdCtx() command.Context {
	return command.Context{Grid: m.state.Grid, Cursor: m.state.Cursor}
}

// cellRef formats the cursor position as a sheet reference, e.g. "B3".
func (m Model) cellRef() string {
	if m.state.Grid.Rows() == 0 || m.state.Grid.Cols() == 0 {
		return "·"
	}
	return gridview.ColLabel(m.state.Cursor.X) + strconv.Itoa(m.state.Cursor.Y+1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	view := m.gridView.View(m.state.Grid, m.state.Cursor)
	if m.cfg.UI.ShowStatusBar {
		view += "\n" + m.statusBar()
	}

	view = m.popup.Overlay(view)
	if m.editing {
		view = m.editor.Overlay(view)
	}
	if m.paletteOpen {
		view = m.palette.Overlay(view)
	}
	return m.logOverlay.Overlay(view)
}

// statusBar renders the bottom line: mode tag, document name, transient
// message or pending chord, and the cursor reference with sheet size.
func (m Model) statusBar() string {
	tag := "VIEW"
	switch {
	case m.logOverlay.Visible():
		tag = "DBUG"
	case m.paletteOpen:
		tag = "CMDP"
	case m.editing:
		tag = "EDIT"
	}

	name := filepath.Base(m.state.Path)
	if m.state.Dirty {
		name += " *"
	}
	left := styles.ModeTagStyle.Render(" "+tag+" ") + " " + name

	var middle string
	if prefix, ok := m.dispatcher.PendingChord(); ok {
		middle = "chord: " + strings.Join(prefix, " ") + " …"
	} else if m.statusMsg != "" {
		if m.statusErr {
			middle = styles.ErrorStyle.Render(m.statusMsg)
		} else {
			middle = m.statusMsg
		}
	}

	right := fmt.Sprintf("%s  %d×%d ", m.cellRef(), m.state.Grid.Rows(), m.state.Grid.Cols())

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right)
	leftPad := gap / 2
	rightPad := gap - leftPad
	if leftPad < 1 {
		leftPad, rightPad = 1, 1
	}

	line := left + strings.Repeat(" ", leftPad) + middle + strings.Repeat(" ", rightPad) + right
	return styles.StatusBarStyle.Width(m.width).MaxWidth(m.width).Render(line)
}

// snapshotTick arms the next periodic snapshot flush.
func (m Model) snapshotTick() tea.Cmd {
	return tea.Tick(m.cfg.SnapshotInterval, func(time.Time) tea.Msg {
		return snapshotTickMsg{}
	})
}

// chordTimeout arms the disambiguation timer for the given generation.
func (m Model) chordTimeout(gen int) tea.Cmd {
	return tea.Tick(m.cfg.ChordTimeout, func(time.Time) tea.Msg {
		return chordTimeoutMsg{gen: gen}
	})
}

// listenFileChanges waits for the next external-edit notification.
func (m Model) listenFileChanges() tea.Cmd {
	ch := m.watcherCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}
