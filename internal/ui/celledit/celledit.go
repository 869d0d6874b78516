// Package celledit is the single-line editor opened over the cursor cell.
// Edit mode seeds the input with the current value; replace mode starts
// blank. The component only collects text, the app turns the result into a
// delta.
package celledit

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/keys"
	"github.com/zjrosen/tabula/internal/ui/overlay"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// CommitMsg is sent when the edit is confirmed.
type CommitMsg struct {
	Value string
}

// CancelMsg is sent when the edit is abandoned.
type CancelMsg struct{}

// Model holds the editor state.
type Model struct {
	input  textinput.Model
	label  string
	width  int
	height int
}

// New creates an editor for the cell named by label (e.g. "B3"), seeded
// with initial. Pass "" for replace mode.
func New(label, initial string) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "value"
	ti.SetValue(initial)
	ti.CursorEnd()
	ti.Focus()
	return Model{input: ti, label: label}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key input for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Component.Confirm):
			value := m.input.Value()
			return m, func() tea.Msg { return CommitMsg{Value: value} }
		case key.Matches(msg, keys.Component.Cancel):
			return m, func() tea.Msg { return CancelMsg{} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Value returns the text currently in the input.
func (m Model) Value() string {
	return m.input.Value()
}

// SetSize updates the viewport dimensions for overlay placement.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the editor box.
func (m Model) View() string {
	boxWidth := 40
	if m.width > 0 && m.width-4 < boxWidth {
		boxWidth = max(m.width-4, 10)
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		Render(m.label)
	hint := lipgloss.NewStyle().
		Foreground(styles.TextMutedColor).
		Render("Enter • Esc")
	pad := max(boxWidth-lipgloss.Width(title)-lipgloss.Width(hint), 1)

	m.input.Width = boxWidth - 2

	content := title + strings.Repeat(" ", pad) + hint + "\n" +
		lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", boxWidth)) + "\n" +
		" " + m.input.View()

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(content)
}

// Overlay renders the editor centered over the background.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}
