// Package palette provides the searchable command picker. The list is
// backed by the command registry: every applicable command is reachable
// here whether or not it has a chord, and matching commands show their
// first chord right-aligned.
package palette

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/keys"
	"github.com/zjrosen/tabula/internal/ui/overlay"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// SelectMsg is sent when a command is picked.
type SelectMsg struct {
	Cmd *command.Command
}

// CancelMsg is sent when the palette is dismissed.
type CancelMsg struct{}

// Model holds the palette state.
type Model struct {
	reg       *command.Registry
	ctx       command.Context
	textInput textinput.Model
	filtered  []*command.Command
	cursor    int
	scroll    int
	width     int
	height    int
}

// New creates a palette over reg, filtered for ctx.
func New(reg *command.Registry, ctx command.Context) Model {
	ti := textinput.New()
	ti.Placeholder = "Search commands..."
	ti.Prompt = ""
	ti.Focus()

	return Model{
		reg:       reg,
		ctx:       ctx,
		textInput: ti,
		filtered:  reg.Search("", ctx),
	}
}

// Init returns the initial command (starts cursor blink).
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Component.Next):
			// Arrow keys or ctrl+n only, not j - conflicts with typing
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m = m.ensureCursorVisible()
			}
			return m, nil

		case key.Matches(msg, keys.Component.Prev):
			if m.cursor > 0 {
				m.cursor--
				m = m.ensureCursorVisible()
			}
			return m, nil

		case key.Matches(msg, keys.Component.Confirm):
			return m, m.selectCmd()

		case key.Matches(msg, keys.Component.Cancel):
			return m, func() tea.Msg { return CancelMsg{} }

		case key.Matches(msg, keys.Component.ClearInput):
			m.textInput.SetValue("")
			m = m.refilter()
			return m, nil

		default:
			var cmd tea.Cmd
			m.textInput, cmd = m.textInput.Update(msg)
			m = m.refilter()
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// refilter reruns the registry search for the current query.
func (m Model) refilter() Model {
	m.filtered = m.reg.Search(m.textInput.Value(), m.ctx)
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
		m.scroll = 0
	}
	return m
}

// maxVisible returns how many rows fit, shrinking on small screens.
func (m Model) maxVisible() int {
	target := 8
	if m.height > 0 {
		// Border (2), search line and divider (2), footer (1).
		if avail := m.height - 5; avail < target {
			target = max(avail, 2)
		}
	}
	return target
}

// ensureCursorVisible adjusts scroll offset to keep cursor in view.
func (m Model) ensureCursorVisible() Model {
	visible := m.maxVisible()
	if m.cursor >= m.scroll+visible {
		m.scroll = m.cursor - visible + 1
	}
	if m.cursor < m.scroll {
		m.scroll = m.cursor
	}
	return m
}

// selectCmd emits the selection message for the cursor row.
func (m Model) selectCmd() tea.Cmd {
	if len(m.filtered) == 0 {
		return nil
	}
	selected := m.filtered[m.cursor]
	return func() tea.Msg { return SelectMsg{Cmd: selected} }
}

// Selected returns the command under the cursor.
func (m Model) Selected() (*command.Command, bool) {
	if m.cursor >= 0 && m.cursor < len(m.filtered) {
		return m.filtered[m.cursor], true
	}
	return nil, false
}

// Filtered returns the current result list.
func (m Model) Filtered() []*command.Command {
	return m.filtered
}

// Query returns the current search text.
func (m Model) Query() string {
	return m.textInput.Value()
}

// SetSize sets the viewport dimensions for overlay rendering.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the palette box.
func (m Model) View() string {
	boxWidth := 50
	if m.width > 0 && m.width-4 < boxWidth {
		boxWidth = max(m.width-4, 20)
	}

	dividerStyle := lipgloss.NewStyle().Foreground(styles.OverlayBorderColor)
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	searchIcon := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render(" > ")
	m.textInput.Width = boxWidth - 4

	var content strings.Builder
	content.WriteString(searchIcon + m.textInput.View())
	content.WriteString("\n")
	content.WriteString(divider)

	if len(m.filtered) == 0 {
		noResults := lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Padding(0, 1)
		content.WriteString("\n")
		content.WriteString(noResults.Render("No matching commands"))
	} else {
		visible := m.maxVisible()
		end := min(m.scroll+visible, len(m.filtered))
		for i := m.scroll; i < end; i++ {
			content.WriteString("\n")
			content.WriteString(m.renderRow(m.filtered[i], i == m.cursor, boxWidth))
		}
		if end < len(m.filtered) {
			more := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("↓ more")
			pad := max((boxWidth-lipgloss.Width(more))/2, 0)
			content.WriteString("\n" + strings.Repeat(" ", pad) + more)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(boxWidth).
		Render(content.String())
}

// renderRow renders one command with its chord right-aligned.
func (m Model) renderRow(c *command.Command, selected bool, width int) string {
	indicator := " "
	nameStyle := lipgloss.NewStyle()
	if selected {
		indicator = styles.SelectionIndicatorStyle.Render(">")
		nameStyle = nameStyle.Bold(true)
	}

	chord := c.ChordString()
	chordStyle := lipgloss.NewStyle().Foreground(styles.TextMutedColor)

	nameWidth := width - 2 - lipgloss.Width(chord) - 1
	label := truncate.StringWithTail(c.Label, uint(max(nameWidth, 4)), "…")

	pad := max(width-2-lipgloss.Width(label)-lipgloss.Width(chord), 1)
	return indicator + nameStyle.Render(label) + strings.Repeat(" ", pad) + chordStyle.Render(chord)
}

// Overlay renders the palette on top of a background view.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}
