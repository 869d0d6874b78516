// Package chordpopup renders the disambiguation box shown while a key
// chord is open: the prefix typed so far and the commands still reachable,
// each with the keys that would complete it.
package chordpopup

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/ui/overlay"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

// Model is the popup state. It is render-only: the chord dispatcher owns
// the machine, the popup just shows it.
type Model struct {
	prefix     []string
	candidates []*command.Command
	width      int
	height     int
}

// New returns a hidden popup.
func New() Model {
	return Model{}
}

// Show populates the popup for an open chord.
func (m Model) Show(prefix []string, candidates []*command.Command) Model {
	m.prefix = prefix
	m.candidates = candidates
	return m
}

// Hide clears the popup.
func (m Model) Hide() Model {
	m.prefix = nil
	m.candidates = nil
	return m
}

// Visible reports whether there is anything to draw.
func (m Model) Visible() bool {
	return len(m.prefix) > 0
}

// SetSize updates the viewport dimensions for overlay placement.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the popup box.
func (m Model) View() string {
	if !m.Visible() {
		return ""
	}

	prefix := strings.Join(m.prefix, " ")
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		Render(prefix + " …")

	var rows []string
	width := lipgloss.Width(title)
	for _, c := range m.candidates {
		rest := completion(c, m.prefix)
		row := styles.SelectionIndicatorStyle.Render(rest) +
			lipgloss.NewStyle().Foreground(styles.TextMutedColor).Render("  "+c.Label)
		rows = append(rows, row)
		if w := lipgloss.Width(row); w > width {
			width = w
		}
	}

	content := title + "\n" +
		lipgloss.NewStyle().Foreground(styles.OverlayBorderColor).Render(strings.Repeat("─", width)) + "\n" +
		strings.Join(rows, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Padding(0, 1).
		Render(content)
}

// completion returns the keys that would finish the first chord of c
// extending prefix, or the full chord when none extends it.
func completion(c *command.Command, prefix []string) string {
	for _, chord := range c.Chords {
		if len(chord) <= len(prefix) {
			continue
		}
		match := true
		for i, tok := range prefix {
			if chord[i] != tok {
				match = false
				break
			}
		}
		if match {
			return strings.Join(chord[len(prefix):], " ")
		}
	}
	return c.ChordString()
}

// Overlay renders the popup in the bottom corner of the background.
func (m Model) Overlay(bg string) string {
	if !m.Visible() {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}
