// Package overlay composites modal boxes onto a rendered background view
// without clearing the screen underneath.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	// Center places the overlay in the middle of the viewport.
	Center Position = iota
	// Top places the overlay at the top center.
	Top
	// Bottom places the overlay at the bottom center.
	Bottom
)

// Config controls overlay rendering behavior.
type Config struct {
	// Width and Height are the viewport dimensions.
	Width  int
	Height int
	// Position selects the anchor.
	Position Position
	// PadY insets Top/Bottom placements from the edge.
	PadY int
}

// Place draws fg over bg at the configured position. Splicing is
// ANSI-aware so styling survives on both sides of the box.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, strings.Repeat(" ", cfg.Width))
	}

	startX, startY := anchor(cfg, lipgloss.Width(fg), len(fgLines))

	for i, fgLine := range fgLines {
		bgY := startY + i
		if bgY >= len(bgLines) {
			break
		}

		bgLine := bgLines[bgY]

		left := ansi.Truncate(bgLine, startX, "")
		if w := ansi.StringWidth(left); w < startX {
			left += strings.Repeat(" ", startX-w)
		}

		endX := startX + ansi.StringWidth(fgLine)
		var right string
		if endX < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, endX, "")
		}

		bgLines[bgY] = left + fgLine + right
	}

	return strings.Join(bgLines, "\n")
}

// anchor computes the top-left coordinate of the overlay box.
func anchor(cfg Config, fgWidth, fgHeight int) (x, y int) {
	x = (cfg.Width - fgWidth) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - fgHeight - cfg.PadY
	default:
		y = (cfg.Height - fgHeight) / 2
	}

	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	return x, y
}
