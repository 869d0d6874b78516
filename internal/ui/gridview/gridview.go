// Package gridview renders the sheet: a spreadsheet-style header row and
// gutter of row numbers around the visible window of cells, scrolled so the
// cursor stays in view.
package gridview

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/grid"
	"github.com/zjrosen/tabula/internal/ui/styles"
)

const gutterWidth = 5

// Model holds the scroll state of the grid viewport.
type Model struct {
	width    int
	height   int
	colWidth int
	rowOff   int
	colOff   int
}

// New creates a grid view rendering columns colWidth cells wide.
func New(colWidth int) Model {
	return Model{colWidth: colWidth}
}

// SetSize updates the viewport dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// VisibleRows returns how many data rows fit under the header line.
func (m Model) VisibleRows() int {
	return max(m.height-1, 1)
}

// VisibleCols returns how many columns fit beside the gutter.
func (m Model) VisibleCols() int {
	if m.width <= gutterWidth {
		return 1
	}
	return max((m.width-gutterWidth)/(m.colWidth+1), 1)
}

// EnsureVisible scrolls so the cursor cell is inside the viewport.
func (m Model) EnsureVisible(cur command.Position) Model {
	if rows := m.VisibleRows(); cur.Y >= m.rowOff+rows {
		m.rowOff = cur.Y - rows + 1
	} else if cur.Y < m.rowOff {
		m.rowOff = cur.Y
	}
	if cols := m.VisibleCols(); cur.X >= m.colOff+cols {
		m.colOff = cur.X - cols + 1
	} else if cur.X < m.colOff {
		m.colOff = cur.X
	}
	if m.rowOff < 0 {
		m.rowOff = 0
	}
	if m.colOff < 0 {
		m.colOff = 0
	}
	return m
}

// Offset returns the current scroll position, for tests and the status bar.
func (m Model) Offset() (row, col int) {
	return m.rowOff, m.colOff
}

// View renders the visible window of g with the cursor cell highlighted.
func (m Model) View(g *grid.Grid, cur command.Position) string {
	if g.Rows() == 0 || g.Cols() == 0 {
		empty := lipgloss.NewStyle().Foreground(styles.TextMutedColor).Italic(true)
		return empty.Render("empty sheet - F1 for commands")
	}

	lastRow := min(m.rowOff+m.VisibleRows(), g.Rows())
	lastCol := min(m.colOff+m.VisibleCols(), g.Cols())

	var b strings.Builder

	// Header: column letters above each column.
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for x := m.colOff; x < lastCol; x++ {
		label := runewidth.FillRight(runewidth.Truncate(ColLabel(x), m.colWidth, "…"), m.colWidth)
		b.WriteString(styles.HeaderStyle.Render(label))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	for y := m.rowOff; y < lastRow; y++ {
		rowID, _ := g.RowAt(y)
		gutter := runewidth.FillLeft(strconv.Itoa(y+1), gutterWidth-1) + " "
		b.WriteString(styles.HeaderStyle.Render(gutter))

		for x := m.colOff; x < lastCol; x++ {
			colID, _ := g.ColAt(x)
			val := runewidth.FillRight(runewidth.Truncate(g.Get(rowID, colID), m.colWidth, "…"), m.colWidth)
			if x == cur.X && y == cur.Y {
				b.WriteString(styles.SelectedCellStyle.Render(val))
			} else {
				b.WriteString(styles.CellStyle.Render(val))
			}
			b.WriteString(" ")
		}
		if y < lastRow-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ColLabel converts a column index to its spreadsheet letter form:
// 0 -> A, 25 -> Z, 26 -> AA.
func ColLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}
