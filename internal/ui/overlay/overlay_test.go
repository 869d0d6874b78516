package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_Center(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA"
	fg := "XX\nXX"

	result := Place(Config{Width: 5, Height: 3, Position: Center}, fg, bg)

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "AXXAA", lines[0])
	assert.Equal(t, "AXXAA", lines[1])
	assert.Equal(t, "AAAAA", lines[2])
}

func TestPlace_OversizedForeground(t *testing.T) {
	bg := "AAA\nAAA\nAAA"
	fg := "XXXXX\nXXXXX"

	// Must not panic; the box lands at the origin.
	result := Place(Config{Width: 3, Height: 3, Position: Center}, fg, bg)
	lines := strings.Split(result, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "XXXXX"))
}

func TestPlace_Top(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat("AAAAA\n", 5), "\n")
	result := Place(Config{Width: 5, Height: 5, Position: Top, PadY: 1}, "XX", bg)

	lines := strings.Split(result, "\n")
	assert.Equal(t, "AAAAA", lines[0])
	assert.Contains(t, lines[1], "XX")
}

func TestPlace_Bottom(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat("AAAAA\n", 5), "\n")
	result := Place(Config{Width: 5, Height: 5, Position: Bottom, PadY: 1}, "XX", bg)

	lines := strings.Split(result, "\n")
	assert.Contains(t, lines[3], "XX")
	assert.Equal(t, "AAAAA", lines[4])
}

func TestPlace_PadsShortBackground(t *testing.T) {
	result := Place(Config{Width: 4, Height: 4, Position: Center}, "XX", "AAAA")
	lines := strings.Split(result, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "XX")
}

func TestPlace_PreservesStyledBackground(t *testing.T) {
	styled := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("AAAAAA")
	bg := styled + "\n" + styled + "\n" + styled

	result := Place(Config{Width: 6, Height: 3, Position: Center}, "XX", bg)
	lines := strings.Split(result, "\n")
	// Width is computed ignoring escape sequences.
	assert.Equal(t, 6, lipgloss.Width(lines[1]))
	assert.Contains(t, lines[1], "XX")
}
