package keys

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestComponentBindings(t *testing.T) {
	tests := []struct {
		name    string
		binding key.Binding
		msg     tea.KeyMsg
	}{
		{"confirm", Component.Confirm, tea.KeyMsg{Type: tea.KeyEnter}},
		{"cancel esc", Component.Cancel, tea.KeyMsg{Type: tea.KeyEsc}},
		{"cancel ctrl+c", Component.Cancel, tea.KeyMsg{Type: tea.KeyCtrlC}},
		{"next arrow", Component.Next, tea.KeyMsg{Type: tea.KeyDown}},
		{"next ctrl+n", Component.Next, tea.KeyMsg{Type: tea.KeyCtrlN}},
		{"prev arrow", Component.Prev, tea.KeyMsg{Type: tea.KeyUp}},
		{"clear", Component.ClearInput, tea.KeyMsg{Type: tea.KeyCtrlU}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, key.Matches(tc.msg, tc.binding))
		})
	}
}

func TestLettersStayTypable(t *testing.T) {
	j := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}}
	require.False(t, key.Matches(j, Component.Next))
	require.False(t, key.Matches(j, Component.Confirm))
}
