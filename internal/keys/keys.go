// Package keys contains keybinding definitions.
//
// Sheet navigation and command chords are owned by the command registry;
// the bindings here cover the fixed keys of overlay components, where
// letters must stay typable and only control keys carry meaning.
package keys

import "github.com/charmbracelet/bubbles/key"

// OverlayKeyMap defines the keybindings shared by overlay components
// (palette, cell editor, popups).
type OverlayKeyMap struct {
	Confirm    key.Binding
	Cancel     key.Binding
	Next       key.Binding
	Prev       key.Binding
	ClearInput key.Binding
}

// Component is the shared overlay keymap.
var Component = OverlayKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
	Next: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓/ctrl+n", "next"),
	),
	Prev: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑/ctrl+p", "previous"),
	),
	ClearInput: key.NewBinding(
		key.WithKeys("ctrl+u"),
		key.WithHelp("ctrl+u", "clear input"),
	),
}
