// Copyright 2026 The Mpvhost Authors
// SPDX-License-Identifier: Apache-2.0

package remoteui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the remote control TUI.
type KeyMap struct {
	TogglePause key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Mute        key.Binding
	Next        key.Binding
	Previous    key.Binding
	Stop        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	TogglePause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "pause"),
	),
	SeekBack: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←", "seek -5s"),
	),
	SeekForward: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→", "seek +5s"),
	),
	VolumeUp: key.NewBinding(
		key.WithKeys("up", "k", "+"),
		key.WithHelp("↑", "volume up"),
	),
	VolumeDown: key.NewBinding(
		key.WithKeys("down", "j", "-"),
		key.WithHelp("↓", "volume down"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mute"),
	),
	Next: key.NewBinding(
		key.WithKeys("n", ">"),
		key.WithHelp("n", "next"),
	),
	Previous: key.NewBinding(
		key.WithKeys("b", "<"),
		key.WithHelp("b", "previous"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
