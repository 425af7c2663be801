// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifeui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the board viewer. The command
// keys deliberately mirror the wire protocol: the byte sent to the
// simulator is the key itself.
type KeyMap struct {
	Reseed key.Binding // '0' on the wire.
	Step   key.Binding // '1' on the wire.
	Toggle key.Binding // ' ' on the wire.
	Quit   key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Reseed: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "randomize"),
	),
	Step: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "step"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "start/stop"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
