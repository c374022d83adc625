package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up         key.Binding
	down       key.Binding
	left       key.Binding
	right      key.Binding
	enter      key.Binding
	esc        key.Binding
	tab        key.Binding
	backtab    key.Binding
	quit       key.Binding
	reload     key.Binding
	sync       key.Binding
	edit       key.Binding
	clear      key.Binding
	discard    key.Binding
	discardAll key.Binding
	keepLocal  key.Binding
	takeServer key.Binding
	yes        key.Binding
	no         key.Binding
}

var keys = keyMap{
	up:         key.NewBinding(key.WithKeys("up", "k")),
	down:       key.NewBinding(key.WithKeys("down", "j")),
	left:       key.NewBinding(key.WithKeys("left", "h")),
	right:      key.NewBinding(key.WithKeys("right", "l")),
	enter:      key.NewBinding(key.WithKeys("enter")),
	esc:        key.NewBinding(key.WithKeys("esc")),
	tab:        key.NewBinding(key.WithKeys("tab")),
	backtab:    key.NewBinding(key.WithKeys("shift+tab")),
	quit:       key.NewBinding(key.WithKeys("q")),
	reload:     key.NewBinding(key.WithKeys("r")),
	sync:       key.NewBinding(key.WithKeys("s")),
	edit:       key.NewBinding(key.WithKeys("e")),
	clear:      key.NewBinding(key.WithKeys("ctrl+d")),
	discard:    key.NewBinding(key.WithKeys("x")),
	discardAll: key.NewBinding(key.WithKeys("X")),
	keepLocal:  key.NewBinding(key.WithKeys("o")),
	takeServer: key.NewBinding(key.WithKeys("t")),
	yes:        key.NewBinding(key.WithKeys("y")),
	no:         key.NewBinding(key.WithKeys("n")),
}
