package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	tab    key.Binding
	enter  key.Binding
	esc    key.Binding
	submit key.Binding
	quit   key.Binding
}

var keys = keyMap{
	tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "focus")),
	enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick files")),
	esc:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	submit: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "upload")),
	quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
