package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the browser's key bindings.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding
	Toggle   key.Binding
	Open     key.Binding
	Close    key.Binding
	OpenAll  key.Binding
	CloseAll key.Binding
	Search   key.Binding
	Pick     key.Binding
	DropInto key.Binding
	DropHere key.Binding
	Copy     key.Binding
	New      key.Binding
	Save     key.Binding
	Detail   key.Binding
	Cancel   key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Toggle:   key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "toggle")),
		Open:     key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "open")),
		Close:    key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "close")),
		OpenAll:  key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "open all")),
		CloseAll: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "close all")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Pick:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		DropInto: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "drop into")),
		DropHere: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "drop before")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		New:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new child")),
		Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
		Detail:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "details")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// footerBindings are shown in the status line.
func (k keyMap) footerBindings() []key.Binding {
	return []key.Binding{k.Toggle, k.Search, k.Pick, k.DropInto, k.DropHere, k.New, k.Save, k.Quit}
}
