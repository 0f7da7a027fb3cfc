package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevMachine key.Binding
	NextMachine key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Size        key.Binding
	Project     key.Binding
	Complete    key.Binding
	Accordion   key.Binding
	Expand      key.Binding
	Refresh     key.Binding
	Dismiss     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PrevMachine: key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←/h", "prev machine")),
		NextMachine: key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("→/l", "next machine")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle item")),
		Size:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cycle size")),
		Project:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "project number")),
		Complete:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "complete item")),
		Accordion:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "items/completed")),
		Expand:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand/collapse")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refetch")),
		Dismiss:     key.NewBinding(key.WithKeys("enter", "esc"), key.WithHelp("enter/esc", "dismiss")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextMachine, k.Toggle, k.Size, k.Project, k.Complete, k.Accordion, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevMachine, k.NextMachine, k.Refresh},
		{k.Up, k.Down, k.Toggle, k.Size},
		{k.Project, k.Complete, k.Accordion, k.Expand},
		{k.Help, k.Quit},
	}
}

type noticeKeyMap struct {
	keyMap
}

func (k noticeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss}
}

func (k noticeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Dismiss}}
}
