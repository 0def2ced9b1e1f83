package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	Refresh   key.Binding
	PrevDay   key.Binding
	NextDay   key.Binding
	Today     key.Binding
	PickDate  key.Binding
	Subscribe key.Binding
	Debug     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		PrevDay:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		NextDay:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		PickDate:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "go to date")),
		Subscribe: key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "subscribe")),
		Debug:     key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "debug")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Subscribe, k.Refresh, k.PrevDay, k.NextDay, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.PrevDay, k.NextDay, k.Today, k.PickDate},
		{k.Subscribe, k.Refresh, k.Debug, k.Quit},
	}
}
