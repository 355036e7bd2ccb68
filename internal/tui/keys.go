package tui

import "github.com/charmbracelet/bubbles/key"

type timerKeyMap struct {
	Pause   key.Binding
	Finish  key.Binding
	Abandon key.Binding
	Relax   key.Binding
	Skip    key.Binding
	Again   key.Binding
	Task    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

var timerKeys = timerKeyMap{
	Pause: key.NewBinding(
		key.WithKeys(" ", "p"),
		key.WithHelp("space", "pause/resume"),
	),
	Finish: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "finish now"),
	),
	Abandon: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "abandon"),
	),
	Relax: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "relax"),
	),
	Skip: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "skip relax"),
	),
	Again: key.NewBinding(
		key.WithKeys("enter", "n"),
		key.WithHelp("enter", "next pomodoro"),
	),
	Task: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "switch task"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit (keeps a running session open)"),
	),
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Finish, k.Abandon, k.Relax, k.Skip, k.Help, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Finish, k.Abandon},
		{k.Relax, k.Skip, k.Again},
		{k.Task, k.Help, k.Quit},
	}
}

type boardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Pomodoro key.Binding
	Quit     key.Binding
}

var boardKeys = boardKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("d", " "),
		key.WithHelp("d", "done/undone"),
	),
	Pomodoro: key.NewBinding(
		key.WithKeys("p", "enter"),
		key.WithHelp("p", "start pomodoro"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k boardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Pomodoro, k.Quit}
}

func (k boardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
