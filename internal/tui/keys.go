package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
)

// formKeys holds key bindings while editing the form.
type formKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Quit   key.Binding
}

// ShortHelp returns the form bindings for the help bar.
func (k formKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Quit}
}

// FullHelp returns the form bindings grouped for expanded help.
func (k formKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev},
		{k.Submit, k.Quit},
	}
}

// alertKeys holds key bindings while a blocking alert is shown.
type alertKeys struct {
	Dismiss key.Binding
	Quit    key.Binding
}

// ShortHelp returns the alert bindings for the help bar.
func (k alertKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Dismiss}
}

// FullHelp returns the alert bindings grouped for expanded help.
func (k alertKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Dismiss}}
}

// FormKeyMap returns the key bindings for editing.
func FormKeyMap() formKeys {
	return formKeys{
		Next: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab/↓", "next field"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab/↑", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter", "ctrl+s"),
			key.WithHelp("enter", "submit"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// AlertKeyMap returns the key bindings for a blocking alert.
func AlertKeyMap() alertKeys {
	return alertKeys{
		Dismiss: key.NewBinding(
			key.WithKeys("enter", "esc", " "),
			key.WithHelp("enter", "ok"),
		),
		// Quit stays available so an alert can never trap the terminal.
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// HelpBindings returns the help.KeyMap for the current screen.
func HelpBindings(alert bool) help.KeyMap {
	if alert {
		return AlertKeyMap()
	}
	return FormKeyMap()
}
