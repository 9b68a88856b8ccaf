package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	labelStyle = lipgloss.NewStyle().Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"})

	toastStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
			Padding(0, 1)
)

// ButtonStyle returns the submit control style, dimmed when disabled.
func ButtonStyle(focused, disabled bool) lipgloss.Style {
	s := lipgloss.NewStyle().Padding(0, 3).Foreground(lipgloss.Color("15"))
	switch {
	case disabled:
		return s.Background(lipgloss.AdaptiveColor{Light: "250", Dark: "240"})
	case focused:
		return s.Background(lipgloss.Color("#e6194c")).Bold(true)
	default:
		return s.Background(lipgloss.Color("#FF2056"))
	}
}

// AlertBox returns the bordered style for blocking alerts.
func AlertBox() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"}).
		Padding(1, 2)
}
