package components

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/ui/theme"
)

// Button is a labelled answer button with a hotkey.
type Button struct {
	Label  string
	Key    string
	Active bool
}

// View renders the button.
func (b Button) View() string {
	label := b.Label
	if b.Key != "" {
		label = "[" + b.Key + "] " + label
	}
	if b.Active {
		return theme.ButtonActive.Render("▸ " + label)
	}
	return theme.ButtonInactive.Render("  " + label)
}

// ButtonRow lays buttons out side by side, gap spaces apart.
func ButtonRow(buttons []Button, gap int) string {
	views := make([]string, 0, len(buttons)*2)
	for i, b := range buttons {
		if i > 0 {
			views = append(views, strings.Repeat(" ", gap))
		}
		views = append(views, b.View())
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, views...)
}
