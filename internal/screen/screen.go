// Package screen defines what the router needs from a view.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mandela/internal/ui/layout"
)

// Screen is one page of the terminal quiz: home, question, summary or
// history. View receives the space left between header and footer.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View(width, height int) string
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider supplies the right side of the header, e.g. "Score 2/4".
type StatusProvider interface {
	Status() string
}
