// Package layout draws the frame around every screen: a header bar with
// the app name, screen title and status, and a footer bar of key hints.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/ui/theme"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// Below these the quiz draws smaller pictures.
	CompactWidthThreshold  = 100
	CompactHeightThreshold = 34
)

const appName = "Mandela"

// KeyHint is one footer entry such as "Esc Back".
type KeyHint struct {
	Key         string
	Description string
}

func IsCompact(width, height int) bool {
	return width < CompactWidthThreshold || height < CompactHeightThreshold
}

func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage fills the terminal with a resize request.
func RenderMinSizeMessage(width, height int) string {
	msg := fmt.Sprintf("Terminal too small!\n\nPlease resize to at\nleast %d x %d\n\nCurrent: %d x %d",
		MinWidth, MinHeight, width, height)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		theme.Body.Align(lipgloss.Center).Render(msg))
}

// RenderHeader puts the app name on the left, title in the middle and
// status (e.g. the running score) on the right.
func RenderHeader(title, status string, width int) string {
	inner := max(width-4, 0)
	third := inner / 3

	left := lipgloss.PlaceHorizontal(third, lipgloss.Left,
		theme.Selected.Render(" "+appName))
	right := lipgloss.PlaceHorizontal(third, lipgloss.Right,
		lipgloss.NewStyle().Foreground(theme.Accent).Render(status+" "))
	center := lipgloss.PlaceHorizontal(max(inner-2*third, 0), lipgloss.Center,
		theme.Body.Render(title))

	return theme.Bar.Width(width).Render(left + center + right)
}

// RenderFooter lists key hints separated by a dim bullet.
func RenderFooter(hints []KeyHint, width int) string {
	keyStyle := theme.Body.Bold(true)
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = keyStyle.Render(h.Key) + " " + theme.Hint.Italic(false).Render(h.Description)
	}
	sep := theme.Hint.Render("  •  ")
	return theme.Bar.Width(width).Render(" " + strings.Join(parts, sep))
}

// RenderFrame stacks header, content and footer, clipping or padding the
// content so the frame is exactly height rows.
func RenderFrame(header, content, footer string, width, height int) string {
	rows := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := lipgloss.NewStyle().Width(width).Height(rows).MaxHeight(rows).Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// Center places s horizontally in width.
func Center(width int, s string) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
