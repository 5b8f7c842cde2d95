// Package theme holds the colours and lipgloss styles of the terminal quiz.
package theme

import (
	"charm.land/lipgloss/v2"
)

// Newsprint greys with crimson for the "false memory" accent.
var (
	Primary   = lipgloss.Color("#E11D48")
	Secondary = lipgloss.Color("#0EA5E9")
	Accent    = lipgloss.Color("#F59E0B")
	Success   = lipgloss.Color("#22C55E")
	Error     = lipgloss.Color("#F43F5E")
	Text      = lipgloss.Color("#F8FAFC")
	TextDim   = lipgloss.Color("#94A3B8")
	BgDark    = lipgloss.Color("#111827")
	BgCard    = lipgloss.Color("#1F2937")
	Border    = lipgloss.Color("#374151")
)

var (
	base    = lipgloss.NewStyle()
	rounded = base.Border(lipgloss.RoundedBorder()).BorderForeground(Border)
)

// Text styles.
var (
	Title    = base.Bold(true).Foreground(Primary).Align(lipgloss.Center)
	Subtitle = base.Foreground(TextDim).Align(lipgloss.Center)
	Body     = base.Foreground(Text)
	Hint     = base.Foreground(TextDim).Italic(true)
)

// Answer and selection styles.
var (
	Selected   = base.Bold(true).Foreground(Primary)
	Unselected = base.Foreground(Text)
	Correct    = base.Bold(true).Foreground(Success)
	Incorrect  = base.Bold(true).Foreground(Error)
)

// Picture frames. PictureMissing renders the not-found notice in place of
// an image.
var (
	PictureFrame   = rounded
	PictureMissing = base.Italic(true).Foreground(Error).Align(lipgloss.Center, lipgloss.Center)
)

// Buttons.
var (
	ButtonActive   = base.Bold(true).Foreground(Text).Background(Primary).Padding(0, 2)
	ButtonInactive = base.Foreground(Text).Background(BgCard).Padding(0, 2)
)

// Bar is the style of the header and footer bars.
var Bar = rounded.Background(BgCard)
