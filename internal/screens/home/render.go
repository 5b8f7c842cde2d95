package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/ui/components"
	"github.com/abhisek/mandela/internal/ui/theme"
)

const bannerFull = `███╗   ███╗ █████╗ ███╗   ██╗██████╗ ███████╗██╗      █████╗ 
████╗ ████║██╔══██╗████╗  ██║██╔══██╗██╔════╝██║     ██╔══██╗
██╔████╔██║███████║██╔██╗ ██║██║  ██║█████╗  ██║     ███████║
██║╚██╔╝██║██╔══██║██║╚██╗██║██║  ██║██╔══╝  ██║     ██╔══██║
██║ ╚═╝ ██║██║  ██║██║ ╚████║██████╔╝███████╗███████╗██║  ██║
╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═══╝╚═════╝ ╚══════╝╚══════╝╚═╝  ╚═╝`

const bannerCompact = "M · A · N · D · E · L · A"

const tagline = "How good is your memory, really?"

// contentWidth returns the shared inner width of every section.
func contentWidth(frameWidth int) int {
	return max(min(frameWidth-6, 66), 20)
}

func renderBanner(cw int, compact bool) string {
	art := bannerFull
	if compact {
		art = bannerCompact
	}
	block := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(art),
		theme.Hint.Render(tagline),
	)
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(block)
}

func renderStatsBar(st stats, cw int, compact bool) string {
	played := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
	best := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)

	bestText := dim.Render("no score yet")
	if st.BestTotal > 0 {
		bestText = best.Render(fmt.Sprintf("★ best %d/%d", st.BestScore, st.BestTotal))
	}

	var line string
	if compact {
		line = fmt.Sprintf("%s  %s", played.Render(fmt.Sprintf("▶%d", st.Completed)), bestText)
	} else {
		line = fmt.Sprintf("%s   %s", played.Render(fmt.Sprintf("▶ %d PLAYED", st.Completed)), bestText)
		if st.Hardest != "" {
			line += "\n" + dim.Render(fmt.Sprintf("Most misremembered: %s (%.0f%% wrong)", st.Hardest, st.HardestMiss*100))
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Border).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

const buttonWidth = 22

// renderMenu draws each entry as a fixed-width button, or as plain lines
// when the terminal is short.
func renderMenu(menu components.Menu, cw int, compact bool) string {
	base := lipgloss.NewStyle().Width(buttonWidth).Align(lipgloss.Center)
	active := base.Bold(true).Foreground(theme.BgDark).Background(theme.Primary)
	normal := base.Foreground(theme.Text)
	if !compact {
		active = active.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Primary)
		normal = normal.Border(lipgloss.RoundedBorder()).BorderForeground(theme.Border)
	}

	disabled := normal.Foreground(theme.Border)

	buttons := make([]string, len(menu.Items))
	for i, item := range menu.Items {
		label := item.Label
		if item.Shortcut != "" && !compact {
			label += " (" + strings.ToUpper(item.Shortcut) + ")"
		}
		switch {
		case item.Disabled:
			buttons[i] = disabled.Render(label)
		case i == menu.Selected:
			buttons[i] = active.Render("▸ " + label)
		default:
			buttons[i] = normal.Render(label)
		}
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(buttons, "\n"))
}

func renderNote(text string, cw int) string {
	return lipgloss.NewStyle().Foreground(theme.TextDim).Width(cw).Align(lipgloss.Center).Render(text)
}

func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
