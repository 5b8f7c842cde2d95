// Package app hosts the Bubble Tea program for the terminal quiz.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/router"
	"github.com/abhisek/mandela/internal/screen"
	"github.com/abhisek/mandela/internal/screens/home"
	"github.com/abhisek/mandela/internal/selfupdate"
	"github.com/abhisek/mandela/internal/ui/layout"
)

const updateCheckTimeout = 3 * time.Second

// Options configures the terminal app.
type Options struct {
	Home    home.Options
	Version string
	// Updates is consulted once at startup; nil skips the check.
	Updates *selfupdate.Checker
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	home    *home.HomeScreen
	version string
	updates *selfupdate.Checker
	width   int
	height  int
}

func newAppModel(opts Options) AppModel {
	h := home.New(opts.Home)
	return AppModel{
		router:  router.New(h),
		home:    h,
		version: opts.Version,
		updates: opts.Updates,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.home.Init(), m.checkUpdate())
}

func (m AppModel) checkUpdate() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	checker, version := m.updates, m.version
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), updateCheckTimeout)
		defer cancel()
		res, err := checker.Check(ctx, &selfupdate.CheckInput{Version: version})
		if err != nil || !res.UpdateAvailable {
			return nil
		}
		return home.UpdateAvailableMsg{Version: res.LatestVersion}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case home.UpdateAvailableMsg:
		// Delivered to home even when another screen is on top.
		m.home.Update(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.content())
	v.AltScreen = true
	return v
}

// content renders the whole frame, or "" before the first size message.
func (m AppModel) content() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
	}
	if sp, ok := active.(screen.StatusProvider); ok {
		status = sp.Status()
	}

	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	body := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, body, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		return append(hp.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
