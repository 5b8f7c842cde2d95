// Package history lists past quiz sessions from the event store.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/router"
	"github.com/abhisek/mandela/internal/screen"
	"github.com/abhisek/mandela/internal/store"
	"github.com/abhisek/mandela/internal/ui/layout"
	"github.com/abhisek/mandela/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Sessions []store.SessionSummary
	Err      error
}

type answersLoadedMsg struct {
	SessionID string
	Answers   []store.AnswerEvent
	Err       error
}

// HistoryScreen displays past sessions and their answers.
type HistoryScreen struct {
	eventRepo store.EventRepo
	catalog   *catalog.Catalog
	sessions  []store.SessionSummary
	answers   map[string][]store.AnswerEvent // sessionID → answers
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen. cat resolves item titles.
func New(eventRepo store.EventRepo, cat *catalog.Catalog) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		catalog:   cat,
		answers:   make(map[string][]store.AnswerEvent),
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		sessions, err := repo.QuerySessionSummaries(context.Background(), store.QueryOpts{Limit: historyLimit})
		return historyLoadedMsg{Sessions: sessions, Err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Answers"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
		}
		s.loaded = true
		return s, nil

	case answersLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.answers[msg.SessionID] = msg.Answers
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			return s, s.toggle()
		}
	}
	return s, nil
}

func (s *HistoryScreen) toggle() tea.Cmd {
	if len(s.sessions) == 0 {
		return nil
	}
	s.expanded[s.selected] = !s.expanded[s.selected]
	id := s.sessions[s.selected].SessionID
	if _, ok := s.answers[id]; ok || !s.expanded[s.selected] {
		return nil
	}
	repo := s.eventRepo
	return func() tea.Msg {
		answers, err := repo.QueryAnswers(context.Background(), id)
		return answersLoadedMsg{SessionID: id, Answers: answers, Err: err}
	}
}

var (
	notice      = lipgloss.NewStyle().Foreground(theme.TextDim).Align(lipgloss.Center).MarginTop(2)
	rowStyle    = lipgloss.NewStyle().Foreground(theme.Text)
	answerStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
)

func (s *HistoryScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return notice.Width(width).Foreground(theme.Error).Render("Error: " + s.errMsg)
	case !s.loaded:
		return notice.Width(width).Render("Loading history...")
	case len(s.sessions) == 0:
		return notice.Width(width).Italic(true).Render("No quizzes yet. How good is your memory?")
	}

	lines := []string{""}
	for i, sess := range s.sessions {
		row := rowStyle.Render("  " + sessionLine(sess))
		if i == s.selected {
			row = theme.Selected.Render("> " + sessionLine(sess))
		}
		lines = append(lines, layout.Center(width, row))
		if s.expanded[i] {
			lines = append(lines, s.answerLines(width, sess.SessionID)...)
		}
	}
	return strings.Join(lines, "\n")
}

func sessionLine(sess store.SessionSummary) string {
	date := sess.StartedAt.Local().Format("Jan 02, 2006 15:04")
	secs := int(sess.Duration.Seconds())
	result := fmt.Sprintf("%d/%d", sess.Score, sess.Total)
	if !sess.Completed() {
		result = fmt.Sprintf("unfinished (%d questions)", sess.Total)
	}
	line := fmt.Sprintf("%s  %-8s %d:%02d  %s", date, sess.Source, secs/60, secs%60, result)
	if sess.Restarts > 0 {
		line += fmt.Sprintf("  ↻%d", sess.Restarts)
	}
	return line
}

// answerLines lists a session's answers, or a placeholder while they load.
func (s *HistoryScreen) answerLines(width int, sessionID string) []string {
	answers, ok := s.answers[sessionID]
	switch {
	case !ok:
		return []string{layout.Center(width, theme.Hint.Render("Loading answers..."))}
	case len(answers) == 0:
		return []string{layout.Center(width, theme.Hint.Render("No answers recorded"))}
	}

	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		title := a.ItemID
		if it, ok := s.catalog.Lookup(a.ItemID); ok {
			title = it.Title()
		}
		mark := theme.Correct.Render("✓")
		if !a.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		text := fmt.Sprintf("%d. %s: %s ", a.ItemIndex+1, title, catalog.Choice(a.Choice).Label())
		lines = append(lines, layout.Center(width, answerStyle.Render(text)+mark))
	}
	return lines
}
