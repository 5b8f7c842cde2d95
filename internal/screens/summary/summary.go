// Package summary shows the final score with per-item feedback.
package summary

import (
	"context"
	"fmt"
	"image"
	"maps"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/insight"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/router"
	"github.com/abhisek/mandela/internal/screen"
	"github.com/abhisek/mandela/internal/tracker"
	"github.com/abhisek/mandela/internal/ui/components"
	"github.com/abhisek/mandela/internal/ui/layout"
	"github.com/abhisek/mandela/internal/ui/theme"
)

const insightPollInterval = 150 * time.Millisecond

// NoProviderNote is shown when a deep dive is requested without an LLM.
const NoProviderNote = "Deep dive needs an LLM provider. Set llm.provider or an API key such as GEMINI_API_KEY."

// Options wires the summary screen.
type Options struct {
	Tracker *tracker.Tracker
	Assets  assets.Provider
	Insight *insight.Service
	// Restart builds the screen shown after the session is reset.
	Restart func() screen.Screen
}

type picturesLoadedMsg struct {
	Pictures map[string]image.Image
}

type insightPollMsg struct{}

// SummaryScreen displays the final score and detailed feedback.
type SummaryScreen struct {
	sess     *quiz.Session
	opts     Options
	summary  quiz.Summary
	items    []catalog.Item // parallel to summary.Log
	selected int
	pictures map[string]image.Image

	insights map[string]*insight.Insight
	pending  string // item id awaiting an insight
	note     string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

// New creates a summary for a completed session.
func New(sess *quiz.Session, opts Options) *SummaryScreen {
	s := &SummaryScreen{
		sess:     sess,
		opts:     opts,
		insights: make(map[string]*insight.Insight),
	}
	s.summary, _ = sess.Summary()
	for _, rec := range s.summary.Log {
		it, _ := sess.Catalog.Lookup(rec.ItemID)
		s.items = append(s.items, it)
	}
	return s
}

func (s *SummaryScreen) Init() tea.Cmd {
	if s.opts.Assets == nil || len(s.items) == 0 {
		return nil
	}
	provider := s.opts.Assets
	bySize := make(map[assets.Size][]string)
	for _, it := range s.items {
		size := assets.SizeFor(it.Kind)
		bySize[size] = append(bySize[size], it.CorrectAsset())
	}
	return func() tea.Msg {
		pictures := make(map[string]image.Image)
		for size, refs := range bySize {
			imgs, _ := assets.LoadAll(context.Background(), provider, refs, size)
			maps.Copy(pictures, imgs)
		}
		return picturesLoadedMsg{Pictures: pictures}
	}
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) Status() string {
	return fmt.Sprintf("Score %d/%d", s.summary.Score, s.summary.Total)
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Item"},
		{Key: "D", Description: "Deep dive"},
		{Key: "R", Description: quiz.RestartLabel},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case picturesLoadedMsg:
		s.pictures = msg.Pictures
		return s, nil

	case insightPollMsg:
		return s.pollInsight()

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.items)-1 {
				s.selected++
			}
		case "r":
			return s, s.restart()
		case "d":
			return s, s.deepDive()
		case "enter":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) restart() tea.Cmd {
	if s.opts.Tracker != nil {
		s.opts.Tracker.Restart(context.Background(), s.sess)
	} else {
		s.sess.Restart()
	}
	if s.opts.Restart == nil {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	next := s.opts.Restart()
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SummaryScreen) deepDive() tea.Cmd {
	if len(s.items) == 0 {
		return nil
	}
	if s.opts.Insight == nil {
		s.note = NoProviderNote
		return nil
	}
	item := s.items[s.selected]
	if _, ok := s.insights[item.ID]; ok || s.pending != "" {
		return nil
	}
	s.note = ""
	s.pending = item.ID
	s.opts.Insight.Request(context.Background(), item)
	return pollCmd()
}

func pollCmd() tea.Cmd {
	return tea.Tick(insightPollInterval, func(time.Time) tea.Msg { return insightPollMsg{} })
}

func (s *SummaryScreen) pollInsight() (screen.Screen, tea.Cmd) {
	if s.pending == "" || s.opts.Insight == nil {
		return s, nil
	}
	in, err, ok := s.opts.Insight.Consume()
	if !ok {
		return s, pollCmd()
	}
	if err != nil {
		s.note = "Deep dive failed: " + err.Error()
	} else if in != nil {
		s.insights[s.pending] = in
	}
	s.pending = ""
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Title.Render(quiz.SummaryHeading(s.summary))))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, theme.Subtitle.Render(
		fmt.Sprintf("Accuracy %.0f%%", s.summary.Accuracy()*100))))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
	b.WriteString(layout.Center(width, theme.Subtitle.Render(quiz.FeedbackHeading)))
	b.WriteString("\n")
	b.WriteString(layout.Center(width, divider))
	b.WriteString("\n\n")

	if len(s.items) == 0 {
		b.WriteString(layout.Center(width, theme.Hint.Render("No questions in this quiz.")))
	} else {
		list := s.renderList()
		detail := s.renderDetail(min(width-lipgloss.Width(list)-12, 60), height)
		b.WriteString(layout.Center(width, lipgloss.JoinHorizontal(lipgloss.Top, list, "    ", detail)))
	}

	b.WriteString("\n\n")
	b.WriteString(layout.Center(width, components.Button{Label: quiz.RestartLabel, Key: "R", Active: true}.View()))
	return b.String()
}

func (s *SummaryScreen) renderList() string {
	var b strings.Builder
	for i, it := range s.items {
		mark := theme.Correct.Render("✓")
		if !s.summary.Log[i].WasCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		style := theme.Unselected
		prefix := "  "
		if i == s.selected {
			style = theme.Selected
			prefix = "▸ "
		}
		b.WriteString(style.Render(prefix+it.Title()) + " " + mark + "\n")
	}
	return b.String()
}

func (s *SummaryScreen) renderDetail(width, height int) string {
	width = max(width, 20)
	it := s.items[s.selected]
	rec := s.summary.Log[s.selected]
	text := lipgloss.NewStyle().Width(width).Foreground(theme.Text)

	var parts []string
	parts = append(parts, theme.Selected.Render(it.Title()))
	if height >= 30 {
		cols, rows := components.PictureSize(assets.SizeFor(it.Kind), 10)
		caption := quiz.CorrectAnswerLine(it)
		if it.Kind == catalog.BooleanChoice {
			caption = it.Title()
		}
		parts = append(parts, components.Picture{
			Image:   s.pictures[it.CorrectAsset()],
			Columns: cols,
			Rows:    rows,
			Caption: caption,
		}.View())
	}
	parts = append(parts,
		text.Render("Your answer: "+rec.Choice.Label()),
		text.Bold(true).Render(quiz.CorrectAnswerLine(it)),
		text.Render(quiz.ExplanationLine(it)),
	)

	switch in := s.insights[it.ID]; {
	case in != nil:
		parts = append(parts, "",
			theme.Title.Align(lipgloss.Left).Render(in.Headline),
			text.Render(in.WhyMisremember),
			theme.Hint.Width(width).Render(in.FunFact),
		)
	case s.pending == it.ID:
		parts = append(parts, "", theme.Hint.Render("Thinking..."))
	}
	if s.note != "" {
		parts = append(parts, "", theme.Hint.Width(width).Render(s.note))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
