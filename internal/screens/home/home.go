// Package home is the landing screen.
package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/router"
	"github.com/abhisek/mandela/internal/screen"
	"github.com/abhisek/mandela/internal/screens/history"
	"github.com/abhisek/mandela/internal/screens/question"
	"github.com/abhisek/mandela/internal/store"
	"github.com/abhisek/mandela/internal/ui/components"
)

// UpdateAvailableMsg announces a newer release.
type UpdateAvailableMsg struct {
	Version string
}

type stats struct {
	Completed   int
	BestScore   int
	BestTotal   int
	Hardest     string // title of the most missed item
	HardestMiss float64
}

type statsLoadedMsg struct {
	Stats stats
	Err   error
}

// Options wires the home screen.
type Options struct {
	Catalog *catalog.Catalog
	Quiz    question.Deps
	Repo    store.EventRepo // nil hides stats and history
}

// HomeScreen is the main menu.
type HomeScreen struct {
	opts          Options
	menu          components.Menu
	stats         stats
	latestVersion string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ router.Refresher = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(opts Options) *HomeScreen {
	h := &HomeScreen{opts: opts}

	items := []components.MenuItem{
		{Label: "START QUIZ", Shortcut: "s", Action: h.startQuiz},
		{Label: "HISTORY", Shortcut: "h", Action: func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: history.New(opts.Repo, opts.Catalog)}
			}
		}, Disabled: opts.Repo == nil},
		{Label: "QUIT", Shortcut: "q", Action: func() tea.Cmd { return tea.Quit }},
	}
	if opts.Catalog.Len() == 0 {
		items[0].Disabled = true
	}
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) startQuiz() tea.Cmd {
	sess := quiz.NewSession(uuid.NewString(), h.opts.Catalog)
	if h.opts.Quiz.Tracker != nil {
		h.opts.Quiz.Tracker.Start(context.Background(), sess)
	}
	next := question.New(h.opts.Quiz, sess)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Refresh reloads stats when the player returns from a quiz.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	repo, cat := h.opts.Repo, h.opts.Catalog
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		st, err := computeStats(context.Background(), repo, cat)
		return statsLoadedMsg{Stats: st, Err: err}
	}
}

func computeStats(ctx context.Context, repo store.EventRepo, cat *catalog.Catalog) (stats, error) {
	var st stats

	sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{})
	if err != nil {
		return st, err
	}
	for _, s := range sessions {
		if !s.Completed() {
			continue
		}
		st.Completed++
		if st.BestTotal == 0 || s.Accuracy() > float64(st.BestScore)/float64(st.BestTotal) {
			st.BestScore, st.BestTotal = s.Score, s.Total
		}
	}

	items, err := repo.ItemStats(ctx)
	if err != nil {
		return st, err
	}
	for _, is := range items {
		if is.Answers == 0 || is.MissRate() <= st.HardestMiss {
			continue
		}
		st.HardestMiss = is.MissRate()
		st.Hardest = is.ItemID
		if it, ok := cat.Lookup(is.ItemID); ok {
			st.Hardest = it.Title()
		}
	}
	return st, nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.Err == nil {
			h.stats = msg.Stats
		}
		return h, nil
	case UpdateAvailableMsg:
		h.latestVersion = msg.Version
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	compact := height < 26 || width < 90
	cw := contentWidth(width)

	sections := []string{renderBanner(cw, compact)}
	if h.opts.Repo != nil {
		sections = append(sections, renderStatsBar(h.stats, cw, compact))
	}
	sections = append(sections, renderMenu(h.menu, cw, compact))

	if h.opts.Quiz.Insight == nil && !compact {
		sections = append(sections, renderNote("Deep dives are off: set an LLM API key to enable them.", cw))
	}
	if h.latestVersion != "" {
		sections = append(sections, renderNote("New version "+h.latestVersion+" available: run `mandela update`", cw))
	}

	sep := "\n\n"
	if compact {
		sep = "\n"
	}
	return renderFrame(strings.Join(sections, sep), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
