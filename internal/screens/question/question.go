// Package question is the screen that asks one catalog item at a time.
package question

import (
	"context"
	"errors"
	"fmt"
	"image"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/insight"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/router"
	"github.com/abhisek/mandela/internal/screen"
	"github.com/abhisek/mandela/internal/screens/summary"
	"github.com/abhisek/mandela/internal/tracker"
	"github.com/abhisek/mandela/internal/ui/layout"
)

// Deps are the services shared by the quiz screens.
type Deps struct {
	Tracker *tracker.Tracker
	Assets  assets.Provider  // nil shows the not-found notice everywhere
	Insight *insight.Service // nil disables deep dives
}

// feedback is shown after an answer until the player moves on.
type feedback struct {
	Item   catalog.Item
	Index  int
	Record quiz.AnswerRecord
}

// QuestionScreen presents the current item of a session.
type QuestionScreen struct {
	deps     Deps
	sess     *quiz.Session
	pictures map[string]image.Image
	loading  bool
	selected int
	feedback *feedback
	errMsg   string
}

var _ screen.Screen = (*QuestionScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionScreen)(nil)
var _ screen.StatusProvider = (*QuestionScreen)(nil)

// New creates a screen for sess. The caller records the session start.
func New(deps Deps, sess *quiz.Session) *QuestionScreen {
	return &QuestionScreen{deps: deps, sess: sess}
}

func (s *QuestionScreen) Init() tea.Cmd {
	return s.loadPictures()
}

func (s *QuestionScreen) Title() string {
	return "Quiz"
}

func (s *QuestionScreen) Status() string {
	st := s.sess.State()
	return fmt.Sprintf("Score %d/%d", st.Score, len(st.Log))
}

func (s *QuestionScreen) KeyHints() []layout.KeyHint {
	if s.feedback != nil {
		return []layout.KeyHint{{Key: "any key", Description: "Continue"}}
	}
	item, _, err := s.sess.CurrentItem()
	if err != nil {
		return nil
	}
	return hintsFor(item)
}

func (s *QuestionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case picturesLoadedMsg:
		if _, index, _ := s.sess.CurrentItem(); msg.Index == index {
			s.pictures = msg.Pictures
			s.loading = false
		}
		return s, nil

	case tea.KeyMsg:
		if s.feedback != nil {
			return s.dismissFeedback()
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuestionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	item, _, err := s.sess.CurrentItem()
	if err != nil {
		return s, s.toSummary()
	}
	domain := item.Domain()

	switch {
	case key.Matches(msg, keys.Prev):
		if s.selected > 0 {
			s.selected--
		}
	case key.Matches(msg, keys.Next):
		if s.selected < len(domain)-1 {
			s.selected++
		}
	case key.Matches(msg, keys.Submit):
		return s.submit(domain[s.selected])
	default:
		for _, hk := range hotkeys {
			if key.Matches(msg, hk.binding) {
				return s.submit(hk.choice)
			}
		}
	}
	return s, nil
}

func (s *QuestionScreen) submit(choice catalog.Choice) (screen.Screen, tea.Cmd) {
	item, index, err := s.sess.CurrentItem()
	if err != nil {
		return s, s.toSummary()
	}

	rec, err := s.deps.Tracker.Submit(context.Background(), s.sess, choice)
	if err != nil {
		if errors.Is(err, quiz.ErrInvalidChoice) {
			s.errMsg = invalidChoiceHint(item)
			return s, nil
		}
		s.errMsg = err.Error()
		return s, nil
	}

	s.errMsg = ""
	s.feedback = &feedback{Item: item, Index: index, Record: rec}
	return s, nil
}

func invalidChoiceHint(item catalog.Item) string {
	if item.Kind == catalog.BooleanChoice {
		return "This one is True or False: press T or F."
	}
	return "Pick one of the two pictures: press 1 or 2."
}

func (s *QuestionScreen) dismissFeedback() (screen.Screen, tea.Cmd) {
	s.feedback = nil
	s.selected = 0
	if s.sess.Phase() == quiz.Complete {
		return s, s.toSummary()
	}
	return s, s.loadPictures()
}

func (s *QuestionScreen) toSummary() tea.Cmd {
	deps, sess := s.deps, s.sess
	next := summary.New(sess, summary.Options{
		Tracker: deps.Tracker,
		Assets:  deps.Assets,
		Insight: deps.Insight,
		Restart: func() screen.Screen { return New(deps, sess) },
	})
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

// loadPictures decodes the current item's images off the UI goroutine.
func (s *QuestionScreen) loadPictures() tea.Cmd {
	item, index, err := s.sess.CurrentItem()
	if err != nil || s.deps.Assets == nil {
		s.pictures = nil
		return nil
	}
	s.loading = true
	s.pictures = nil
	provider := s.deps.Assets
	size := assets.SizeFor(item.Kind)
	refs := item.Assets()
	return func() tea.Msg {
		imgs, _ := assets.LoadAll(context.Background(), provider, refs, size)
		return picturesLoadedMsg{Index: index, Pictures: imgs}
	}
}
