package summary

import (
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/insight"
	"github.com/abhisek/mandela/internal/llm"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/router"
	"github.com/abhisek/mandela/internal/screen"
	"github.com/abhisek/mandela/internal/tracker"
	"github.com/abhisek/mandela/internal/ui/layout"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// completedSession answers A, A, A, False: three of four correct except
// the oreo item.
func completedSession(t *testing.T) *quiz.Session {
	t.Helper()
	sess := quiz.NewSession("test-session", catalog.Default())
	for _, c := range []catalog.Choice{catalog.ChoiceA, catalog.ChoiceA, catalog.ChoiceA, catalog.ChoiceFalse} {
		if _, err := sess.Submit(c); err != nil {
			t.Fatalf("Submit(%s): %v", c, err)
		}
	}
	return sess
}

type stubScreen struct{}

func (stubScreen) Init() tea.Cmd { return nil }
func (stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return stubScreen{}, nil }
func (stubScreen) View(int, int) string { return "" }
func (stubScreen) Title() string { return "stub" }
func (stubScreen) KeyHints() []layout.KeyHint { return nil }

func TestSummaryScreen_View(t *testing.T) {
	s := New(completedSession(t), Options{})

	view := s.View(120, 40)
	for _, want := range []string{
		"Quiz Complete! Your Score: 3/4",
		"Detailed Feedback",
		"Coca Cola Logo",
		"Seahorse Emoji",
		"Correct Answer: Option 1",
		"Restart Quiz",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if s.Status() != "Score 3/4" {
		t.Errorf("Status = %q", s.Status())
	}
}

func TestSummaryScreen_Selection(t *testing.T) {
	s := New(completedSession(t), Options{})

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	ss := scr.(*SummaryScreen)
	if ss.selected != 3 {
		t.Errorf("selected = %d, want 3 (clamped)", ss.selected)
	}

	scr, _ = ss.Update(keyPress('k'))
	ss = scr.(*SummaryScreen)
	if ss.selected != 2 {
		t.Errorf("selected = %d, want 2", ss.selected)
	}
	if !strings.Contains(ss.View(120, 40), "The peace symbol") {
		t.Error("detail panel should show the selected item's explanation")
	}
}

func TestSummaryScreen_Restart(t *testing.T) {
	sess := completedSession(t)
	restarted := false
	s := New(sess, Options{
		Tracker: tracker.New(tracker.SourceTUI, tracker.Options{}),
		Restart: func() screen.Screen {
			restarted = true
			return stubScreen{}
		},
	})

	_, cmd := s.Update(keyPress('r'))
	if cmd == nil {
		t.Fatal("expected a command on restart")
	}
	if _, ok := cmd().(router.ReplaceScreenMsg); !ok {
		t.Error("expected ReplaceScreenMsg")
	}
	if !restarted {
		t.Error("Restart factory not called")
	}
	st := sess.State()
	if st.Score != 0 || st.Index != 0 || len(st.Log) != 0 {
		t.Errorf("session not reset: %+v", st)
	}
	if sess.Restarts() != 1 {
		t.Errorf("Restarts = %d, want 1", sess.Restarts())
	}
}

func TestSummaryScreen_EnterGoesHome(t *testing.T) {
	s := New(completedSession(t), Options{})
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
}

func TestSummaryScreen_DeepDiveWithoutProvider(t *testing.T) {
	s := New(completedSession(t), Options{})
	_, cmd := s.Update(keyPress('d'))
	if cmd != nil {
		t.Error("expected no command without an insight service")
	}
	if s.note != NoProviderNote {
		t.Errorf("note = %q", s.note)
	}
}

func TestSummaryScreen_DeepDive(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(
		`{"headline":"No dash, ever","why_people_misremember":"Script fonts blur.","fun_fact":"Designed in 1885."}`)})
	s := New(completedSession(t), Options{Insight: insight.NewService(mock, insight.DefaultConfig())})

	_, cmd := s.Update(keyPress('d'))
	if cmd == nil {
		t.Fatal("expected a poll command")
	}
	if s.pending != "coca_cola_logo" {
		t.Errorf("pending = %q", s.pending)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.pending != "" && time.Now().Before(deadline) {
		s.Update(insightPollMsg{})
		time.Sleep(5 * time.Millisecond)
	}
	if s.pending != "" {
		t.Fatal("insight never arrived")
	}
	if !strings.Contains(s.View(120, 40), "No dash, ever") {
		t.Error("view missing insight headline")
	}

	// A second request for the same item is served from the screen.
	if _, cmd := s.Update(keyPress('d')); cmd != nil {
		t.Error("expected no new request for a cached insight")
	}
	if mock.CallCount() != 1 {
		t.Errorf("CallCount = %d, want 1", mock.CallCount())
	}
}

func TestSummaryScreen_EmptyCatalog(t *testing.T) {
	sess := quiz.NewSession("empty", catalog.MustNew())
	s := New(sess, Options{})
	if s.Init() != nil {
		t.Error("expected no picture load for an empty summary")
	}
	view := s.View(80, 24)
	if !strings.Contains(view, "Your Score: 0/0") {
		t.Errorf("unexpected view:\n%s", view)
	}
	if _, cmd := s.Update(keyPress('d')); cmd != nil {
		t.Error("deep dive should be a no-op with no items")
	}
}

func TestSummaryScreen_PicturesSizedByKind(t *testing.T) {
	dir := t.TempDir()
	for _, it := range catalog.Default().Items() {
		f, err := os.Create(filepath.Join(dir, it.CorrectAsset()))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 40, 40))); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}

	s := New(completedSession(t), Options{Assets: assets.NewFileProvider(dir)})
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected a picture load")
	}
	s.Update(cmd())

	for _, it := range s.items {
		img := s.pictures[it.CorrectAsset()]
		if img == nil {
			t.Fatalf("%s: picture not loaded", it.ID)
		}
		want := assets.PairedSize
		if it.Kind == catalog.BooleanChoice {
			want = assets.BooleanSize
		}
		if got := img.Bounds().Size(); got.X != want.W || got.Y != want.H {
			t.Errorf("%s: picture is %v, want %dx%d", it.ID, got, want.W, want.H)
		}
	}
}
