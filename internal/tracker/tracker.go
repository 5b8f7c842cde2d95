// Package tracker records quiz activity alongside session transitions.
// Recording failures are logged and never surface to the player.
package tracker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/events"
	"github.com/abhisek/mandela/internal/metrics"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/store"
)

// Session sources.
const (
	SourceTUI      = "tui"
	SourceCLI      = "cli"
	SourceHTTP     = "http"
	SourceTelegram = "telegram"
)

// Options wires the sinks. Every field is optional.
type Options struct {
	Repo    store.EventRepo
	Bus     events.Publisher
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Tracker drives sessions and fans each transition out to its sinks.
type Tracker struct {
	source  string
	repo    store.EventRepo
	bus     events.Publisher
	metrics *metrics.Metrics
	log     *zap.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// New creates a tracker that tags everything with source.
func New(source string, opts Options) *Tracker {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		source:   source,
		repo:     opts.Repo,
		bus:      opts.Bus,
		metrics:  opts.Metrics,
		log:      log.With(zap.String("source", source)),
		lastSeen: make(map[string]time.Time),
	}
}

// Source returns the tag recorded with every event.
func (t *Tracker) Source() string { return t.source }

// Start records a new (or freshly created) session.
func (t *Tracker) Start(ctx context.Context, s *quiz.Session) {
	t.touch(s.ID)
	t.log.Info("session started", zap.String("session", s.ID))

	if t.metrics != nil {
		t.metrics.SessionsStarted.WithLabelValues(t.source).Inc()
	}
	t.session(ctx, s, store.ActionStart, events.EventTypeSessionStarted)
}

// Submit answers the current item and records the outcome.
func (t *Tracker) Submit(ctx context.Context, s *quiz.Session, choice catalog.Choice) (quiz.AnswerRecord, error) {
	a, err := s.Answer(choice)
	if err != nil {
		return a.Record, err
	}
	t.answered(ctx, s, a)
	return a.Record, nil
}

// SubmitAt answers item index if it is still current.
func (t *Tracker) SubmitAt(ctx context.Context, s *quiz.Session, index int, choice catalog.Choice) (quiz.AnswerRecord, error) {
	a, err := s.AnswerAt(index, choice)
	if err != nil {
		return a.Record, err
	}
	t.answered(ctx, s, a)
	return a.Record, nil
}

// Restart resets the session and records the restart.
func (t *Tracker) Restart(ctx context.Context, s *quiz.Session) {
	s.Restart()
	t.touch(s.ID)
	t.log.Info("session restarted", zap.String("session", s.ID))

	if t.metrics != nil {
		t.metrics.Restarts.WithLabelValues(t.source).Inc()
	}
	t.session(ctx, s, store.ActionRestart, events.EventTypeSessionRestarted)
}

// Forget drops per-session bookkeeping.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	delete(t.lastSeen, id)
	t.mu.Unlock()
}

// SetActive reports the number of live sessions.
func (t *Tracker) SetActive(n int) {
	if t.metrics != nil {
		t.metrics.ActiveSessions.Set(float64(n))
	}
}

func (t *Tracker) answered(ctx context.Context, s *quiz.Session, a quiz.Answered) {
	rec, index := a.Record, a.Index
	elapsed := t.touch(s.ID)
	t.log.Debug("answer submitted",
		zap.String("session", s.ID),
		zap.String("item", rec.ItemID),
		zap.String("choice", string(rec.Choice)),
		zap.Bool("correct", rec.WasCorrect),
	)

	if t.metrics != nil {
		t.metrics.ObserveAnswer(rec.ItemID, rec.WasCorrect)
	}
	if t.repo != nil {
		err := t.repo.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID: s.ID,
			ItemID:    rec.ItemID,
			ItemIndex: index,
			Choice:    string(rec.Choice),
			Correct:   rec.WasCorrect,
			TimeMs:    elapsed.Milliseconds(),
		})
		if err != nil {
			t.log.Warn("record answer", zap.Error(err))
		}
	}
	if t.bus != nil {
		ev := events.NewAnswerEvent(s.ID, t.source, rec.ItemID, index, string(rec.Choice), rec.WasCorrect)
		if err := t.bus.PublishAnswer(ctx, ev); err != nil {
			t.log.Warn("publish answer", zap.Error(err))
		}
	}

	if a.Completed {
		st := a.State
		t.log.Info("session completed",
			zap.String("session", s.ID),
			zap.Int("score", st.Score),
			zap.Int("total", s.Catalog.Len()),
		)
		if t.metrics != nil {
			t.metrics.ObserveCompletion(t.source, st.Score, s.Catalog.Len())
		}
		t.sessionAt(ctx, s, st, store.ActionComplete, events.EventTypeSessionCompleted)
	}
}

func (t *Tracker) session(ctx context.Context, s *quiz.Session, action string, typ events.EventType) {
	t.sessionAt(ctx, s, s.State(), action, typ)
}

// sessionAt records a session event for the state snapshot st.
func (t *Tracker) sessionAt(ctx context.Context, s *quiz.Session, st quiz.State, action string, typ events.EventType) {
	total := s.Catalog.Len()

	if t.repo != nil {
		data := store.SessionEventData{
			SessionID: s.ID,
			Source:    t.source,
			Action:    action,
			Score:     st.Score,
			Answered:  len(st.Log),
			Total:     total,
		}
		if action == store.ActionComplete {
			data.DurationSecs = int(time.Since(s.StartedAt).Seconds())
		}
		if err := t.repo.AppendSessionEvent(ctx, data); err != nil {
			t.log.Warn("record session event", zap.String("action", action), zap.Error(err))
		}
	}
	if t.bus != nil {
		ev := events.NewSessionEvent(typ, s.ID, t.source, st.Score, len(st.Log), total)
		if err := t.bus.PublishSession(ctx, ev); err != nil {
			t.log.Warn("publish session event", zap.String("action", action), zap.Error(err))
		}
	}
}

// touch stamps id and returns the time since the previous stamp.
func (t *Tracker) touch(id string) time.Duration {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.lastSeen[id]
	t.lastSeen[id] = now
	if !ok {
		return 0
	}
	return now.Sub(prev)
}
