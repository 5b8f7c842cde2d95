package tracker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/events"
	"github.com/abhisek/mandela/internal/metrics"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/store"
)

type fixture struct {
	tracker *Tracker
	st      *store.Store
	bus     *events.MockPublisher
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	f := fixture{st: st, bus: &events.MockPublisher{}, metrics: metrics.New()}
	f.tracker = New(SourceHTTP, Options{
		Repo:    st.EventRepo(),
		Bus:     f.bus,
		Metrics: f.metrics,
	})
	return f
}

func TestFullSessionIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := quiz.NewSession("s1", catalog.Default())

	f.tracker.Start(ctx, s)
	for _, c := range []catalog.Choice{catalog.ChoiceA, catalog.ChoiceA, catalog.ChoiceA, catalog.ChoiceFalse} {
		_, err := f.tracker.Submit(ctx, s, c)
		require.NoError(t, err)
	}

	// Oreo was answered wrong.
	assert.Equal(t, 3, s.State().Score)

	answers, err := f.st.EventRepo().QueryAnswers(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, answers, 4)
	assert.Equal(t, "oreo_double_stuf", answers[1].ItemID)
	assert.False(t, answers[1].Correct)
	assert.Equal(t, 3, answers[3].ItemIndex)

	sums, err := f.st.EventRepo().QuerySessionSummaries(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.True(t, sums[0].Completed())
	assert.Equal(t, 3, sums[0].Score)
	assert.Equal(t, SourceHTTP, sums[0].Source)

	assert.Equal(t, []events.EventType{events.EventTypeSessionStarted, events.EventTypeSessionCompleted}, f.bus.Types())
	assert.Len(t, f.bus.Answers, 4)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SessionsCompleted.WithLabelValues(SourceHTTP)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Answers.WithLabelValues("oreo_double_stuf", "false")))
}

func TestInvalidSubmitRecordsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := quiz.NewSession("s1", catalog.Default())

	_, err := f.tracker.Submit(ctx, s, catalog.ChoiceTrue)
	assert.ErrorIs(t, err, quiz.ErrInvalidChoice)
	assert.Empty(t, f.bus.Answers)

	_, err = f.tracker.SubmitAt(ctx, s, 2, catalog.ChoiceA)
	assert.ErrorIs(t, err, quiz.ErrInvalidState)
	assert.Empty(t, f.bus.Answers)
}

func TestConcurrentSubmitsRecordEachItemOnce(t *testing.T) {
	items := make([]catalog.Item, 50)
	for i := range items {
		items[i] = catalog.Item{
			ID:      fmt.Sprintf("item_%02d", i),
			Kind:    catalog.BooleanChoice,
			AssetA:  fmt.Sprintf("item_%02d.jpg", i),
			Correct: catalog.ChoiceTrue,
		}
	}
	cat := catalog.MustNew(items...)

	for round := 0; round < 50; round++ {
		bus := &events.MockPublisher{}
		m := metrics.New()
		tr := New(SourceHTTP, Options{Bus: bus, Metrics: m})
		s := quiz.NewSession("shared", cat)

		var wg sync.WaitGroup
		for g := 0; g < 60; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = tr.Submit(context.Background(), s, catalog.ChoiceTrue)
			}()
		}
		wg.Wait()

		require.Len(t, bus.Answers, cat.Len())
		for _, ev := range bus.Answers {
			assert.Equal(t, cat.IndexOf(ev.ItemID), ev.ItemIndex, "round %d item %s", round, ev.ItemID)
		}
		require.Equal(t, []events.EventType{events.EventTypeSessionCompleted}, bus.Types(), "round %d", round)
		assert.Equal(t, 50, bus.Sessions[0].Score)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCompleted.WithLabelValues(SourceHTTP)))
	}
}

func TestRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s := quiz.NewSession("s1", catalog.Default())

	f.tracker.Start(ctx, s)
	_, err := f.tracker.SubmitAt(ctx, s, 0, catalog.ChoiceA)
	require.NoError(t, err)
	f.tracker.Restart(ctx, s)

	assert.Equal(t, 0, s.State().Index)
	assert.Equal(t, 1, s.Restarts())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Restarts.WithLabelValues(SourceHTTP)))

	sums, err := f.st.EventRepo().QuerySessionSummaries(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, 1, sums[0].Restarts)
}

func TestSinkFailuresAreNotFatal(t *testing.T) {
	bus := &events.MockPublisher{Err: errors.New("broker down")}
	tr := New(SourceTelegram, Options{Bus: bus})
	s := quiz.NewSession("42", catalog.Default())

	tr.Start(context.Background(), s)
	rec, err := tr.Submit(context.Background(), s, catalog.ChoiceA)
	require.NoError(t, err)
	assert.True(t, rec.WasCorrect)
}

func TestNoSinks(t *testing.T) {
	tr := New(SourceCLI, Options{})
	s := quiz.NewSession("local", catalog.Default())
	tr.Start(context.Background(), s)
	tr.SetActive(3)
	_, err := tr.Submit(context.Background(), s, catalog.ChoiceB)
	require.NoError(t, err)
	tr.Forget("local")
	assert.Equal(t, SourceCLI, tr.Source())
}
