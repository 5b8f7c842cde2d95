package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/config"
	"github.com/abhisek/mandela/internal/metrics"
	"github.com/abhisek/mandela/internal/quiz"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, cfg config.Server) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg.Mode = gin.TestMode
	srv := New(Options{
		Config:   cfg,
		Registry: quiz.NewRegistry(catalog.Default()),
		Assets:   assets.NewFileProvider(dir),
		Metrics:  metrics.New(),
	})
	return srv, dir
}

func do(t *testing.T, srv *Server, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if ct := rec.Header().Get("Content-Type"); ct == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func createSession(t *testing.T, srv *Server) stateView {
	t.Helper()
	rec, env := do(t, srv, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var st stateView
	require.NoError(t, json.Unmarshal(env.Data, &st))
	return st
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{})
	rec, env := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Message)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestCatalogHidesAnswers(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{})
	rec, env := do(t, srv, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.NotContains(t, string(env.Data), "correct_answer")
	assert.NotContains(t, string(env.Data), "explanation")

	var data struct {
		Items []itemView `json:"items"`
		Total int        `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 4, data.Total)
	assert.Equal(t, "Coca Cola Logo", data.Items[0].Title)
	assert.Equal(t, "Choose Option 1", data.Items[0].Choice[0].Label)
	assert.Len(t, data.Items[3].Assets, 1)
}

func TestFullQuiz(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{})
	st := createSession(t, srv)
	require.NotNil(t, st.Question)
	assert.Equal(t, "Question 1: Coca Cola Logo", st.Question.Heading)
	assert.Equal(t, "in_progress", st.Phase)

	base := "/api/sessions/" + st.SessionID

	// Summary is not available mid-quiz.
	rec, _ := do(t, srv, http.MethodGet, base+"/summary", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	for _, choice := range []string{"A", "2", "option 1", "false"} {
		rec, env := do(t, srv, http.MethodPost, base+"/answers", answerRequest{Choice: choice})
		require.Equal(t, http.StatusOK, rec.Code, string(env.Data))
		var ans answerView
		require.NoError(t, json.Unmarshal(env.Data, &ans))
		assert.True(t, ans.Record.WasCorrect, choice)
	}

	rec, _ = do(t, srv, http.MethodGet, base+"/question", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, srv, http.MethodPost, base+"/answers", answerRequest{Choice: "A"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env := do(t, srv, http.MethodGet, base+"/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sum summaryView
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, "Quiz Complete! Your Score: 4/4", sum.Heading)
	require.Len(t, sum.Feedback, 4)
	assert.Equal(t, "Option 2", sum.Feedback[1].CorrectLabel)
	assert.Equal(t, "/api/assets/oreo_double_stuf.jpg", sum.Feedback[1].CorrectAsset)

	rec, env = do(t, srv, http.MethodPost, base+"/restart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var restarted stateView
	require.NoError(t, json.Unmarshal(env.Data, &restarted))
	assert.Equal(t, 0, restarted.Score)
	assert.Equal(t, 0, restarted.Answered)
	require.NotNil(t, restarted.Question)
	assert.Equal(t, 0, restarted.Question.Index)
}

func TestAnswerErrors(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{})
	st := createSession(t, srv)
	base := "/api/sessions/" + st.SessionID

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing choice", map[string]string{}, http.StatusBadRequest},
		{"garbage", answerRequest{Choice: "maybe"}, http.StatusBadRequest},
		{"boolean on paired item", answerRequest{Choice: "True"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodPost, base+"/answers", tt.body)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, tt.want, env.Code)
		})
	}

	// State is unchanged after rejected answers.
	rec, env := do(t, srv, http.MethodGet, base+"/question", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var q questionView
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, 0, q.Index)
}

func TestUnknownAndDeletedSession(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{})
	rec, _ := do(t, srv, http.MethodGet, "/api/sessions/nope/question", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	st := createSession(t, srv)
	rec, _ = do(t, srv, http.MethodDelete, "/api/sessions/"+st.SessionID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, srv, http.MethodDelete, "/api/sessions/"+st.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssets(t *testing.T) {
	srv, dir := newTestServer(t, config.Server{})

	f, err := os.Create(filepath.Join(dir, "seahorse_emoji.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	require.NoError(t, f.Close())

	rec, _ := do(t, srv, http.MethodGet, "/api/assets/seahorse_emoji.png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec, _ = do(t, srv, http.MethodGet, "/api/assets/seahorse_emoji.png?w=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 5, 5), img.Bounds())

	rec, env := do(t, srv, http.MethodGet, "/api/assets/missing.jpg", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, assets.NotFoundText, env.Message)

	rec, _ = do(t, srv, http.MethodGet, "/api/assets/seahorse_emoji.png?w=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{RateLimit: 2, RateWindow: time.Hour})
	t.Cleanup(func() { close(srv.done) })

	for i := 0; i < 2; i++ {
		rec, _ := do(t, srv, http.MethodGet, "/api/catalog", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec, env := do(t, srv, http.MethodGet, "/api/catalog", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "too many requests", env.Message)

	// Health is outside the limited group.
	rec, _ = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, config.Server{})
	createSession(t, srv)

	rec, _ := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mandela_sessions_started_total{source="http"} 1`)
	assert.Contains(t, rec.Body.String(), `endpoint="/api/sessions"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(quiz.ErrInvalidChoice))
	assert.Equal(t, http.StatusNotFound, statusFor(quiz.ErrSessionNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(quiz.ErrInvalidState))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
