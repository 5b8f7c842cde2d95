package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.SessionsStarted.WithLabelValues("tui").Inc()
	m.ObserveAnswer("coca_cola_logo", false)
	m.ObserveAnswer("coca_cola_logo", false)
	m.ObserveAnswer("coca_cola_logo", true)
	m.ObserveCompletion("tui", 3, 4)
	m.ObserveCompletion("http", 0, 0)
	m.ObserveRequest("GET", "/health", 200, 0.001)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsStarted.WithLabelValues("tui")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Answers.WithLabelValues("coca_cola_logo", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Answers.WithLabelValues("coca_cola_logo", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsCompleted.WithLabelValues("http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues("GET", "/health", "200")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveAnswer("seahorse_emoji", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `mandela_answers_total{correct="true",item="seahorse_emoji"} 1`), body)
}
