package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mandela"

// Metrics holds the quiz and HTTP collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	SessionsStarted   *prometheus.CounterVec
	SessionsCompleted *prometheus.CounterVec
	Restarts          *prometheus.CounterVec
	Answers           *prometheus.CounterVec
	FinalScore        *prometheus.HistogramVec
	ActiveSessions    prometheus.Gauge

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		SessionsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Quiz sessions started",
		}, []string{"source"}),
		SessionsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_completed_total",
			Help:      "Quiz sessions that reached the summary",
		}, []string{"source"}),
		Restarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_restarts_total",
			Help:      "Quiz restarts",
		}, []string{"source"}),
		Answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answers submitted per item and outcome",
		}, []string{"item", "correct"}),
		FinalScore: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_score_ratio",
			Help:      "Score divided by catalog length at completion",
			Buckets:   []float64{0, 0.25, 0.5, 0.75, 1},
		}, []string{"source"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory",
		}),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "endpoint"}),
	}

	m.Registry.MustRegister(
		m.SessionsStarted, m.SessionsCompleted, m.Restarts, m.Answers,
		m.FinalScore, m.ActiveSessions, m.RequestCounter, m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAnswer counts one answer.
func (m *Metrics) ObserveAnswer(itemID string, correct bool) {
	m.Answers.WithLabelValues(itemID, strconv.FormatBool(correct)).Inc()
}

// ObserveCompletion counts a completed session and its score ratio.
func (m *Metrics) ObserveCompletion(source string, score, total int) {
	m.SessionsCompleted.WithLabelValues(source).Inc()
	ratio := 0.0
	if total > 0 {
		ratio = float64(score) / float64(total)
	}
	m.FinalScore.WithLabelValues(source).Observe(ratio)
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, seconds float64) {
	m.RequestCounter.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
