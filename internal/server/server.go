// Package server exposes quiz sessions over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/config"
	"github.com/abhisek/mandela/internal/metrics"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/tracker"
)

// Options wires the server's collaborators. Assets and Metrics are optional.
type Options struct {
	Config   config.Server
	Registry *quiz.Registry
	Tracker  *tracker.Tracker
	Assets   assets.Provider
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Server is the HTTP front-end.
type Server struct {
	cfg      config.Server
	registry *quiz.Registry
	tracker  *tracker.Tracker
	assets   assets.Provider
	metrics  *metrics.Metrics
	log      *zap.Logger

	engine *gin.Engine
	done   chan struct{}
}

// New builds the gin engine and registers all routes.
func New(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tr := opts.Tracker
	if tr == nil {
		tr = tracker.New(tracker.SourceHTTP, tracker.Options{Metrics: opts.Metrics, Logger: log})
	}
	if opts.Config.Mode != "" {
		gin.SetMode(opts.Config.Mode)
	}

	s := &Server{
		cfg:      opts.Config,
		registry: opts.Registry,
		tracker:  tr,
		assets:   opts.Assets,
		metrics:  opts.Metrics,
		log:      log,
		done:     make(chan struct{}),
	}
	s.engine = s.buildEngine()
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) buildEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(s.log), Secure())

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "accept", "origin", "Cache-Control", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if s.metrics != nil {
		r.Use(Metrics(s.metrics))
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	r.GET("/health", s.health)

	api := r.Group("/api")
	if s.cfg.RateLimit > 0 && s.cfg.RateWindow > 0 {
		api.Use(RateLimiter(s.cfg.RateLimit, s.cfg.RateWindow, s.done))
	}
	{
		api.GET("/catalog", s.listCatalog)
		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id/question", s.currentQuestion)
		api.POST("/sessions/:id/answers", s.submitAnswer)
		api.POST("/sessions/:id/restart", s.restartSession)
		api.GET("/sessions/:id/summary", s.sessionSummary)
		api.DELETE("/sessions/:id", s.deleteSession)
		api.GET("/assets/*ref", s.getAsset)
	}
	return r
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.done)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) health(c *gin.Context) {
	success(c, gin.H{
		"status":   "ok",
		"sessions": s.registry.Len(),
	})
}
