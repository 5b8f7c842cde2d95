package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/config"
	"github.com/abhisek/mandela/internal/events"
	"github.com/abhisek/mandela/internal/insight"
	"github.com/abhisek/mandela/internal/llm"
	"github.com/abhisek/mandela/internal/logger"
	"github.com/abhisek/mandela/internal/metrics"
	"github.com/abhisek/mandela/internal/store"
	"github.com/abhisek/mandela/internal/tracker"
)

// env bundles everything a subcommand may need. Fields are populated on
// demand by the with* methods and released by Close.
type env struct {
	cfg     *config.Config
	log     *zap.Logger
	catalog *catalog.Catalog
	store   *store.Store
	bus     events.Publisher
	metrics *metrics.Metrics
	assets  assets.Provider
	insight *insight.Service

	closers []func() error
}

// loadEnv reads configuration, applies flag overrides and builds the
// logger and catalog. console mirrors logs to stderr.
func loadEnv(cmd *cobra.Command, console bool) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.Driver = store.DriverSQLite
		cfg.Store.DSN = p
	}

	log, err := logger.New(cfg.Log, cfg.Env, logger.Options{Console: console})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	e := &env{cfg: cfg, log: log}
	e.closers = append(e.closers, func() error { _ = log.Sync(); return nil })

	e.catalog = catalog.Default()
	if cfg.Catalog.File != "" {
		if e.catalog, err = catalog.LoadFile(cfg.Catalog.File); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
}

func (e *env) withStore(ctx context.Context) error {
	dsn := e.cfg.Store.DSN
	if dsn == "" && (e.cfg.Store.Driver == "" || e.cfg.Store.Driver == store.DriverSQLite) {
		p, err := store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		dsn = p
	}
	st, err := store.OpenDriver(ctx, e.cfg.Store.Driver, dsn)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st.Close)
	return nil
}

func (e *env) withEvents() error {
	pub, err := events.NewEventPublisher(e.cfg.Events.URL, e.cfg.Events.Exchange, e.log.Named("events"))
	if err != nil {
		return err
	}
	e.bus = pub
	e.closers = append(e.closers, pub.Close)
	return nil
}

func (e *env) withMetrics() {
	e.metrics = metrics.New()
}

func (e *env) withAssets() error {
	switch e.cfg.Assets.Source {
	case "", "dir":
		e.assets = assets.NewFileProvider(e.cfg.Assets.Dir)
	case "minio":
		m := e.cfg.Assets.Minio
		p, err := assets.NewMinioProvider(assets.MinioConfig{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			Prefix:    m.Prefix,
			Secure:    m.Secure,
		})
		if err != nil {
			return err
		}
		e.assets = p
	default:
		return fmt.Errorf("unknown assets source %q (want dir or minio)", e.cfg.Assets.Source)
	}
	return nil
}

// errNoLLM is returned by withInsight when no provider is configured.
var errNoLLM = errors.New("no LLM provider configured: set llm.provider or one of GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY, OPENROUTER_API_KEY")

func (e *env) withInsight(ctx context.Context) error {
	cfg, ok := e.cfg.LLMConfig()
	if !ok {
		return errNoLLM
	}
	opts := llm.Options{Logger: e.log}
	if e.store != nil {
		opts.Events = e.store.EventRepo()
	}
	if cfg.Provider == "mock" {
		opts.Mock = &llm.MockProvider{Fallback: insight.OfflineResponder(e.catalog)}
	}
	provider, err := llm.NewProvider(ctx, cfg, opts)
	if err != nil {
		return err
	}
	e.insight = insight.NewService(provider, insight.DefaultConfig())
	return nil
}

// tracker builds a tracker over whichever sinks are loaded.
func (e *env) tracker(source string) *tracker.Tracker {
	opts := tracker.Options{Bus: e.bus, Metrics: e.metrics, Logger: e.log.Named("tracker")}
	if e.store != nil {
		opts.Repo = e.store.EventRepo()
	}
	return tracker.New(source, opts)
}

func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
