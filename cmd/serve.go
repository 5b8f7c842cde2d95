package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/server"
	"github.com/abhisek/mandela/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := loadEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			e.cfg.Server.Addr = addr
		}

		if err := e.withStore(ctx); err != nil {
			return err
		}
		if err := e.withAssets(); err != nil {
			return err
		}
		if err := e.withEvents(); err != nil {
			return err
		}
		e.withMetrics()

		log := e.log.Named("server")
		srv := server.New(server.Options{
			Config:   e.cfg.Server,
			Registry: quiz.NewRegistry(e.catalog),
			Tracker:  e.tracker(tracker.SourceHTTP),
			Assets:   e.assets,
			Metrics:  e.metrics,
			Logger:   log,
		})

		log.Info("starting", zap.String("env", e.cfg.Env), zap.Int("items", e.catalog.Len()))
		if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
