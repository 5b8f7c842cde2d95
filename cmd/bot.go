package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/bot"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/tracker"
)

const (
	botRateInterval = 500 * time.Millisecond
	botRateBurst    = 3
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the quiz as a Telegram bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := loadEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.cfg.RequireTelegram(); err != nil {
			return err
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

		api, err := tgbotapi.NewBotAPI(e.cfg.Telegram.Token)
		if err != nil {
			return err
		}
		api.Debug = e.cfg.Telegram.Debug

		log := e.log.Named("bot")
		log.Info("authorized", zap.String("account", api.Self.UserName))

		h := bot.NewHandler(api, bot.Options{
			Registry:     quiz.NewRegistry(e.catalog),
			Tracker:      e.tracker(tracker.SourceTelegram),
			Assets:       e.assets,
			Logger:       log,
			PollTimeout:  e.cfg.Telegram.Timeout,
			RateInterval: botRateInterval,
			RateBurst:    botRateBurst,
		})
		if err := h.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}
