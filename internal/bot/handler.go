// Package bot runs the quiz as a Telegram bot. Each chat owns one session.
package bot

import (
	"context"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
	"github.com/abhisek/mandela/internal/tracker"
)

// API is the subset of *tgbotapi.BotAPI the handler uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Commands registered with Telegram on startup.
var Commands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Welcome and first question"},
	{Command: "quiz", Description: "Start or restart the quiz"},
	{Command: "score", Description: "Show your progress"},
	{Command: "help", Description: "Help"},
}

// Options configures a Handler.
type Options struct {
	Registry *quiz.Registry
	Tracker  *tracker.Tracker
	Assets   assets.Provider
	Logger   *zap.Logger

	PollTimeout  int           // long-poll seconds
	RateInterval time.Duration // minimum spacing between actions per chat
	RateBurst    int
}

// Handler dispatches Telegram updates to quiz sessions.
type Handler struct {
	bot      API
	registry *quiz.Registry
	tracker  *tracker.Tracker
	assets   assets.Provider
	logger   *zap.Logger
	limiter  *chatLimiter
	timeout  int
}

// NewHandler creates a handler bound to bot.
func NewHandler(bot API, opts Options) *Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	tr := opts.Tracker
	if tr == nil {
		tr = tracker.New(tracker.SourceTelegram, tracker.Options{Logger: log})
	}
	timeout := opts.PollTimeout
	if timeout <= 0 {
		timeout = 60
	}
	return &Handler{
		bot:      bot,
		registry: opts.Registry,
		tracker:  tr,
		assets:   opts.Assets,
		logger:   log,
		limiter:  newChatLimiter(opts.RateInterval, opts.RateBurst),
		timeout:  timeout,
	}
}

// Run consumes updates until ctx is cancelled.
func (h *Handler) Run(ctx context.Context) error {
	h.logger.Info("telegram handler started")
	defer h.logger.Info("telegram handler stopped")

	if _, err := h.bot.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		h.logger.Warn("failed to set bot commands", zap.Error(err))
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go h.limiter.run(sweepCtx, limiterSweepInterval)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = h.timeout
	updates := h.bot.GetUpdatesChan(u)
	defer h.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			h.handleUpdate(ctx, update)
		}
	}
}

func (h *Handler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if cb := update.CallbackQuery; cb != nil {
		if cb.Message == nil || cb.Message.Chat == nil {
			return
		}
		h.logger.Debug("callback received",
			zap.Int64("chat_id", cb.Message.Chat.ID),
			zap.String("data", cb.Data),
		)
		if !h.limiter.allow(cb.Message.Chat.ID) {
			h.answerCallback(cb.ID, msgSlowDown)
			return
		}
		h.handleCallback(ctx, cb)
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	h.logger.Debug("message received", zap.Int64("chat_id", chatID), zap.String("text", msg.Text))

	if !h.limiter.allow(chatID) {
		h.sendText(chatID, msgSlowDown)
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			h.sendText(chatID, msgWelcome)
			h.startQuiz(ctx, chatID)
		case "quiz":
			h.startQuiz(ctx, chatID)
		case "score":
			h.sendScore(chatID)
		case "help":
			h.sendText(chatID, msgHelp)
		default:
			h.sendText(chatID, msgUnknownCommand)
		}
		return
	}

	h.handleTextAnswer(ctx, chatID, msg.Text)
}

func sessionID(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (h *Handler) startQuiz(ctx context.Context, chatID int64) {
	sess, isNew := h.registry.GetOrCreate(sessionID(chatID))
	if isNew {
		h.tracker.Start(ctx, sess)
		h.tracker.SetActive(h.registry.Len())
	} else {
		h.tracker.Restart(ctx, sess)
	}
	h.sendQuestion(ctx, chatID, sess)
}

func (h *Handler) sendScore(chatID int64) {
	sess, err := h.registry.Get(sessionID(chatID))
	if err != nil {
		h.sendText(chatID, msgNoSession)
		return
	}
	st := sess.State()
	if sess.Phase() == quiz.Complete {
		sum, _ := sess.Summary()
		h.sendText(chatID, quiz.SummaryHeading(sum))
		return
	}
	h.sendText(chatID, "Score: "+strconv.Itoa(st.Score)+"/"+strconv.Itoa(len(st.Log))+
		", question "+strconv.Itoa(st.Index+1)+" of "+strconv.Itoa(sess.Catalog.Len()))
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	cd := decodeCallback(cb.Data)
	if cd.Action != actionQuiz || len(cd.Params) == 0 {
		h.answerCallback(cb.ID, "")
		return
	}

	switch cd.Params[0] {
	case quizRestart:
		h.answerCallback(cb.ID, "")
		h.startQuiz(ctx, chatID)

	case quizAnswer:
		index, choice, err := parseAnswer(cd)
		if err != nil {
			h.logger.Debug("invalid answer callback", zap.String("data", cb.Data), zap.Error(err))
			h.answerCallback(cb.ID, "")
			return
		}
		sess, err := h.registry.Get(sessionID(chatID))
		if err != nil {
			h.answerCallback(cb.ID, msgNoSession)
			return
		}
		item, _, err := sess.CurrentItem()
		if err != nil {
			// Quiz already finished.
			h.answerCallback(cb.ID, "")
			return
		}
		rec, err := h.tracker.SubmitAt(ctx, sess, index, choice)
		if err != nil {
			// Stale or foreign buttons are ignored.
			h.logger.Debug("ignored answer", zap.Int64("chat_id", chatID), zap.Error(err))
			h.answerCallback(cb.ID, "")
			return
		}
		h.answerCallback(cb.ID, verdict(rec))
		h.closeQuestion(cb.Message, index, item, rec)
		h.advance(ctx, chatID, sess)

	default:
		h.answerCallback(cb.ID, "")
	}
}

func (h *Handler) handleTextAnswer(ctx context.Context, chatID int64, text string) {
	sess, err := h.registry.Get(sessionID(chatID))
	if err != nil {
		h.sendText(chatID, msgNoSession)
		return
	}
	choice, err := catalog.ParseChoice(text)
	if err != nil {
		h.sendText(chatID, msgNotUnderstood)
		return
	}
	item, _, err := sess.CurrentItem()
	if err != nil {
		h.sendText(chatID, msgNoSession)
		return
	}
	rec, err := h.tracker.Submit(ctx, sess, choice)
	if err != nil {
		h.sendText(chatID, msgNotUnderstood)
		return
	}
	h.sendText(chatID, feedbackText(item, rec))
	h.advance(ctx, chatID, sess)
}

// advance sends the next question or the summary.
func (h *Handler) advance(ctx context.Context, chatID int64, sess *quiz.Session) {
	if sess.Phase() == quiz.Complete {
		h.sendSummary(ctx, chatID, sess)
		return
	}
	h.sendQuestion(ctx, chatID, sess)
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.logger.Warn("callback answer error", zap.Error(err))
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("failed to send telegram message", zap.Error(err))
	}
}
