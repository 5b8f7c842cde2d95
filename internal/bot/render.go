package bot

import (
	"context"
	"errors"
	"io"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
)

func verdict(rec quiz.AnswerRecord) string {
	if rec.WasCorrect {
		return msgCorrect
	}
	return msgWrong
}

func feedbackText(it catalog.Item, rec quiz.AnswerRecord) string {
	return verdict(rec) + "\n" + quiz.CorrectAnswerLine(it) + "\n" + quiz.ExplanationLine(it)
}

func questionKeyboard(index int, it catalog.Item) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range it.Domain() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(quiz.ChoiceButton(c), buildAnswerCallback(index, c)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func restartKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(quiz.RestartLabel, buildRestartCallback())),
	)
}

func (h *Handler) sendQuestion(ctx context.Context, chatID int64, sess *quiz.Session) {
	item, index, err := sess.CurrentItem()
	if err != nil {
		h.sendSummary(ctx, chatID, sess)
		return
	}

	refs := item.Assets()
	for i, ref := range refs {
		caption := ""
		if item.Kind == catalog.PairedChoice {
			caption = item.Domain()[i].Label()
		}
		h.sendAsset(ctx, chatID, ref, caption)
	}

	prompt := quiz.QuestionHeading(index, item)
	if item.Kind == catalog.BooleanChoice {
		prompt += "\nDoes this exist?"
	} else {
		prompt += "\nWhich one is right?"
	}
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = questionKeyboard(index, item)
	h.send(msg)
}

// closeQuestion replaces the answered question's keyboard with the result.
func (h *Handler) closeQuestion(msg *tgbotapi.Message, index int, it catalog.Item, rec quiz.AnswerRecord) {
	text := quiz.QuestionHeading(index, it) + "\n\n" + "Your answer: " + rec.Choice.Label() + "\n" + feedbackText(it, rec)
	h.send(tgbotapi.NewEditMessageText(msg.Chat.ID, msg.MessageID, text))
}

func (h *Handler) sendSummary(ctx context.Context, chatID int64, sess *quiz.Session) {
	sum, err := sess.Summary()
	if err != nil {
		h.logger.Error("summary of unfinished session", zap.Int64("chat_id", chatID), zap.Error(err))
		h.sendText(chatID, msgInternalError)
		return
	}

	h.sendText(chatID, quiz.SummaryHeading(sum)+"\n\n"+quiz.FeedbackHeading)

	for _, rec := range sum.Log {
		it, ok := sess.Catalog.Lookup(rec.ItemID)
		if !ok {
			continue
		}
		caption := strings.Join([]string{
			it.Title() + " " + verdict(rec),
			quiz.CorrectAnswerLine(it),
			quiz.ExplanationLine(it),
		}, "\n")
		h.sendAsset(ctx, chatID, it.CorrectAsset(), caption)
	}

	msg := tgbotapi.NewMessage(chatID, "Play again?")
	msg.ReplyMarkup = restartKeyboard()
	h.send(msg)
}

// sendAsset sends ref as a photo, or the not-found notice plus caption.
func (h *Handler) sendAsset(ctx context.Context, chatID int64, ref, caption string) {
	data, err := h.readAsset(ctx, ref)
	if err != nil {
		if !errors.Is(err, assets.ErrNotFound) {
			h.logger.Warn("load asset", zap.String("ref", ref), zap.Error(err))
		}
		text := assets.NotFoundText
		if caption != "" {
			text = caption + "\n" + text
		}
		h.sendText(chatID, text)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: ref, Bytes: data})
	photo.Caption = caption
	h.send(photo)
}

func (h *Handler) readAsset(ctx context.Context, ref string) ([]byte, error) {
	if h.assets == nil {
		return nil, assets.ErrNotFound
	}
	rc, err := h.assets.Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
