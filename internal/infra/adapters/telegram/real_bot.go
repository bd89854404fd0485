package telegram

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"notion-reminder-service/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*RealBotAdapter)(nil)

// RealBotAdapter pushes messages to a chat via the Telegram Bot API.
// This service only sends; update routing is out of scope.
type RealBotAdapter struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewRealBotAdapter(token string, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealBotAdapter{bot: bot, log: &l}, nil
}

func (r *RealBotAdapter) SendHTML(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		return err
	}
	return nil
}
