package adapter

import "context"

// TelegramBotAdapter sends formatted messages to a chat. HTML markup is
// used throughout, matching Telegram's HTML parse mode.
type TelegramBotAdapter interface {
	SendHTML(ctx context.Context, chatID int64, text string) error
}
