package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultSendTimeout = 10 * time.Second

// Sender отправляет уведомления подписчикам в Markdown
type Sender struct {
	bot BotAPI
}

func NewSender(bot BotAPI) *Sender {
	return &Sender{bot: bot}
}

// SendText отправляет текст в чат chatID
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	return sendWithContext(ctx, s.bot, msg)
}

// sendWithContext ограничивает ожидание ответа Telegram временем жизни ctx
func sendWithContext(ctx context.Context, bot BotAPI, c tgbotapi.Chattable) error {
	return callWithContext(ctx, func() error {
		_, err := bot.Send(c)
		return err
	})
}

// callWithContext выполняет call в отдельной горутине: клиент бота не принимает контекст
func callWithContext(ctx context.Context, call func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- call()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
