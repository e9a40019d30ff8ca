package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"artbot/internal/infra"
)

// Bot is the Telegram long-polling transport. It turns updates into Incoming
// messages and dispatches each one on its own goroutine; requests from
// different chats never coordinate beyond the per-chat busy flag.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger infra.Logger
}

// New connects to the Telegram Bot API with the given token.
func New(token string, logger infra.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, logger: logger}, nil
}

// Username returns the bot account name reported by Telegram.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context, handler *Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	b.logger.Info().Str("username", b.Username()).Msg("telegram: update loop started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			msg := Incoming{
				ChatID: update.Message.Chat.ID,
				Text:   update.Message.Text,
			}
			if update.Message.From != nil {
				msg.LangCode = update.Message.From.LanguageCode
			}
			go handler.HandleMessage(ctx, msg)
		}
	}
}

// telegramSender adapts the Bot API to the Sender contract.
type telegramSender struct {
	api *tgbotapi.BotAPI
}

// Sender wraps the underlying Telegram connection as a Sender.
func (b *Bot) Sender() Sender {
	return &telegramSender{api: b.api}
}

func (s *telegramSender) SendMessage(_ context.Context, chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	_, err := s.api.Send(msg)
	return err
}

func (s *telegramSender) SendPhoto(_ context.Context, chatID int64, data []byte) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "generated.png", Bytes: data})
	_, err := s.api.Send(photo)
	return err
}
