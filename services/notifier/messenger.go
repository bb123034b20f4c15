package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger delivers plain text to the destination chat
type Messenger interface {
	SendMessage(ctx context.Context, text string) error
}

// Sender is the part of the Telegram bot API used for sending
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramMessenger sends messages to a single Telegram chat
type TelegramMessenger struct {
	sender             Sender
	chatID             int64
	disableLinkPreview bool
}

// TelegramOption configures a TelegramMessenger
type TelegramOption func(*TelegramMessenger)

// WithLinkPreviewDisabled turns off link previews in sent messages
func WithLinkPreviewDisabled(disabled bool) TelegramOption {
	return func(m *TelegramMessenger) {
		m.disableLinkPreview = disabled
	}
}

// NewTelegramMessenger creates a messenger bound to chatID
func NewTelegramMessenger(sender Sender, chatID int64, opts ...TelegramOption) *TelegramMessenger {
	m := &TelegramMessenger{
		sender: sender,
		chatID: chatID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SendMessage sends text to the configured chat
func (m *TelegramMessenger) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(m.chatID, text)
	msg.DisableWebPagePreview = m.disableLinkPreview

	_, err := m.sender.Send(msg)
	return err
}
