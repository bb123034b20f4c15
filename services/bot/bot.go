// Package bot answers the read-only chat commands.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sjsage522/partwatch/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// API is the part of the Telegram bot API the command surface needs
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	StopReceivingUpdates()
}

// Settings is what the commands report back
type Settings struct {
	Identifiers []string
	Ceiling     decimal.Decimal
	Interval    time.Duration
	Site        string
}

// Bot replies to /start, /status and /help
type Bot struct {
	api      API
	settings Settings
	log      *logger.Logger
}

// New creates a command bot
func New(api API, settings Settings) *Bot {
	return &Bot{
		api:      api,
		settings: settings,
		log:      logger.ForBot(),
	}
}

// Reply returns the text for a command, or false for unknown commands
func (b *Bot) Reply(command string) (string, bool) {
	s := b.settings
	switch command {
	case "start":
		return fmt.Sprintf("Hi! I am watching parts %s on %s.\nI will let you know when something is cheaper than %s€.",
			strings.Join(s.Identifiers, ", "), s.Site, s.Ceiling.String()), true
	case "status":
		return fmt.Sprintf("Monitoring settings:\n- Parts: %s\n- Price limit: %s€\n- Check interval: %d sec.\n",
			strings.Join(s.Identifiers, ", "), s.Ceiling.String(), int64(s.Interval/time.Second)), true
	case "help":
		return "/start - short info\n/status - show current settings\nMonitoring runs automatically in the background.", true
	default:
		return "", false
	}
}

// Run long-polls for updates and answers commands until ctx is done
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	b.log.Info().Msg("Listening for commands")

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(update)
		}
	}
}

func (b *Bot) handle(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || !msg.IsCommand() {
		return
	}

	text, ok := b.Reply(msg.Command())
	if !ok {
		b.log.Debug().Str("command", msg.Command()).Msg("Ignoring unknown command")
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.log.Warn().Err(err).Str("command", msg.Command()).Msg("Failed to answer command")
	}
}
