package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockAPI feeds updates from a channel and records replies
type MockAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []tgbotapi.MessageConfig
	stopped bool
}

var _ API = (*MockAPI)(nil)

func (m *MockAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return m.updates
}

func (m *MockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (m *MockAPI) StopReceivingUpdates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockAPI) Sent() []tgbotapi.MessageConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), m.sent...)
}

func testSettings() Settings {
	return Settings{
		Identifiers: []string{"30657756", "30657757"},
		Ceiling:     decimal.RequireFromString("20.0"),
		Interval:    300 * time.Second,
		Site:        "rrr.lt",
	}
}

func command(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: chatID},
			Text:      text,
			Entities: []tgbotapi.MessageEntity{
				{Type: "bot_command", Offset: 0, Length: len(text)},
			},
		},
	}
}

func TestReply(t *testing.T) {
	b := New(&MockAPI{}, testSettings())

	text, ok := b.Reply("start")
	require.True(t, ok)
	assert.Contains(t, text, "30657756, 30657757")
	assert.Contains(t, text, "cheaper than 20€")

	text, ok = b.Reply("status")
	require.True(t, ok)
	assert.Contains(t, text, "- Price limit: 20€")
	assert.Contains(t, text, "- Check interval: 300 sec.")

	text, ok = b.Reply("help")
	require.True(t, ok)
	assert.Contains(t, text, "/status")

	_, ok = b.Reply("buy")
	assert.False(t, ok)
}

func TestRunAnswersCommands(t *testing.T) {
	api := &MockAPI{updates: make(chan tgbotapi.Update, 3)}
	b := New(api, testSettings())

	api.updates <- command(42, "/status")
	api.updates <- command(42, "/unknown")
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}, Text: "hello"}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- b.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return len(api.Sent()) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	sent := api.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, int64(42), sent[0].ChatID)
	assert.Equal(t, 7, sent[0].ReplyToMessageID)
	assert.Contains(t, sent[0].Text, "Monitoring settings")
	assert.True(t, api.stopped)
}
