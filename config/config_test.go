package config

import (
	"testing"
	"time"

	perrors "sjsage522/partwatch/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"TELEGRAM_TOKEN", "CHAT_ID", "DISABLE_LINK_PREVIEW", "NOTIFY_ERRORS",
	"PART_NUMBERS", "MAX_PRICE", "CHECK_INTERVAL", "STARTUP_DELAY", "DELIVERY_MODE",
	"SEARCH_URL_TEMPLATE", "BASE_URL", "FETCH_TIMEOUT", "FETCH_USER_AGENT",
	"FETCH_PROXY_URL", "FETCH_RPS", "FETCH_CLOUDFLARE_BYPASS", "RATE_LIMIT_COOLDOWN",
	"PORT", "MEMCACHE_ADDR", "REDIS_ADDR", "REDIS_DB", "REDIS_STREAM",
	"REDIS_STREAM_MAX_LENGTH", "PARTWATCH_ENVIRONMENT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	config := LoadConfig()
	assert.Equal(t, []string{"30657756", "30657757"}, config.PartNumbers)
	assert.True(t, config.MaxPrice.Equal(decimal.RequireFromString("20")))
	assert.Equal(t, 300*time.Second, config.CheckInterval)
	assert.Equal(t, 5*time.Second, config.StartupDelay)
	assert.Equal(t, 15*time.Second, config.FetchTimeout)
	assert.Equal(t, 500*time.Second, config.RateLimitCooldown)
	assert.Equal(t, 8080, config.Port)
	assert.Equal(t, DeliveryAtMostOnce, config.DeliveryMode)
	assert.Equal(t, "https://rrr.lt", config.BaseURL)
	assert.Equal(t, "https://rrr.lt/ru/poisk?q={part_number}&exact=1", config.SearchURLTemplate)
	assert.True(t, config.CloudflareBypass)
	assert.True(t, config.NotifyErrors)
	assert.False(t, config.DisableLinkPreview)
	assert.Empty(t, config.MemcacheAddr)
	assert.Empty(t, config.RedisAddr)
	assert.Equal(t, "development", config.Environment)
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123456:secret")
	t.Setenv("CHAT_ID", "-1001234")
	t.Setenv("PART_NUMBERS", " A1, B2 ,,A1")
	t.Setenv("MAX_PRICE", "12,50")
	t.Setenv("CHECK_INTERVAL", "60")
	t.Setenv("DELIVERY_MODE", DeliveryAtLeastOnce)
	t.Setenv("DISABLE_LINK_PREVIEW", "true")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6379")

	config := LoadConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, int64(-1001234), config.ChatID)
	assert.Equal(t, []string{"A1", "B2"}, config.PartNumbers)
	assert.True(t, config.MaxPrice.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 60*time.Second, config.CheckInterval)
	assert.Equal(t, DeliveryAtLeastOnce, config.DeliveryMode)
	assert.True(t, config.DisableLinkPreview)
	assert.Equal(t, 9090, config.Port)
	assert.Equal(t, "redis:6379", config.RedisAddr)
	assert.Equal(t, "123456:***", config.MaskedToken())
}

func TestValidateMissingRequired(t *testing.T) {
	clearEnv(t)

	config := LoadConfig()
	err := config.Validate()
	require.Error(t, err)
	assert.True(t, perrors.Is(err, perrors.ErrorTypeConfiguration))
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN is required")
	assert.Contains(t, err.Error(), "CHAT_ID is required")

	// scraping does not need the bot
	assert.NoError(t, config.ValidateForScrape())
}

func TestValidateMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "123456:secret")
	t.Setenv("CHAT_ID", "my-chat")
	t.Setenv("MAX_PRICE", "cheap")
	t.Setenv("CHECK_INTERVAL", "0")
	t.Setenv("DELIVERY_MODE", "exactly-once")
	t.Setenv("SEARCH_URL_TEMPLATE", "https://rrr.lt/ru/poisk")

	err := LoadConfig().Validate()
	require.Error(t, err)
	for _, fragment := range []string{
		`CHAT_ID "my-chat" is not an integer`,
		`MAX_PRICE "cheap" is not a decimal`,
		"CHECK_INTERVAL must be positive",
		`DELIVERY_MODE "exactly-once"`,
		"SEARCH_URL_TEMPLATE must contain {part_number}",
	} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
	assert.Equal(t, []string{"a"}, SplitList(" a , a "))
	assert.Nil(t, SplitList(" , "))
}
