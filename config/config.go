package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	perrors "sjsage522/partwatch/pkg/errors"

	"github.com/shopspring/decimal"
)

// Delivery modes for the dedup ledger
const (
	DeliveryAtMostOnce  = "at-most-once"
	DeliveryAtLeastOnce = "at-least-once"
)

// SearchPlaceholder is substituted with the part number in SearchURLTemplate
const SearchPlaceholder = "{part_number}"

// Config represents the application configuration
type Config struct {
	// Telegram configuration
	TelegramToken      string
	ChatID             int64
	DisableLinkPreview bool
	NotifyErrors       bool

	// Monitoring configuration
	PartNumbers   []string
	MaxPrice      decimal.Decimal
	CheckInterval time.Duration
	StartupDelay  time.Duration
	DeliveryMode  string

	// Marketplace configuration
	SearchURLTemplate string
	BaseURL           string

	// Fetch configuration
	FetchTimeout      time.Duration
	FetchUserAgent    string
	FetchProxyURL     string
	FetchRPS          float64
	CloudflareBypass  bool
	RateLimitCooldown time.Duration

	// Liveness server
	Port int

	// Memcache configuration, empty means in-process cache
	MemcacheAddr string

	// Redis offer feed, empty disables it
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamMaxLength int64

	// Environment
	Environment string

	rawChatID string
	parseErrs []error
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() *Config {
	c := &Config{}

	c.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN"))
	c.rawChatID = strings.TrimSpace(os.Getenv("CHAT_ID"))
	if c.rawChatID != "" {
		id, err := strconv.ParseInt(c.rawChatID, 10, 64)
		if err != nil {
			c.parseErrs = append(c.parseErrs, fmt.Errorf("CHAT_ID %q is not an integer", c.rawChatID))
		}
		c.ChatID = id
	}
	c.DisableLinkPreview = c.boolEnv("DISABLE_LINK_PREVIEW", false)
	c.NotifyErrors = c.boolEnv("NOTIFY_ERRORS", true)

	c.PartNumbers = SplitList(getEnv("PART_NUMBERS", "30657756,30657757"))
	c.MaxPrice = c.decimalEnv("MAX_PRICE", "20.0")
	c.CheckInterval = c.secondsEnv("CHECK_INTERVAL", "300")
	c.StartupDelay = c.secondsEnv("STARTUP_DELAY", "5")
	c.DeliveryMode = getEnv("DELIVERY_MODE", DeliveryAtMostOnce)

	c.SearchURLTemplate = getEnv("SEARCH_URL_TEMPLATE", "https://rrr.lt/ru/poisk?q={part_number}&exact=1")
	c.BaseURL = strings.TrimRight(getEnv("BASE_URL", "https://rrr.lt"), "/")

	c.FetchTimeout = c.secondsEnv("FETCH_TIMEOUT", "15")
	c.FetchUserAgent = getEnv("FETCH_USER_AGENT", "")
	c.FetchProxyURL = getEnv("FETCH_PROXY_URL", "")
	c.FetchRPS = c.floatEnv("FETCH_RPS", "0")
	c.CloudflareBypass = c.boolEnv("FETCH_CLOUDFLARE_BYPASS", true)
	c.RateLimitCooldown = c.secondsEnv("RATE_LIMIT_COOLDOWN", "500")

	c.Port = c.intEnv("PORT", "8080")

	c.MemcacheAddr = getEnv("MEMCACHE_ADDR", "")

	c.RedisAddr = getEnv("REDIS_ADDR", "")
	c.RedisDB = c.intEnv("REDIS_DB", "0")
	c.RedisStream = getEnv("REDIS_STREAM", "partwatch:offers")
	c.RedisStreamMaxLength = int64(c.intEnv("REDIS_STREAM_MAX_LENGTH", "1000"))

	c.Environment = getEnv("PARTWATCH_ENVIRONMENT", "development")

	return c
}

// Validate checks everything required to run the bot
func (c *Config) Validate() error {
	return c.validate(true)
}

// ValidateForScrape checks only what a one-shot scrape needs
func (c *Config) ValidateForScrape() error {
	return c.validate(false)
}

func (c *Config) validate(requireBot bool) error {
	errs := append([]error(nil), c.parseErrs...)

	if requireBot {
		if c.TelegramToken == "" {
			errs = append(errs, stderrors.New("TELEGRAM_TOKEN is required"))
		}
		if c.rawChatID == "" {
			errs = append(errs, stderrors.New("CHAT_ID is required"))
		}
		if c.Port <= 0 || c.Port > 65535 {
			errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
		}
	}

	if len(c.PartNumbers) == 0 {
		errs = append(errs, stderrors.New("PART_NUMBERS must list at least one part number"))
	}
	if !strings.Contains(c.SearchURLTemplate, SearchPlaceholder) {
		errs = append(errs, fmt.Errorf("SEARCH_URL_TEMPLATE must contain %s", SearchPlaceholder))
	}
	if c.CheckInterval <= 0 {
		errs = append(errs, stderrors.New("CHECK_INTERVAL must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, stderrors.New("FETCH_TIMEOUT must be positive"))
	}
	if c.MaxPrice.IsNegative() {
		errs = append(errs, stderrors.New("MAX_PRICE must not be negative"))
	}
	if c.DeliveryMode != DeliveryAtMostOnce && c.DeliveryMode != DeliveryAtLeastOnce {
		errs = append(errs, fmt.Errorf("DELIVERY_MODE %q is not one of %s, %s",
			c.DeliveryMode, DeliveryAtMostOnce, DeliveryAtLeastOnce))
	}

	if len(errs) > 0 {
		return perrors.NewConfiguration("invalid configuration", stderrors.Join(errs...))
	}
	return nil
}

// MaskedToken returns the bot token with everything but the bot id hidden
func (c *Config) MaskedToken() string {
	if c.TelegramToken == "" {
		return ""
	}
	id, _, found := strings.Cut(c.TelegramToken, ":")
	if !found {
		return "***"
	}
	return id + ":***"
}

// SplitList splits a comma separated list, dropping blanks and duplicates
func SplitList(raw string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || seen[part] {
			continue
		}
		seen[part] = true
		out = append(out, part)
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (c *Config) intEnv(key, defaultValue string) int {
	raw := getEnv(key, defaultValue)
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s %q is not an integer", key, raw))
	}
	return v
}

func (c *Config) floatEnv(key, defaultValue string) float64 {
	raw := getEnv(key, defaultValue)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s %q is not a number", key, raw))
	}
	return v
}

func (c *Config) secondsEnv(key, defaultValue string) time.Duration {
	return time.Duration(c.intEnv(key, defaultValue)) * time.Second
}

func (c *Config) boolEnv(key string, defaultValue bool) bool {
	raw := getEnv(key, strconv.FormatBool(defaultValue))
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s %q is not a boolean", key, raw))
		return defaultValue
	}
	return v
}

func (c *Config) decimalEnv(key, defaultValue string) decimal.Decimal {
	raw := getEnv(key, defaultValue)
	v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		c.parseErrs = append(c.parseErrs, fmt.Errorf("%s %q is not a decimal", key, raw))
	}
	return v
}
