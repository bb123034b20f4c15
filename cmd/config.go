package cmd

import (
	"fmt"
	"os"
	"strings"

	"sjsage522/partwatch/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Setting", "Value"})
		t.AppendRows([]table.Row{
			{"TELEGRAM_TOKEN", cfg.MaskedToken()},
			{"CHAT_ID", cfg.ChatID},
			{"DISABLE_LINK_PREVIEW", cfg.DisableLinkPreview},
			{"NOTIFY_ERRORS", cfg.NotifyErrors},
			{"PART_NUMBERS", strings.Join(cfg.PartNumbers, ",")},
			{"MAX_PRICE", cfg.MaxPrice.String()},
			{"CHECK_INTERVAL", cfg.CheckInterval},
			{"STARTUP_DELAY", cfg.StartupDelay},
			{"DELIVERY_MODE", cfg.DeliveryMode},
			{"SEARCH_URL_TEMPLATE", cfg.SearchURLTemplate},
			{"BASE_URL", cfg.BaseURL},
			{"FETCH_TIMEOUT", cfg.FetchTimeout},
			{"FETCH_USER_AGENT", cfg.FetchUserAgent},
			{"FETCH_PROXY_URL", cfg.FetchProxyURL},
			{"FETCH_RPS", cfg.FetchRPS},
			{"FETCH_CLOUDFLARE_BYPASS", cfg.CloudflareBypass},
			{"RATE_LIMIT_COOLDOWN", cfg.RateLimitCooldown},
			{"PORT", cfg.Port},
			{"MEMCACHE_ADDR", cfg.MemcacheAddr},
			{"REDIS_ADDR", cfg.RedisAddr},
			{"REDIS_DB", cfg.RedisDB},
			{"REDIS_STREAM", cfg.RedisStream},
			{"REDIS_STREAM_MAX_LENGTH", cfg.RedisStreamMaxLength},
			{"PARTWATCH_ENVIRONMENT", cfg.Environment},
		})
		t.SetStyle(table.StyleRounded)
		t.Render()

		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
