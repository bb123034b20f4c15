package cmd

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sjsage522/partwatch/config"
	"sjsage522/partwatch/internal/crawler"
	"sjsage522/partwatch/logger"
	perrors "sjsage522/partwatch/pkg/errors"
	"sjsage522/partwatch/services/bot"
	"sjsage522/partwatch/services/cache"
	"sjsage522/partwatch/services/health"
	"sjsage522/partwatch/services/notifier"
	"sjsage522/partwatch/services/publisher"
	"sjsage522/partwatch/services/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot, the poll scheduler and the liveness server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Default

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Info().
		Str("environment", cfg.Environment).
		Strs("part_numbers", cfg.PartNumbers).
		Str("max_price", cfg.MaxPrice.String()).
		Dur("check_interval", cfg.CheckInterval).
		Str("delivery_mode", cfg.DeliveryMode).
		Msg("Starting application")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := initializeServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer services.Cleanup()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return perrors.NewConfiguration("connect to Telegram", err)
	}
	log.Info().Str("bot", api.Self.UserName).Str("token", cfg.MaskedToken()).Msg("Authorized on Telegram")

	messenger := notifier.NewTelegramMessenger(api, cfg.ChatID,
		notifier.WithLinkPreviewDisabled(cfg.DisableLinkPreview))

	var n notifier.Notifier = notifier.NewChatNotifier(messenger)
	if services.Publisher != nil {
		n = notifier.Multi{n, notifier.NewStreamNotifier(services.Publisher)}
	}

	w := worker.NewWorker(
		worker.Options{
			Identifiers:  cfg.PartNumbers,
			Ceiling:      cfg.MaxPrice,
			Interval:     cfg.CheckInterval,
			StartupDelay: cfg.StartupDelay,
			Mode:         cfg.DeliveryMode,
		},
		crawler.CreateFetcher(cfg, services.Cache),
		crawler.CreateExtractor(cfg),
		n,
		worker.NewChatReporter(messenger, cfg.NotifyErrors),
	)

	commands := bot.New(api, bot.Settings{
		Identifiers: cfg.PartNumbers,
		Ceiling:     cfg.MaxPrice,
		Interval:    cfg.CheckInterval,
		Site:        siteName(cfg.BaseURL),
	})

	server := health.NewServer(cfg.Port, func() string {
		return w.State().String()
	})

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- server.Start()
	}()

	go func() {
		if err := commands.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Command listener stopped")
		}
	}()

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start(ctx)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
	case runErr = <-serverDone:
		log.Error().Err(runErr).Msg("Liveness server exited")
	case runErr = <-workerDone:
		log.Error().Err(runErr).Msg("Worker exited")
	}
	stop()

	log.Info().Msg("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Liveness server shutdown failed")
	}

	return runErr
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.ForPublisher().Warn().Err(err).Msg("Failed to close publisher")
		}
	}
}

// initializeServices initializes the cache and the optional offer feed
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{
		Cache: cache.New(cfg.MemcacheAddr),
	}

	if cfg.MemcacheAddr != "" {
		logger.Info("Using Memcache at %s", cfg.MemcacheAddr)
	} else {
		logger.Info("Using in-process cache")
	}

	if cfg.RedisAddr == "" {
		return services, nil
	}

	redisPublisher := publisher.NewRedisPublisher(
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLength,
	)
	if err := redisPublisher.Ping(ctx); err != nil {
		redisPublisher.Close()
		return nil, perrors.NewPublisher("", "connect to Redis at "+cfg.RedisAddr, err)
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services, nil
}

// siteName returns the host of the marketplace base URL
func siteName(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host
}
