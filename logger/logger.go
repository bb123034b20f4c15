package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog logger with component helpers
type Logger struct {
	logger zerolog.Logger
}

var (
	// Default is the process-wide logger, set by Init
	Default *Logger
)

// Init initializes the default logger writing to stdout
func Init() {
	InitWithWriter(os.Stdout)
}

// InitWithWriter initializes the default logger writing to w.
// Production output is JSON; any other environment gets the console writer.
func InitWithWriter(w io.Writer) {
	level := getLogLevel()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(level)

	var output io.Writer = w
	if os.Getenv("PARTWATCH_ENVIRONMENT") != "production" {
		output = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    w != os.Stdout,
		}
	}

	Default = &Logger{logger: zerolog.New(output).With().Timestamp().Logger()}

	Default.Debug().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// getLogLevel reads LOG_LEVEL, falling back to the environment name
func getLogLevel() zerolog.Level {
	levelStr := os.Getenv("LOG_LEVEL")
	if levelStr == "" {
		if os.Getenv("PARTWATCH_ENVIRONMENT") == "production" {
			return zerolog.InfoLevel
		}
		return zerolog.DebugLevel
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}

// WithField creates a new logger with a single field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{logger: l.logger.With().Interface(key, value).Logger()}
}

// WithStr creates a new logger with a string field
func (l *Logger) WithStr(key, value string) *Logger {
	return &Logger{logger: l.logger.With().Str(key, value).Logger()}
}

// Debug returns a debug event
func (l *Logger) Debug() *zerolog.Event {
	return l.logger.Debug()
}

// Info returns an info event
func (l *Logger) Info() *zerolog.Event {
	return l.logger.Info()
}

// Warn returns a warn event
func (l *Logger) Warn() *zerolog.Event {
	return l.logger.Warn()
}

// Error returns an error event
func (l *Logger) Error() *zerolog.Event {
	return l.logger.Error()
}

// Fatal returns a fatal event
func (l *Logger) Fatal() *zerolog.Event {
	return l.logger.Fatal()
}

func defaultLogger() *Logger {
	if Default == nil {
		Init()
	}
	return Default
}

// Info logs an info message
func Info(format string, v ...interface{}) {
	defaultLogger().Info().Msgf(format, v...)
}

// Warn logs a warning message
func Warn(format string, v ...interface{}) {
	defaultLogger().Warn().Msgf(format, v...)
}

// Debug logs a debug message
func Debug(format string, v ...interface{}) {
	defaultLogger().Debug().Msgf(format, v...)
}

// Component returns a logger tagged with a component name
func Component(name string) *Logger {
	return defaultLogger().WithStr("component", name)
}

// ForWorker creates a logger for the poll scheduler
func ForWorker() *Logger {
	return Component("worker")
}

// ForFetcher creates a logger for a fetcher of one identifier
func ForFetcher(identifier string) *Logger {
	return Component("fetcher").WithStr("identifier", identifier)
}

// ForExtractor creates a logger for the offer extractor
func ForExtractor() *Logger {
	return Component("extractor")
}

// ForNotifier creates a logger for the notifier
func ForNotifier() *Logger {
	return Component("notifier")
}

// ForBot creates a logger for the chat command surface
func ForBot() *Logger {
	return Component("bot")
}

// ForHealth creates a logger for the liveness server
func ForHealth() *Logger {
	return Component("health")
}

// ForPublisher creates a logger for the offer feed publisher
func ForPublisher() *Logger {
	return Component("publisher")
}

// ForCache creates a logger for the cache
func ForCache() *Logger {
	return Component("cache")
}

// LogError logs an error with its component
func LogError(component string, err error, format string, v ...interface{}) {
	defaultLogger().Error().
		Str("component", component).
		Err(err).
		Msg(fmt.Sprintf(format, v...))
}
