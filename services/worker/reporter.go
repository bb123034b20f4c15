package worker

import (
	"context"

	"sjsage522/partwatch/logger"
	"sjsage522/partwatch/services/notifier"
)

// Reporter surfaces cycle and delivery failures to the operator
type Reporter interface {
	Report(ctx context.Context, err error)
}

// ChatReporter logs errors and, when enabled, echoes them to the chat.
// Failures while reporting are logged and dropped.
type ChatReporter struct {
	messenger  notifier.Messenger
	notifyChat bool
	log        *logger.Logger
}

// NewChatReporter creates a reporter; messenger may be nil when notifyChat is false
func NewChatReporter(messenger notifier.Messenger, notifyChat bool) *ChatReporter {
	return &ChatReporter{
		messenger:  messenger,
		notifyChat: notifyChat && messenger != nil,
		log:        logger.ForWorker(),
	}
}

// Report logs err and sends "Error while checking: <err>" best effort
func (r *ChatReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error().Interface("panic", rec).Msg("Error reporter panicked")
		}
	}()

	logger.LogError("worker", err, "Error while checking")

	if !r.notifyChat {
		return
	}
	if sendErr := r.messenger.SendMessage(ctx, "Error while checking: "+err.Error()); sendErr != nil {
		r.log.Warn().Err(sendErr).Msg("Failed to send error report")
	}
}
