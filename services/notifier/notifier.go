// Package notifier delivers qualifying offers to the chat and the offer feed.
package notifier

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"sjsage522/partwatch/internal/crawler"
	"sjsage522/partwatch/logger"
	perrors "sjsage522/partwatch/pkg/errors"
	"sjsage522/partwatch/services/publisher"

	"github.com/shopspring/decimal"
)

// Notifier delivers one qualifying offer
type Notifier interface {
	Notify(ctx context.Context, offer crawler.Offer, ceiling decimal.Decimal) error
}

// FormatMessage renders the chat message for an offer
func FormatMessage(offer crawler.Offer, ceiling decimal.Decimal) string {
	return fmt.Sprintf("Found part %s under %s€!\n\n%s\nPrice: %s €\nLink: %s",
		offer.Identifier,
		ceiling.String(),
		offer.Title,
		offer.Price.StringFixed(2),
		offer.URL,
	)
}

// ChatNotifier sends offers to the chat as formatted text
type ChatNotifier struct {
	messenger Messenger
	log       *logger.Logger
}

// NewChatNotifier creates a notifier over a messenger
func NewChatNotifier(messenger Messenger) *ChatNotifier {
	return &ChatNotifier{
		messenger: messenger,
		log:       logger.ForNotifier(),
	}
}

// Notify sends the offer message once, without retrying
func (n *ChatNotifier) Notify(ctx context.Context, offer crawler.Offer, ceiling decimal.Decimal) error {
	if err := n.messenger.SendMessage(ctx, FormatMessage(offer, ceiling)); err != nil {
		return perrors.NewDelivery(offer.Identifier, "send chat message", err)
	}

	n.log.Debug().
		Str("identifier", offer.Identifier).
		Str("url", offer.URL).
		Msg("Chat message sent")
	return nil
}

// StreamEvent is the JSON payload appended to the offer feed
type StreamEvent struct {
	crawler.Offer
	Ceiling    decimal.Decimal `json:"ceiling"`
	NotifiedAt time.Time       `json:"notified_at"`
}

// StreamNotifier publishes offers to the offer feed
type StreamNotifier struct {
	publisher publisher.Publisher
	now       func() time.Time
}

// NewStreamNotifier creates a notifier over a publisher
func NewStreamNotifier(pub publisher.Publisher) *StreamNotifier {
	return &StreamNotifier{
		publisher: pub,
		now:       time.Now,
	}
}

// Notify publishes the offer under the "offer" field
func (n *StreamNotifier) Notify(ctx context.Context, offer crawler.Offer, ceiling decimal.Decimal) error {
	data, err := json.Marshal(StreamEvent{
		Offer:      offer,
		Ceiling:    ceiling,
		NotifiedAt: n.now().UTC(),
	})
	if err != nil {
		return perrors.NewPublisher(offer.Identifier, "encode offer", err)
	}

	if err := n.publisher.Publish(ctx, "offer", data); err != nil {
		return perrors.NewPublisher(offer.Identifier, "publish offer", err)
	}
	return nil
}

// Multi fans an offer out to several notifiers.
// Every notifier is tried and failures are joined. When only offer feed
// branches failed the result is a publisher error, since the chat message
// went out; any other failure makes it a delivery error.
type Multi []Notifier

// Notify calls each notifier in order
func (m Multi) Notify(ctx context.Context, offer crawler.Offer, ceiling decimal.Decimal) error {
	var errs []error
	feedOnly := true
	for _, n := range m {
		if err := n.Notify(ctx, offer, ceiling); err != nil {
			errs = append(errs, err)
			if !perrors.Is(err, perrors.ErrorTypePublisher) {
				feedOnly = false
			}
		}
	}
	if len(errs) == 0 {
		return nil
	}
	if feedOnly {
		return perrors.NewPublisher(offer.Identifier, "publish offer", stderrors.Join(errs...))
	}
	return perrors.NewDelivery(offer.Identifier, "notify offer", stderrors.Join(errs...))
}
