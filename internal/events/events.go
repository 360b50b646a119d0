package events

import (
	"context"
	"time"
)

const (
	TypeFallbackPriceUsed = "price.fallback_used"
	TypeExchangeRateError = "price.exchange_rate_error"
	TypeChangesDetected   = "catalog.changes_detected"
)

// Event is a non-fatal diagnostic emitted by the resolvers.
type Event struct {
	Type       string                 `json:"event_type"`
	Key        string                 `json:"key"`
	Payload    map[string]interface{} `json:"payload"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// Publisher delivers diagnostics. Implementations must not block the caller
// on delivery failures.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, Event) {}
