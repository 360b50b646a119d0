package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
	"go.uber.org/zap"
)

// MessageWriter is the slice of broker.KafkaProducer the publisher needs.
type MessageWriter interface {
	Publish(ctx context.Context, key, value []byte) error
}

type KafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
	logger  logger.ZapLogger
}

func NewKafkaPublisher(writer MessageWriter, timeout time.Duration, log logger.ZapLogger) *KafkaPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &KafkaPublisher{writer: writer, timeout: timeout, logger: log}
}

// Publish sends asynchronously, detached from the request context so a
// finished request does not cancel delivery.
func (p *KafkaPublisher) Publish(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("failed to marshal diagnostic event", zap.String("event_type", e.Type), zap.Error(err))
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()
		if err := p.writer.Publish(sendCtx, []byte(e.Key), data); err != nil {
			p.logger.Warn("failed to publish diagnostic event",
				zap.String("event_type", e.Type),
				zap.String("key", e.Key),
				zap.Error(err),
			)
		}
	}()
}
