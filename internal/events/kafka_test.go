package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-catalog-service/pkg/logger"
)

type fakeWriter struct {
	sent chan []byte
	err  error
}

func (w *fakeWriter) Publish(ctx context.Context, key, value []byte) error {
	w.sent <- value
	return w.err
}

func TestKafkaPublisher(t *testing.T) {
	w := &fakeWriter{sent: make(chan []byte, 1)}
	p := NewKafkaPublisher(w, time.Second, logger.NewNop())

	p.Publish(context.Background(), Event{
		Type:    TypeFallbackPriceUsed,
		Key:     "A100",
		Payload: map[string]interface{}{"price_list": "Retail"},
	})

	select {
	case raw := <-w.sent:
		var got Event
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != TypeFallbackPriceUsed || got.Key != "A100" || got.OccurredAt.IsZero() {
			t.Errorf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("event not published")
	}
}

func TestKafkaPublisherWriteErrorIsSwallowed(t *testing.T) {
	w := &fakeWriter{sent: make(chan []byte, 1), err: errors.New("broker down")}
	p := NewKafkaPublisher(w, time.Second, logger.NewNop())
	p.Publish(context.Background(), Event{Type: TypeChangesDetected})

	select {
	case <-w.sent:
	case <-time.After(time.Second):
		t.Fatal("writer not called")
	}
}
