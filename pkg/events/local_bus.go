package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const localTopic = "events"

type localEnvelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// LocalBus delivers events over an in-process watermill channel when no broker
// is configured. Publish returns once every subscriber has acked the event.
type LocalBus struct {
	pubSub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

func NewLocalBus(logger watermill.LoggerAdapter) *LocalBus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &LocalBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, logger),
		logger: logger,
	}
}

// Subscribe runs handler for every published event until ctx ends or the bus
// is closed. Handler errors are logged and the event is acked regardless.
func (b *LocalBus) Subscribe(ctx context.Context, handler Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, localTopic)
	if err != nil {
		return fmt.Errorf("subscribe to local events: %w", err)
	}

	go func() {
		for msg := range messages {
			var env localEnvelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				b.logger.Error("Dropping malformed event", err, watermill.LogFields{"message_uuid": msg.UUID})
				msg.Ack()
				continue
			}
			event := BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
			if err := handler(msg.Context(), event); err != nil {
				b.logger.Error("Event handler failed", err, watermill.LogFields{"event": env.Type})
			}
			msg.Ack()
		}
	}()
	return nil
}

// Publish ignores ctx; gochannel does not carry it to subscribers.
func (b *LocalBus) Publish(_ context.Context, event Event) error {
	data, err := json.Marshal(localEnvelope{Type: event.EventType(), Data: event.Payload(), OccurredAt: event.Timestamp()})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return b.pubSub.Publish(localTopic, message.NewMessage(watermill.NewUUID(), data))
}

func (b *LocalBus) Close() error {
	return b.pubSub.Close()
}
