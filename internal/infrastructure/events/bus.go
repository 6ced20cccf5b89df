// Package events carries access events (sign-in, sign-out, role changes)
// between the services that cause them and the session registry.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/fieldsales/visit-tracker/internal/core/domain"
)

// TopicAccess is the single topic all access events travel on.
const TopicAccess = "access.events"

const outputBuffer = 256

// Bus is an in-process publisher/subscriber for domain.AccessEvent. Publish
// waits for subscribers to acknowledge, which keeps events in publish order.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            outputBuffer,
			BlockPublishUntilSubscriberAck: true,
		}, newLoggerAdapter(log)),
		log:    log,
	}
}

// Publish encodes and sends event. Events published with no subscriber are dropped.
func (b *Bus) Publish(ctx context.Context, event domain.AccessEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode access event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("kind", string(event.Kind))
	msg.SetContext(context.WithoutCancel(ctx))

	if err := b.pubsub.Publish(TopicAccess, msg); err != nil {
		return fmt.Errorf("publish access event: %w", err)
	}
	return nil
}

// Subscribe delivers every event to handle until ctx is cancelled or the bus
// is closed. Undecodable messages are logged and acknowledged.
func (b *Bus) Subscribe(ctx context.Context, handle func(context.Context, domain.AccessEvent)) error {
	messages, err := b.pubsub.Subscribe(ctx, TopicAccess)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicAccess, err)
	}

	go func() {
		for msg := range messages {
			var event domain.AccessEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.log.Error().Err(err).Str("message_uuid", msg.UUID).Msg("dropping undecodable access event")
				msg.Ack()
				continue
			}
			handle(msg.Context(), event)
			msg.Ack()
		}
	}()
	return nil
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
