package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
	"github.com/nfrund/intake/internal/pubsub"
)

// MetaIntakeTopic is the bus metadata key holding the message's lowercased topic.
const MetaIntakeTopic = "intake_topic"

// QueueChannel publishes messages on the pub/sub bus.
type QueueChannel struct {
	event     pubsub.Event[domain.Message]
	publisher pubsub.Publisher
}

// NewQueueChannel creates a QueueChannel publishing on the topic derived from cfg.
func NewQueueChannel(cfg config.PubSub, publisher pubsub.Publisher) *QueueChannel {
	return &QueueChannel{
		event:     MessageEvent(cfg),
		publisher: publisher,
	}
}

// MessageEvent is the typed bus event queue channels publish.
func MessageEvent(cfg config.PubSub) pubsub.Event[domain.Message] {
	return pubsub.NewEvent[domain.Message](cfg.Topic())
}

func (c *QueueChannel) Name() string { return string(KindQueue) }

// Send publishes the message as JSON.
func (c *QueueChannel) Send(ctx context.Context, msg domain.Message) error {
	if c.publisher == nil {
		return fmt.Errorf("queue channel has no publisher")
	}
	meta := map[string]string{MetaIntakeTopic: strings.ToLower(msg.Topic)}
	if err := pubsub.Publish(ctx, c.publisher, c.event, msg, meta); err != nil {
		return fmt.Errorf("publish to %q failed: %w", c.event.Name(), err)
	}
	return nil
}
