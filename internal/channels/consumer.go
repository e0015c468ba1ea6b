package channels

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
	"github.com/nfrund/intake/internal/pubsub"
)

// ConsumeQueue subscribes to the queue channel's topic and logs every message
// pushed to it. It returns once the subscription is set up; consumption stops
// when ctx is cancelled or the subscriber is closed.
func ConsumeQueue(ctx context.Context, sub pubsub.Subscriber, cfg config.PubSub) error {
	event := MessageEvent(cfg)
	err := pubsub.Subscribe(ctx, sub, event, func(ctx context.Context, msg domain.Message, raw pubsub.Message) error {
		slog.InfoContext(ctx, "Pushed to pubsub",
			"bus_topic", event.Name(),
			"msg_id", raw.ID,
			"topic", raw.Metadata[MetaIntakeTopic],
			"description", msg.Description,
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe to %q failed: %w", event.Name(), err)
	}
	return nil
}
