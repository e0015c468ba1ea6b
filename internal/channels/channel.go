// Package channels contains the notification sinks a message can be
// dispatched to, and the factory that builds them from configuration.
package channels

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
	"github.com/nfrund/intake/internal/pubsub"
)

// Channel delivers a message to an external system.
type Channel interface {
	// Name returns the channel's identifier, used in logs and dispatch results.
	Name() string
	// Send delivers the message. A nil error means the channel accepted it.
	Send(ctx context.Context, msg domain.Message) error
}

// Kind identifies a channel variant in the topic registry.
type Kind string

const (
	KindChat  Kind = "chat"
	KindEmail Kind = "email"
	KindQueue Kind = "queue"
)

// Builder constructs channel instances by kind.
type Builder interface {
	New(kind Kind) (Channel, error)
}

// Factory builds a fresh channel per call from the application configuration.
type Factory struct {
	cfg        *config.Config
	emailer    domain.EmailSender
	publisher  pubsub.Publisher
	httpClient *http.Client
}

// NewFactory creates a Factory. emailer and publisher back the email and
// queue channels; httpClient is used by the chat channel and may be nil.
func NewFactory(cfg *config.Config, emailer domain.EmailSender, publisher pubsub.Publisher, httpClient *http.Client) *Factory {
	return &Factory{
		cfg:        cfg,
		emailer:    emailer,
		publisher:  publisher,
		httpClient: httpClient,
	}
}

// New builds the channel for kind.
func (f *Factory) New(kind Kind) (Channel, error) {
	switch kind {
	case KindChat:
		return NewChatChannel(f.cfg.Slack, f.httpClient), nil
	case KindEmail:
		return NewEmailChannel(f.cfg.Email, f.emailer), nil
	case KindQueue:
		return NewQueueChannel(f.cfg.PubSub, f.publisher), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrChannelNotDefined, kind)
	}
}
