package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
)

// EmailChannel forwards messages by email through a domain.EmailSender.
type EmailChannel struct {
	to     string
	sender domain.EmailSender
}

// NewEmailChannel creates an EmailChannel delivering to cfg.To.
func NewEmailChannel(cfg config.Email, sender domain.EmailSender) *EmailChannel {
	return &EmailChannel{to: cfg.To, sender: sender}
}

func (c *EmailChannel) Name() string { return string(KindEmail) }

// Send emails the message. The subject carries the lowercased topic.
func (c *EmailChannel) Send(ctx context.Context, msg domain.Message) error {
	if c.sender == nil {
		return fmt.Errorf("email channel has no sender")
	}
	subject := fmt.Sprintf("[%s] New message", strings.ToLower(msg.Topic))
	if err := c.sender.Send(ctx, c.to, subject, msg.Description); err != nil {
		return fmt.Errorf("email to %q failed: %w", c.to, err)
	}
	return nil
}
