package channels

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
)

// ChatChannel posts messages to a Slack channel.
// Without an API key it only logs what it would have sent.
type ChatChannel struct {
	channel string
	client  *slack.Client
}

// NewChatChannel creates a ChatChannel from the Slack configuration.
func NewChatChannel(cfg config.Slack, httpClient *http.Client) *ChatChannel {
	c := &ChatChannel{channel: cfg.Channel}
	if cfg.APIKey == "" {
		return c
	}

	var opts []slack.Option
	if cfg.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(cfg.APIURL))
	}
	if httpClient != nil {
		opts = append(opts, slack.OptionHTTPClient(httpClient))
	}
	c.client = slack.New(cfg.APIKey, opts...)
	return c
}

func (c *ChatChannel) Name() string { return string(KindChat) }

// Send posts the message text to the configured channel.
func (c *ChatChannel) Send(ctx context.Context, msg domain.Message) error {
	text := formatText(msg)
	if c.client == nil {
		slog.InfoContext(ctx, "Sent to Slack (logged)", "channel", c.channel, "topic", msg.Topic, "text", text)
		return nil
	}

	channelID, ts, err := c.client.PostMessageContext(ctx, c.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack post to %q failed: %w", c.channel, err)
	}
	slog.InfoContext(ctx, "Sent to Slack", "channel", channelID, "ts", ts, "topic", msg.Topic)
	return nil
}

func formatText(msg domain.Message) string {
	return fmt.Sprintf("[%s] %s", msg.Topic, msg.Description)
}
