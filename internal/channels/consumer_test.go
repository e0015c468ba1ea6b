package channels

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfrund/intake/internal/config"
	"github.com/nfrund/intake/internal/domain"
	"github.com/nfrund/intake/internal/pubsub"
)

// syncBuffer guards a bytes.Buffer shared with the subscriber goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsumeQueue_LogsPublishedMessages(t *testing.T) {
	out := &syncBuffer{}
	original := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(out, nil)))
	defer slog.SetDefault(original)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bridge := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bridge.Close() })

	cfg := config.PubSub{ProjectID: "landbot", SubscriptionID: "intake"}
	require.NoError(t, ConsumeQueue(ctx, bridge, cfg))

	queue := NewQueueChannel(cfg, bridge)
	require.NoError(t, queue.Send(ctx, domain.Message{Topic: "ANY", Description: "queued"}))

	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Pushed to pubsub")
	}, 2*time.Second, 10*time.Millisecond)

	logged := out.String()
	assert.Contains(t, logged, "bus_topic=projects/landbot/subscriptions/intake")
	assert.Contains(t, logged, "topic=any")
	assert.Contains(t, logged, "description=queued")
}
