// Package dispatch ties authentication, validation and topic lookup together
// and fans a message out to its channels.
package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nfrund/intake/internal/channels"
	"github.com/nfrund/intake/internal/domain"
	"github.com/nfrund/intake/internal/logging"
)

// Authenticator verifies the caller's token.
type Authenticator interface {
	Check(token string) error
}

// Parser turns a raw body into a validated message.
type Parser interface {
	Parse(raw []byte) (domain.Message, error)
}

// Router resolves the channels a topic is dispatched to.
type Router interface {
	Lookup(topic string) ([]channels.Kind, bool)
}

// Outcome records what happened when one channel was asked to send.
type Outcome struct {
	Channel  string
	Err      error
	Duration time.Duration
}

// OK reports whether the channel accepted the message.
func (o Outcome) OK() bool { return o.Err == nil }

// Result describes a completed dispatch. Channel failures live here and are
// never returned as errors from Handle.
type Result struct {
	ID       uuid.UUID
	Message  domain.Message
	Outcomes []Outcome
}

// Failed returns the outcomes whose channel reported an error.
func (r *Result) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			failed = append(failed, o)
		}
	}
	return failed
}

// Dispatcher handles intake requests end to end.
type Dispatcher struct {
	auth    Authenticator
	parser  Parser
	router  Router
	builder channels.Builder
}

// New creates a Dispatcher.
func New(auth Authenticator, parser Parser, router Router, builder channels.Builder) *Dispatcher {
	return &Dispatcher{
		auth:    auth,
		parser:  parser,
		router:  router,
		builder: builder,
	}
}

// Handle authenticates the token, validates raw, and sends the message to
// every channel mapped to its topic, one after the other in registry order.
// Authentication and validation errors abort before any channel is touched.
func (d *Dispatcher) Handle(ctx context.Context, token string, raw []byte) (*Result, error) {
	if err := d.auth.Check(token); err != nil {
		return nil, err
	}

	msg, err := d.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	kinds, ok := d.router.Lookup(msg.Topic)
	if !ok {
		// The parser already rejects unknown topics; this only guards a
		// parser and router built from different registries.
		return nil, &domain.UnknownTopicError{Topic: msg.Topic}
	}

	return d.Send(ctx, msg, kinds), nil
}

// Send delivers msg to each channel kind in order. A failing channel is
// recorded and the remaining channels are still attempted.
func (d *Dispatcher) Send(ctx context.Context, msg domain.Message, kinds []channels.Kind) *Result {
	logger := logging.FromContext(ctx)
	result := &Result{
		ID:       uuid.New(),
		Message:  msg,
		Outcomes: make([]Outcome, 0, len(kinds)),
	}
	logger = logger.With("dispatch_id", result.ID.String(), "topic", msg.Topic)

	for _, kind := range kinds {
		start := time.Now()
		outcome := Outcome{Channel: string(kind)}

		ch, err := d.builder.New(kind)
		if err == nil {
			outcome.Channel = ch.Name()
			err = ch.Send(ctx, msg)
		}
		outcome.Err = err
		outcome.Duration = time.Since(start)
		result.Outcomes = append(result.Outcomes, outcome)

		if err != nil {
			logger.Warn("Channel send failed", "channel", outcome.Channel, "error", err)
			continue
		}
		logger.Debug("Channel send succeeded", "channel", outcome.Channel, "duration", outcome.Duration)
	}

	logger.Info("Message dispatched",
		"channels", len(result.Outcomes),
		"failed", len(result.Failed()),
	)
	return result
}
