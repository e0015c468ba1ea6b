package pubsub

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// propagator carries span context across the bus in message metadata.
var propagator = propagation.TraceContext{}

// isPropagationKey reports whether key is written by the propagator.
func isPropagationKey(key string) bool {
	for _, f := range propagator.Fields() {
		if f == key {
			return true
		}
	}
	return false
}

// tracingPublisher wraps a watermill publisher, starting a producer span per
// message and injecting its context into the message metadata.
type tracingPublisher struct {
	publisher message.Publisher
	tracer    trace.Tracer
}

func newTracingPublisher(publisher message.Publisher, tracer trace.Tracer) *tracingPublisher {
	return &tracingPublisher{publisher: publisher, tracer: tracer}
}

// Publish wraps the publish operation with tracing.
func (p *tracingPublisher) Publish(topic string, messages ...*message.Message) error {
	spans := make([]trace.Span, 0, len(messages))
	for _, msg := range messages {
		ctx, span := p.tracer.Start(msg.Context(), "pubsub.publish "+topic,
			trace.WithSpanKind(trace.SpanKindProducer),
			trace.WithAttributes(messageAttributes(topic, "publish", msg)...),
		)
		propagator.Inject(ctx, propagation.MapCarrier(msg.Metadata))
		msg.SetContext(ctx)
		spans = append(spans, span)
	}

	err := p.publisher.Publish(topic, messages...)
	for _, span := range spans {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
	return err
}

func (p *tracingPublisher) Close() error {
	return p.publisher.Close()
}

// startProcessSpan starts a consumer span linked to the publisher's span
// through the message metadata.
func startProcessSpan(ctx context.Context, tracer trace.Tracer, topic string, msg *message.Message) (context.Context, trace.Span) {
	ctx = propagator.Extract(ctx, propagation.MapCarrier(msg.Metadata))
	return tracer.Start(ctx, "pubsub.process "+topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(messageAttributes(topic, "process", msg)...),
	)
}

func messageAttributes(topic, operation string, msg *message.Message) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("messaging.system", "watermill"),
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.destination", topic),
		attribute.String("messaging.message_id", msg.UUID),
		attribute.Int("messaging.message_payload_size_bytes", len(msg.Payload)),
	}
}
