// Package handlerwrapper adapts typed event handlers to watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/envsim/app/eventbus"
	"github.com/Black-And-White-Club/envsim/internal/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is one outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// Metrics observes handler executions.
type Metrics interface {
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}

// WrapTransformingTyped decodes the incoming JSON payload into T, invokes
// handler and turns its results into outgoing messages. Each outgoing message
// carries its destination in the eventbus.MetadataTopic key and inherits the
// correlation ID of the incoming message.
//
// A payload that cannot be decoded is logged and dropped; redelivering it
// would fail the same way.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics Metrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := middleware.MessageCorrelationID(msg)
		ctx := attr.WithCorrelationID(msg.Context(), correlationID)

		var span trace.Span
		if tracer != nil {
			ctx, span = tracer.Start(ctx, handlerName, trace.WithAttributes(
				attribute.String("message.uuid", msg.UUID),
				attribute.String("correlation_id", correlationID),
			))
			defer span.End()
		}

		start := time.Now()
		if metrics != nil {
			metrics.RecordHandlerAttempt(ctx, handlerName)
			defer func() { metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start)) }()
		}

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Failed to decode message payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			if span != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			if metrics != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
			}
			return nil, fmt.Errorf("%s: %w", handlerName, err)
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(r, correlationID)
			if err != nil {
				if metrics != nil {
					metrics.RecordHandlerFailure(ctx, handlerName)
				}
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		if metrics != nil {
			metrics.RecordHandlerSuccess(ctx, handlerName)
		}
		return out, nil
	}
}

// NewMessage encodes r as a watermill message routed by metadata.
func NewMessage(r Result, correlationID string) (*message.Message, error) {
	if r.Topic == "" {
		return nil, eventbus.ErrNoTopic
	}
	body, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}

	m := message.NewMessage(watermill.NewUUID(), body)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(eventbus.MetadataTopic, r.Topic)
	if correlationID != "" {
		middleware.SetCorrelationID(correlationID, m)
	}
	return m, nil
}
