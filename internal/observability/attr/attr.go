// Package attr provides typed slog attributes used across modules.
package attr

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

type ctxKey string

// CorrelationIDKey is the context key carrying the request correlation ID.
const CorrelationIDKey ctxKey = "correlation_id"

// WithCorrelationID stores a correlation ID on the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCorrelationID returns the correlation ID attribute for ctx, or an
// empty attribute when none is set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok && id != "" {
		return slog.String(middleware.CorrelationIDMetadataKey, id)
	}
	return slog.Attr{}
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Any(key string, value any) slog.Attr { return slog.Any(key, value) }

func Time(key string, value time.Time) slog.Attr { return slog.Time(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

func UserID(value string) slog.Attr { return slog.String("user_id", value) }

func Fingerprint(value string) slog.Attr { return slog.String("fingerprint", value) }

// Error renders err as a string attribute; a nil error yields an empty value.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
