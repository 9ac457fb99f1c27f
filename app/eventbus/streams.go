package eventbus

import (
	"context"
	"fmt"
	"log/slog"
)

// Streams maps each JetStream stream to the subjects it captures.
var Streams = map[string][]string{
	"scenario": {"scenario.>"},
	"activity": {"activity.>"},
}

// InitializeStreams creates the necessary streams during application startup.
func InitializeStreams(ctx context.Context, bus EventBus, logger *slog.Logger) error {
	for name, subjects := range Streams {
		if err := bus.CreateStream(ctx, name, subjects...); err != nil {
			logger.ErrorContext(ctx, "Failed to create JetStream stream", slog.String("stream", name), slog.Any("error", err))
			return fmt.Errorf("stream %s: %w", name, err)
		}
	}
	logger.InfoContext(ctx, "JetStream streams initialized")
	return nil
}
