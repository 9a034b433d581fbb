package eventbus

import (
	"context"
	"log/slog"

	"github.com/matthewbaird/rulesetview/internal/event"
)

// LogConsumer logs all domain events.
type LogConsumer struct {
	logger *slog.Logger
}

func NewLogConsumer(logger *slog.Logger) *LogConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogConsumer{logger: logger}
}

func (c *LogConsumer) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	level := slog.LevelInfo
	switch evt.Weight {
	case "critical":
		level = slog.LevelError
	case "major":
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, evt.Summary,
		"event", evt.EventType,
		"category", evt.Category,
		"ruleset", evt.Ruleset,
		"id", evt.ID)
	return nil
}
