package handler

import (
	"context"
	"log/slog"

	"github.com/matthewbaird/rulesetview/internal/event"
)

// recordEvent records a domain event if a recorder is configured. Errors
// are logged but do not fail the request.
func recordEvent(ctx context.Context, rec event.Recorder, evt event.DomainEvent) {
	if rec == nil {
		return
	}
	if err := rec.Record(ctx, evt); err != nil {
		slog.Warn("event recording failed", "type", evt.EventType, "error", err)
	}
}
