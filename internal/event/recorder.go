// Package event provides domain event recording. Events are written to the
// activity store, then published to the in-process event bus for
// downstream consumers.
package event

import (
	"context"

	"github.com/matthewbaird/rulesetview/internal/activity"
)

// Recorder writes domain events to the activity store.
type Recorder interface {
	Record(ctx context.Context, evt DomainEvent) error
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// ActivityRecorder implements Recorder by writing an activity entry per
// event. If a Publisher is set, the event is also published after the store
// write succeeds.
type ActivityRecorder struct {
	store activity.Store
	bus   Publisher
}

// NewActivityRecorder creates a new ActivityRecorder backed by the given store.
func NewActivityRecorder(store activity.Store) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// SetPublisher attaches an event bus. Events are published after store writes.
func (r *ActivityRecorder) SetPublisher(p Publisher) {
	r.bus = p
}

// Record writes evt to the store and publishes it.
func (r *ActivityRecorder) Record(ctx context.Context, evt DomainEvent) error {
	entry := activity.Entry{
		EventID:    evt.ID,
		EventType:  evt.EventType,
		OccurredAt: evt.OccurredAt,
		Ruleset:    evt.Ruleset,
		Summary:    evt.Summary,
		Category:   evt.Category,
		Weight:     evt.Weight,
		Payload:    evt.Payload,
	}
	if err := r.store.WriteEntries(ctx, []activity.Entry{entry}); err != nil {
		return err
	}

	if r.bus != nil {
		r.bus.Publish(ctx, evt)
	}
	return nil
}

// Discard is a Recorder that drops every event.
var Discard Recorder = discard{}

type discard struct{}

func (discard) Record(context.Context, DomainEvent) error { return nil }
