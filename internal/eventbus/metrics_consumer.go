package eventbus

import (
	"context"
	"encoding/json"

	"github.com/matthewbaird/rulesetview/internal/event"
	"github.com/matthewbaird/rulesetview/internal/metrics"
)

// MetricsConsumer counts events and derives reimport and session gauges
// from them.
type MetricsConsumer struct {
	metrics *metrics.Metrics
}

func NewMetricsConsumer(m *metrics.Metrics) *MetricsConsumer {
	return &MetricsConsumer{metrics: m}
}

func (c *MetricsConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.metrics.ObserveEvent(evt.EventType)
	switch evt.EventType {
	case event.TypeMetadataReimport:
		var p event.MetadataReimportedPayload
		if err := json.Unmarshal(evt.Payload, &p); err != nil {
			return err
		}
		c.metrics.AddReimported(p.After - p.Before)
	case event.TypeSessionOpened:
		c.metrics.SessionOpened()
	case event.TypeSessionClosed:
		c.metrics.SessionClosed()
	}
	return nil
}
