package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"xlmstake/events"
)

type eventMetrics struct {
	emitted *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking events.Emitter activity
// across the five engines, segmented by the dotted event type (e.g.
// "staking.deposit", "amm.swap").
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			emitted: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "xlmstake",
				Subsystem: "events",
				Name:      "emitted_total",
				Help:      "Count of protocol events emitted, segmented by event type.",
			}, []string{"type"}),
		}
		prometheus.MustRegister(eventRegistry.emitted)
	})
	return eventRegistry
}

// RecordEmitted increments the counter for the supplied dotted event type.
func (m *eventMetrics) RecordEmitted(eventType string) {
	if m == nil {
		return
	}
	normalized := strings.TrimSpace(eventType)
	if normalized == "" {
		normalized = "unknown"
	}
	m.emitted.WithLabelValues(normalized).Inc()
}

// MetricsEmitter decorates an events.Emitter, counting every event by type
// before forwarding it to inner (typically an events.Recorder).
type MetricsEmitter struct {
	inner events.Emitter
}

// WrapEmitter builds a MetricsEmitter around inner.
func WrapEmitter(inner events.Emitter) *MetricsEmitter {
	return &MetricsEmitter{inner: inner}
}

func (w *MetricsEmitter) Emit(evt *events.Event) {
	Events().RecordEmitted(evt.Type)
	w.inner.Emit(evt)
}
