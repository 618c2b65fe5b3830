package metrics

import "github.com/prometheus/client_golang/prometheus"

// RewardEventMetrics counts consumed reward events by type and outcome.
type RewardEventMetrics struct {
	events *prometheus.CounterVec
}

func NewRewardEventMetrics(reg prometheus.Registerer) *RewardEventMetrics {
	if reg == nil {
		return &RewardEventMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rewards",
		Name:      "events_total",
		Help:      "Reward events consumed by type and outcome.",
	}, []string{"event_type", "result"})
	reg.MustRegister(events)
	return &RewardEventMetrics{events: events}
}

func (m *RewardEventMetrics) Inc(eventType, result string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}
