package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Inventory operation labels.
const (
	OpPlace  = "place"
	OpReturn = "return"
	OpIssue  = "issue"
)

// InventoryMetrics tracks basket mutations. A nil receiver is a no-op.
type InventoryMetrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	retries     *prometheus.CounterVec
	consistency prometheus.Counter
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "operations_total",
		Help:      "Inventory operations by outcome.",
	}, []string{"op", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "operation_duration_seconds",
		Help:      "Latency of inventory operations including retries.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	retries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "retries_total",
		Help:      "Transactions retried after a transient storage failure.",
	}, []string{"op"})
	consistency := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "inventory",
		Name:      "consistency_errors_total",
		Help:      "Counter/ledger disagreements detected.",
	})
	reg.MustRegister(operations, duration, retries, consistency)
	return &InventoryMetrics{
		operations:  operations,
		duration:    duration,
		retries:     retries,
		consistency: consistency,
	}
}

// Observe records one finished operation.
func (m *InventoryMetrics) Observe(op, result string, duration time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
	m.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncRetry counts one retried transaction.
func (m *InventoryMetrics) IncRetry(op string) {
	if m == nil || m.retries == nil {
		return
	}
	m.retries.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncConsistencyError counts one detected counter/ledger disagreement.
func (m *InventoryMetrics) IncConsistencyError() {
	if m == nil || m.consistency == nil {
		return
	}
	m.consistency.Inc()
}

// ConsistencyErrors exposes the drift counter for assertions.
func (m *InventoryMetrics) ConsistencyErrors() prometheus.Counter {
	if m == nil {
		return nil
	}
	return m.consistency
}
