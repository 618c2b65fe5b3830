package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestInventoryMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInventoryMetrics(reg)

	m.Observe(OpPlace, "ok", 10*time.Millisecond)
	m.Observe(OpPlace, "ok", 5*time.Millisecond)
	m.Observe(OpPlace, "insufficient_stock", time.Millisecond)
	m.IncRetry(OpReturn)
	m.IncConsistencyError()

	mfs, err := reg.Gather()
	require.NoError(t, err)

	ops := findMetricFamily(mfs, "fruittree_inventory_operations_total")
	require.NotNil(t, ops)
	var okCount float64
	for _, metric := range ops.GetMetric() {
		if matchesLabel(metric.GetLabel(), "result", "ok") {
			okCount = metric.GetCounter().GetValue()
		}
	}
	require.Equal(t, float64(2), okCount)

	retries, err := fetchCounterValue(mfs, "fruittree_inventory_retries_total", "op", OpReturn)
	require.NoError(t, err)
	require.Equal(t, float64(1), retries)

	consistency := findMetricFamily(mfs, "fruittree_inventory_consistency_errors_total")
	require.NotNil(t, consistency)
	require.Equal(t, float64(1), consistency.GetMetric()[0].GetCounter().GetValue())
}

func TestNilMetricsAreNoops(t *testing.T) {
	var inv *InventoryMetrics
	inv.Observe(OpIssue, "ok", time.Second)
	inv.IncRetry(OpIssue)
	inv.IncConsistencyError()

	var rewards *RewardEventMetrics
	rewards.Inc("account.created", "ok")

	unregistered := NewInventoryMetrics(nil)
	unregistered.Observe(OpPlace, "ok", time.Second)
}

func TestRewardEventMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRewardEventMetrics(reg)
	m.Inc("challenge.approved", "issued")
	m.Inc("challenge.approved", "issued")

	mfs, err := reg.Gather()
	require.NoError(t, err)
	got, err := fetchCounterValue(mfs, "fruittree_rewards_events_total", "event_type", "challenge.approved")
	require.NoError(t, err)
	require.Equal(t, float64(2), got)
}
