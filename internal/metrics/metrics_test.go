package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads a labelled counter back from the default registry.
func counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("test_endpoint")
	})
}

func TestCounters(t *testing.T) {
	Register()

	before := counterValue(t, "hotelbook_admissions_total", "outcome", "unavailable")
	IncAdmission("unavailable")
	IncAdmission("unavailable")
	assert.Equal(t, before+2, counterValue(t, "hotelbook_admissions_total", "outcome", "unavailable"))

	before = counterValue(t, "hotelbook_booking_conflicts_total", "room_type", "Suite")
	IncConflict("Suite")
	assert.Equal(t, before+1, counterValue(t, "hotelbook_booking_conflicts_total", "room_type", "Suite"))

	before = counterValue(t, "hotelbook_status_transitions_total", "to", "cancelled")
	IncTransition("cancelled")
	assert.Equal(t, before+1, counterValue(t, "hotelbook_status_transitions_total", "to", "cancelled"))

	before = counterValue(t, "hotelbook_snapshot_cache_total", "result", "hit")
	IncSnapshot("hit")
	assert.Equal(t, before+1, counterValue(t, "hotelbook_snapshot_cache_total", "result", "hit"))
}
