package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndObserve(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := &Metrics{}
	m.Register(registry)
	// second registration must not panic on duplicate collectors
	m.Register(registry)

	m.ObserveAttempt("manual", "pending")
	m.ObserveAttempt("manual", "pending")
	m.ObserveAttempt("standard", "correct")
	m.IncApproval()
	m.IncRejection()
	m.IncRejection()
	m.ObserveRequest("GET", "/manual/grade", 200, 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("manual", "pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("standard", "correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.approvals))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.rejections))

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "manualctf_http_request_duration_seconds")
}

func TestUnregisteredMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAttempt("manual", "pending")
		m.IncApproval()
	})

	empty := &Metrics{}
	assert.NotPanics(t, func() {
		empty.IncRejection()
		empty.ObserveRequest("GET", "", 404, time.Millisecond)
	})
}

func TestDefaultIsShared(t *testing.T) {
	require.Same(t, Default(), Default())
	Default().IncApproval()
	assert.GreaterOrEqual(t, testutil.ToFloat64(Default().approvals), 1.0)
}
