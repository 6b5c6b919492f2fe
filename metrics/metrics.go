// Package metrics exposes Prometheus counters for submissions, grading and
// HTTP traffic.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "manualctf"

// Metrics groups the application collectors. The zero value is usable and
// records nothing until Register is called.
type Metrics struct {
	attempts        *prometheus.CounterVec
	approvals       prometheus.Counter
	rejections      prometheus.Counter
	requestDuration *prometheus.HistogramVec

	registerOnce sync.Once
}

// Register creates the collectors on registry. Subsequent calls are no-ops.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.attempts = factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Total number of challenge attempts by challenge type and outcome",
		}, []string{"type", "outcome"})

		m.approvals = factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_approvals_total",
			Help:      "Total number of pending submissions approved by a judge",
		})

		m.rejections = factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manual_rejections_total",
			Help:      "Total number of pending submissions rejected by a judge",
		})

		m.requestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
	})
}

// ObserveAttempt counts one attempt. outcome is correct, incorrect or pending.
func (m *Metrics) ObserveAttempt(challengeType, outcome string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(challengeType, outcome).Inc()
}

func (m *Metrics) IncApproval() {
	if m == nil || m.approvals == nil {
		return
	}
	m.approvals.Inc()
}

func (m *Metrics) IncRejection() {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.Inc()
}

// ObserveRequest records the latency of one HTTP request. route is the
// matched gin route pattern, not the raw path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

var (
	defaultMetrics  = &Metrics{}
	defaultRegistry = prometheus.NewRegistry()
)

// Default returns the process-wide metrics, registered on Registry().
func Default() *Metrics {
	defaultMetrics.Register(defaultRegistry)
	return defaultMetrics
}

// Registry is the registry served on the metrics endpoint.
func Registry() *prometheus.Registry {
	return defaultRegistry
}
