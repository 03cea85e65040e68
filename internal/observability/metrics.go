package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the proxy's collectors on a private registry.
// All methods are safe on a nil receiver so callers may run without metrics.
type Metrics struct {
	registry         *prometheus.Registry
	submissions      *prometheus.CounterVec
	submissionTime   *prometheus.HistogramVec
	externalRequests *prometheus.CounterVec
	externalLatency  *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "review_proxy", Name: "submissions_total", Help: "Review submissions by outcome."},
			[]string{"outcome", "status"},
		),
		submissionTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "review_proxy", Name: "submission_duration_seconds",
				Help:    "End-to-end submission handling time.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		externalRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "review_proxy", Name: "external_requests_total", Help: "Outbound data store requests."},
			[]string{"endpoint", "status"},
		),
		externalLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "review_proxy", Name: "external_request_duration_seconds",
				Help:    "Outbound data store request duration.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
	}

	m.registry.MustRegister(
		m.submissions, m.submissionTime, m.externalRequests, m.externalLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSubmission records one handled request
func (m *Metrics) ObserveSubmission(outcome string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome, strconv.Itoa(status)).Inc()
	m.submissionTime.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveExternal records one outbound call; status 0 means no reply
func (m *Metrics) ObserveExternal(endpoint string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.externalRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.externalLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
