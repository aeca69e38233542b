// Package metrics provides Prometheus collectors for the pokerbook API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pokerbook"

// Manager owns the registry and every collector the service records into.
// A nil *Manager is valid and records nothing.
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	settlementsComputed prometheus.Counter
	settlementTransfers prometheus.Histogram
	zeroSumViolations   prometheus.Counter

	summaryDuration prometheus.Histogram
	summaryErrors   prometheus.Counter
}

// NewManager registers all collectors on a fresh registry, plus Go runtime
// and process collectors.
func NewManager() *Manager {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Manager{
		registry: reg,
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status code",
		}, []string{"route", "method", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		settlementsComputed: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "computed_total",
			Help:      "Total number of successful settlement calculations",
		}),
		settlementTransfers: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "transfers",
			Help:      "Number of transfers produced per settlement calculation",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		}),
		zeroSumViolations: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "zero_sum_violations_total",
			Help:      "Total number of settlement inputs rejected because balances did not sum to zero",
		}),
		summaryDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "summary",
			Name:      "duration_seconds",
			Help:      "Time spent computing a session summary",
			Buckets:   prometheus.DefBuckets,
		}),
		summaryErrors: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "summary",
			Name:      "errors_total",
			Help:      "Total number of failed session summary computations",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Manager) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records one served request
func (m *Manager) ObserveHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// SettlementComputed records a successful calculation and its transfer count
func (m *Manager) SettlementComputed(transfers int) {
	if m == nil {
		return
	}
	m.settlementsComputed.Inc()
	m.settlementTransfers.Observe(float64(transfers))
}

// ZeroSumViolation records a rejected settlement input
func (m *Manager) ZeroSumViolation() {
	if m == nil {
		return
	}
	m.zeroSumViolations.Inc()
}

// ObserveSummary records one summary computation
func (m *Manager) ObserveSummary(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.summaryDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.summaryErrors.Inc()
	}
}
