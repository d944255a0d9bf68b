// Package metrics defines the Prometheus collectors exported on /metrics.
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

type Metrics struct {
	HTTPRequests  *prometheus.CounterVec
	HTTPLatency   *prometheus.HistogramVec
	OTPIssued     *prometheus.CounterVec
	AuditFailures *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWith(reg, reg)
}

func NewWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hisabkitab_http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "endpoint", "status"}),

		HTTPLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hisabkitab_http_request_duration_seconds",
			Help:    "Request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "endpoint"}),

		OTPIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hisabkitab_otp_issued_total",
			Help: "One-time passcodes issued, by purpose and delivery result",
		}, []string{"purpose", "result"}),

		AuditFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hisabkitab_changelog_failures_total",
			Help: "Transaction mutations whose change-log entry could not be written",
		}, []string{"action"}),

		gatherer: g,
	}
}

func (m *Metrics) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
