package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process-wide Prometheus metrics that are not owned by a
// single module.
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	OutboxPublished     prometheus.Counter
	OutboxFailed        prometheus.Counter
}

// NewRegistry returns a registry with the Go and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates and registers the platform metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "verireg_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern, method and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "verireg_outbox_published_total",
			Help: "Outbox entries relayed to Kafka",
		}),
		OutboxFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "verireg_outbox_failed_total",
			Help: "Outbox relay attempts rejected by the producer",
		}),
	}
}

func (m *Metrics) ObserveHTTPRequest(route, method, status string, seconds float64) {
	m.HTTPRequestDuration.WithLabelValues(route, method, status).Observe(seconds)
}

func (m *Metrics) IncOutboxPublished() {
	m.OutboxPublished.Inc()
}

func (m *Metrics) IncOutboxFailed() {
	m.OutboxFailed.Inc()
}

// Handler exposes gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
