package infra

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process collectors. Every method is safe on a nil
// receiver so components can run without metrics in tests.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	outboxPublished   *prometheus.CounterVec
	predictionsPlaced prometheus.Counter
	pointsStaked      prometheus.Counter
	chatMessages      prometheus.Counter
	wsConnections     prometheus.Gauge
}

// NewMetrics creates and registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cissero_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cissero_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cissero_outbox_messages_total",
			Help: "Outbox notifications by event type and result (published, failed, dropped).",
		}, []string{"event_type", "result"}),
		predictionsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cissero_predictions_placed_total",
			Help: "Predictions placed.",
		}),
		pointsStaked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cissero_points_staked_total",
			Help: "Points staked on predictions.",
		}),
		chatMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cissero_chat_messages_total",
			Help: "Chat messages posted.",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cissero_ws_connections",
			Help: "Open WebSocket connections.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.outboxPublished,
		m.predictionsPlaced,
		m.pointsStaked,
		m.chatMessages,
		m.wsConnections,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) OutboxResult(eventType, result string) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(eventType, result).Inc()
}

func (m *Metrics) PredictionPlaced(amount int64) {
	if m == nil {
		return
	}
	m.predictionsPlaced.Inc()
	m.pointsStaked.Add(float64(amount))
}

func (m *Metrics) ChatPosted() {
	if m == nil {
		return
	}
	m.chatMessages.Inc()
}

func (m *Metrics) WSConnected(delta int) {
	if m == nil {
		return
	}
	m.wsConnections.Add(float64(delta))
}
