package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// OrderItemsSubmitted counts persisted order items per station.
	OrderItemsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_items_submitted_total",
			Help: "Total number of order items accepted",
		},
		[]string{"destination"},
	)

	SubmissionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_submissions_rejected_total",
			Help: "Total number of rejected order submissions by error kind",
		},
		[]string{"kind"},
	)

	ItemTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_item_transitions_total",
			Help: "Total number of applied order item status transitions",
		},
		[]string{"from", "to"},
	)

	QueueCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kds_queue_cache_lookups_total",
			Help: "Station queue cache lookups by result",
		},
		[]string{"result"},
	)

	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_webhook_events_total",
			Help: "Audit webhook deliveries by result",
		},
		[]string{"result"},
	)

	KdsClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kds_websocket_clients",
			Help: "Number of connected KDS websocket clients",
		},
	)

	KdsClientsEvicted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kds_websocket_clients_evicted_total",
			Help: "KDS websocket clients dropped for falling behind or failing a write",
		},
		[]string{"reason"},
	)
)

// PrometheusMiddleware records count and latency per route.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
