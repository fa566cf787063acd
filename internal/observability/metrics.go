// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Scheduler metrics
	TicksTotal        prometheus.Counter
	CampaignsPolled   prometheus.Gauge
	PriceFetches      *prometheus.CounterVec
	PriceFetchLatency prometheus.Histogram

	// Alert metrics
	AlertsFired  prometheus.Counter
	ActionsTotal *prometheus.CounterVec

	// Persistence metrics
	HistoryWrites   *prometheus.CounterVec
	TicksArchived   prometheus.Counter
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Broadcast metrics
	BroadcastsTotal  prometheus.Counter
	ConnectedClients prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "price_sentinel"
	}

	return &Metrics{
		// Scheduler metrics
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "ticks_total",
			Help:      "Total number of polling ticks",
		}),
		CampaignsPolled: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "campaigns_polled",
			Help:      "Number of active campaigns polled on the last tick",
		}),
		PriceFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "price_fetches_total",
			Help:      "Total number of price feed lookups by status",
		}, []string{"status"}),
		PriceFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "price_fetch_latency_seconds",
			Help:      "Price feed lookup latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Alert metrics
		AlertsFired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "fired_total",
			Help:      "Total number of alerts fired",
		}),
		ActionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "actions_total",
			Help:      "Total number of actions executed by kind and status",
		}, []string{"kind", "status"}),

		// Persistence metrics
		HistoryWrites: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "writes_total",
			Help:      "Total number of trigger history writes by status",
		}, []string{"status"}),
		TicksArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "price_ticks_archived_total",
			Help:      "Total number of price ticks archived to ClickHouse",
		}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Broadcast metrics
		BroadcastsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "broadcasts_total",
			Help:      "Total number of envelopes broadcast to clients",
		}),
		ConnectedClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ws",
			Name:      "connected_clients",
			Help:      "Number of connected WebSocket clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTick records one scheduler tick over n campaigns.
func RecordTick(campaigns int) {
	DefaultMetrics.TicksTotal.Inc()
	DefaultMetrics.CampaignsPolled.Set(float64(campaigns))
}

// RecordPriceFetch records a price feed lookup.
func RecordPriceFetch(ok bool, elapsed time.Duration) {
	status := "ok"
	if !ok {
		status = "error"
	}
	DefaultMetrics.PriceFetches.WithLabelValues(status).Inc()
	DefaultMetrics.PriceFetchLatency.Observe(elapsed.Seconds())
}

// RecordAlertFired increments the alerts fired counter.
func RecordAlertFired() {
	DefaultMetrics.AlertsFired.Inc()
}

// RecordAction records one executed action.
func RecordAction(kind string, success bool) {
	status := "ok"
	if !success {
		status = "error"
	}
	DefaultMetrics.ActionsTotal.WithLabelValues(kind, status).Inc()
}

// RecordHistoryWrite records a trigger history append.
func RecordHistoryWrite(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.HistoryWrites.WithLabelValues(status).Inc()
}

// RecordTicksArchived adds n to the archived price ticks counter.
func RecordTicksArchived(n int) {
	DefaultMetrics.TicksArchived.Add(float64(n))
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordBroadcast increments the broadcasts counter.
func RecordBroadcast() {
	DefaultMetrics.BroadcastsTotal.Inc()
}

// SetConnectedClients updates the connected clients gauge.
func SetConnectedClients(n int) {
	DefaultMetrics.ConnectedClients.Set(float64(n))
}
