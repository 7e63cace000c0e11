// Package metrics holds the Prometheus collectors shared by the server.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	aggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "availability_aggregation_duration_seconds",
			Help:    "Time spent reading upstream sources and building the unit catalog",
			Buckets: prometheus.DefBuckets,
		},
	)

	aggregationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "availability_aggregation_failures_total",
			Help: "Number of aggregation passes aborted by an upstream read error",
		},
	)

	catalogUnits = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "availability_catalog_units",
			Help: "Number of units in the most recent catalog built by the sync monitor",
		},
	)

	lastSyncTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "availability_last_sync_timestamp_seconds",
			Help: "Unix time of the latest upstream sync seen by the sync monitor",
		},
	)
)

// Middleware records request counts and latencies per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		httpRequestsTotal.With(labels).Inc()
		httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// ObserveAggregation records one aggregation pass.
func ObserveAggregation(elapsed time.Duration, err error) {
	aggregationDuration.Observe(elapsed.Seconds())
	if err != nil {
		aggregationFailures.Inc()
	}
}

// SetCatalogState publishes the size and sync time of the latest catalog.
func SetCatalogState(units int, syncedAt time.Time) {
	catalogUnits.Set(float64(units))
	if !syncedAt.IsZero() {
		lastSyncTimestamp.Set(float64(syncedAt.Unix()))
	}
}
