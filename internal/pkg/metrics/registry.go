// Package metrics holds the Prometheus collectors of the board. Everything is
// registered on the default registry and served by promhttp on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "projectboard"

// nativeHistogram builds a sparse histogram vector; latencies and row
// counts span several orders of magnitude, so fixed buckets fit poorly.
func nativeHistogram(subsystem, name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:                       namespace,
			Subsystem:                       subsystem,
			Name:                            name,
			Help:                            help,
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: time.Hour,
		},
		labels,
	)
}

func counter(subsystem, name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Subsystem: subsystem, Name: name, Help: help},
		labels,
	)
}

func gauge(name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
}

// Repositories
var (
	DBOperations   = counter("db", "operations_total", "Database operations by repository, operation, and status", "repo", "operation", "status")
	DBErrors       = counter("db", "errors_total", "Database errors by repository, operation, and error type", "repo", "operation", "error_type")
	DBDuration     = nativeHistogram("db", "operation_duration_ms", "Database operation duration in milliseconds", "repo", "operation")
	DBRowsAffected = nativeHistogram("db", "rows_affected", "Rows affected by database writes", "repo", "operation")
	DBRowsReturned = nativeHistogram("db", "rows_returned", "Rows returned by database reads", "repo", "operation")
)

// Services
var (
	ServiceOperations = counter("service", "operations_total", "Service operations by service, method, and status", "service", "method", "status")
	ServiceDuration   = nativeHistogram("service", "operation_duration_ms", "Service operation duration in milliseconds", "service", "method")

	// HashtagCache counts lookups of the cached hashtag name list by result (hit, miss)
	HashtagCache = counter("service", "hashtag_cache_lookups_total", "Hashtag list cache lookups by result", "result")
)

// HTTP
var (
	HTTPRequests       = counter("http", "requests_total", "HTTP requests by method, route, and status", "method", "path", "status")
	HTTPDuration       = nativeHistogram("http", "request_duration_ms", "HTTP request duration in milliseconds", "method", "path")
	HTTPActiveRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "active_requests",
		Help:      "Number of in-flight HTTP requests",
	})
)

// Board contents, refreshed periodically by the server
var (
	ArticlesTotal = gauge("articles_total", "Number of stored articles")
	HashtagsTotal = gauge("hashtags_total", "Number of distinct hashtags")
	UsersTotal    = gauge("users_total", "Number of registered users")

	// Logins counts login attempts by method (password, kakao) and status
	Logins = counter("", "logins_total", "Login attempts by method and status", "method", "status")
)
