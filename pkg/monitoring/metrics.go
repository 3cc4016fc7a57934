// Package monitoring exposes Prometheus collectors and health reporting
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const ServiceName = "greenroute"

var (
	// Tool calls
	ToolRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_tool_requests_total",
			Help: "Total number of tool calls processed",
		},
		[]string{"tool", "status"},
	)

	ToolRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenroute_tool_request_duration_seconds",
			Help:    "Tool call duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"tool"},
	)

	// Upstream services (geocoder, router, advisor)
	ExternalServiceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_external_service_requests_total",
			Help: "Total number of external service requests",
		},
		[]string{"service", "operation", "status"},
	)

	ExternalServiceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenroute_external_service_request_duration_seconds",
			Help:    "External service request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"service", "operation"},
	)

	RateLimitWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greenroute_rate_limit_wait_duration_seconds",
			Help:    "Time spent waiting for outbound rate limits",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"service"},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_rate_limit_exceeded_total",
			Help: "Total number of inbound requests rejected by the rate limiter",
		},
		[]string{"service"},
	)

	// Caches
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "greenroute_cache_size",
			Help: "Current number of items in cache",
		},
		[]string{"cache_type"},
	)

	// Emission engine
	FactorResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_factor_resolutions_total",
			Help: "Emission factor lookups by outcome",
		},
		[]string{"outcome"},
	)

	FuelComparisons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_fuel_comparisons_total",
			Help: "Candidate fuel estimates by fuel and availability",
		},
		[]string{"fuel", "status"},
	)

	RoutePlans = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greenroute_route_plans_total",
			Help: "Route plans by outcome (optimized, baseline, short, degraded)",
		},
		[]string{"outcome"},
	)

	ReferenceTableRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "greenroute_reference_table_rows",
			Help: "Number of rows in the loaded reference table",
		},
	)

	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "greenroute_system_info",
			Help: "Build information",
		},
		[]string{"version", "go_version", "build_commit", "build_date"},
	)

	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "greenroute_goroutines",
			Help: "Number of goroutines",
		},
	)

	MemoryUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "greenroute_memory_usage_bytes",
			Help: "Memory usage in bytes",
		},
	)
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

func RecordToolRequest(tool string, duration time.Duration, success bool) {
	ToolRequestsTotal.WithLabelValues(tool, status(success)).Inc()
	ToolRequestDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func RecordExternalServiceRequest(service, operation string, duration time.Duration, success bool) {
	ExternalServiceRequestsTotal.WithLabelValues(service, operation, status(success)).Inc()
	ExternalServiceRequestDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

func UpdateCacheSize(cacheType string, size int) {
	CacheSize.WithLabelValues(cacheType).Set(float64(size))
}

func RecordRateLimitWait(service string, duration time.Duration) {
	RateLimitWaitTime.WithLabelValues(service).Observe(duration.Seconds())
}

func RecordRateLimitExceeded(service string) {
	RateLimitExceeded.WithLabelValues(service).Inc()
}

// Factor resolution outcomes
const (
	OutcomeMatched = "matched"
	OutcomeNoMatch = "no_match"
)

func RecordFactorResolution(outcome string) {
	FactorResolutions.WithLabelValues(outcome).Inc()
}

func RecordFuelComparison(fuel, status string) {
	FuelComparisons.WithLabelValues(fuel, status).Inc()
}

func RecordRoutePlan(outcome string) {
	RoutePlans.WithLabelValues(outcome).Inc()
}

func SetReferenceTableRows(n int) {
	ReferenceTableRows.Set(float64(n))
}
