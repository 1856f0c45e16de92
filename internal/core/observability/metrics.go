// Package observability holds the process-wide Prometheus collectors and the
// helpers the rest of the service records through.
package observability

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		},
		[]string{"method", "route", "status"},
	)

	aggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marker_aggregations_total",
			Help: "Marker aggregation runs by strategy and zoom regime.",
		},
		[]string{"strategy", "regime"},
	)

	aggregationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aggregation_duration_seconds",
			Help:    "Time spent aggregating project points into markers.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
		},
		[]string{"strategy"},
	)

	markersEmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "markers_emitted_total",
			Help: "Markers produced by aggregation, by kind.",
		},
		[]string{"kind"},
	)

	invalidPointsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "invalid_points_total",
			Help: "Points with non-finite coordinates excluded from clustering.",
		},
	)

	cacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_results_total",
			Help: "Marker cache lookups by tier and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	cacheOpTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_op_total",
			Help: "Redis operations by op and result.",
		},
		[]string{"op", "result"},
	)

	cacheOpDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_op_duration_seconds",
			Help:    "Latency of Redis operations.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"op"},
	)

	projectsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "projects_loaded",
			Help: "Number of projects in the loaded dataset.",
		},
	)

	buildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build information for the binary.",
		},
		[]string{"version"},
	)
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		httpRequestsTotal, httpRequestDurationSeconds,
		aggregationsTotal, aggregationDurationSeconds, markersEmittedTotal, invalidPointsTotal,
		cacheResults, cacheOpTotal, cacheOpDurationSeconds,
		projectsLoaded,
	}
}

// Init additionally exposes the collectors on reg, typically the dedicated
// registry of the metrics listener. Registering twice is harmless.
func Init(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				panic(err)
			}
		}
	}
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	st := strconv.Itoa(status)
	httpRequestsTotal.WithLabelValues(method, route, st).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route, st).Observe(durationSeconds)
}

// ObserveAggregation records one aggregation run and what it produced.
func ObserveAggregation(strategy, regime string, singles, clusters int, durationSeconds float64) {
	aggregationsTotal.WithLabelValues(strategy, regime).Inc()
	aggregationDurationSeconds.WithLabelValues(strategy).Observe(durationSeconds)
	if singles > 0 {
		markersEmittedTotal.WithLabelValues("single").Add(float64(singles))
	}
	if clusters > 0 {
		markersEmittedTotal.WithLabelValues("cluster").Add(float64(clusters))
	}
}

func IncInvalidPoints(n int) {
	if n > 0 {
		invalidPointsTotal.Add(float64(n))
	}
}

// ObserveCacheResult records a lookup outcome (hit, miss, error) for tier
// (memo, redis).
func ObserveCacheResult(tier, outcome string) {
	cacheResults.WithLabelValues(tier, outcome).Inc()
}

func ObserveCacheOp(op string, err error, durationSeconds float64) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	cacheOpTotal.WithLabelValues(op, result).Inc()
	cacheOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func SetProjectsLoaded(n int) {
	projectsLoaded.Set(float64(n))
}

func ExposeBuildInfo(version string) {
	if version == "" {
		version = "dev"
	}
	buildInfo.WithLabelValues(version).Set(1)
}
