// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodmate_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})

	// LikeToggles counts like state changes by target (playlist, comment) and new state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_like_toggles_total",
		Help: "Like toggles by target and resulting state",
	}, []string{"target", "state"})

	// VibeShares counts share attempts by outcome (created, quota_exceeded, invalid).
	VibeShares = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_vibe_shares_total",
		Help: "Vibe share attempts by outcome",
	}, []string{"outcome"})

	// RateLimited counts requests rejected by the Redis rate limiter.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"resource"})

	// UpstreamRequests counts outbound calls to mood and metadata services.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_upstream_requests_total",
		Help: "Outbound upstream requests by service and outcome",
	}, []string{"service", "outcome"})

	// UpstreamLatency records outbound call latency.
	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodmate_upstream_latency_seconds",
		Help:    "Outbound upstream request latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	}, []string{"service"})

	// BreakerState reports circuit breaker state per upstream (0 closed, 1 half-open, 2 open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "moodmate_circuit_breaker_state",
		Help: "Circuit breaker state per upstream (0 closed, 1 half-open, 2 open)",
	}, []string{"service"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moodmate_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts community events fanned out by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts clients dropped because their send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodmate_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// ObserveUpstream records the outcome and latency of one outbound call.
func ObserveUpstream(service string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequests.WithLabelValues(service, outcome).Inc()
	UpstreamLatency.WithLabelValues(service).Observe(time.Since(start).Seconds())
}
