package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsSubmitted counts posts accepted into the pending queue.
	PostsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postboard_posts_submitted_total",
		Help: "Total number of posts submitted for moderation",
	})

	// PostDecisions counts moderation decisions by decision and outcome.
	PostDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_post_decisions_total",
		Help: "Total number of moderation decisions by decision and outcome",
	}, []string{"decision", "outcome"})

	// LoginAttempts counts login attempts by result.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_login_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// FeedCacheLookups counts feed cache lookups by result (hit, miss, error).
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_feed_cache_total",
		Help: "Feed cache lookups by result",
	}, []string{"result"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// WebSocketConnectionsTotal is the gauge of active moderation stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "postboard_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketEventsTotal counts events fanned out to WebSocket clients by type.
	WebSocketEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_websocket_events_total",
		Help: "Total WebSocket events by type",
	}, []string{"event_type"})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
