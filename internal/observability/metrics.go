// Package observability provides logging, metrics, and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// CacheLookups counts cache-aside lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_cache_lookups_total",
		Help: "Cache-aside lookups by result",
	}, []string{"result"})

	// EventsPublished counts store events by topic.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_events_published_total",
		Help: "Total number of store events published",
	}, []string{"topic"})

	// EventsDropped counts events a slow subscriber could not accept.
	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_events_dropped_total",
		Help: "Total number of store events dropped because a subscriber buffer was full",
	}, []string{"topic"})

	// WebSocketConnectionsTotal is the gauge of total WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "domin8x_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// GenerationTasks counts simulated generation tasks by content type and outcome.
	GenerationTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_generation_tasks_total",
		Help: "Simulated generation tasks by content type and outcome",
	}, []string{"type", "outcome"})

	// GenerationInFlight is the number of generation tasks currently running.
	GenerationInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "domin8x_generation_in_flight",
		Help: "Number of generation tasks currently running",
	})

	// ChallengeTransitions counts challenge status changes applied by the sweep.
	ChallengeTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domin8x_challenge_transitions_total",
		Help: "Challenge status transitions applied by the scheduler",
	}, []string{"to"})
)
