package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Application metrics exported at /metrics.
var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// ReactionToggles counts reaction ledger toggles by entity and kind.
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_reaction_toggles_total",
		Help: "Total number of reaction toggles applied",
	}, []string{"entity", "kind"})

	// ActiveWebSockets tracks currently open WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ripple_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// SyncRefreshes counts full snapshot refreshes by subscription scope.
	SyncRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_sync_refreshes_total",
		Help: "Total number of snapshot refreshes delivered to subscribers",
	}, []string{"scope"})
)
