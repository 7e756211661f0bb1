package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Database/Repository Metrics
var (
	// DBOperations tracks total database operations
	DBOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_db_operations_total",
			Help: "Total database operations by repository, operation, and status",
		},
		[]string{"repo", "operation", "status"},
	)

	// DBDuration tracks database operation latency
	DBDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "blackhole_db_operation_duration_ms",
			Help:                            "Database operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"repo", "operation"},
	)

	// DBErrors tracks database errors by type
	DBErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_db_errors_total",
			Help: "Total database errors by repository, operation, and error type",
		},
		[]string{"repo", "operation", "error_type"},
	)
)

// Engine Metrics
var (
	// EngineOperations tracks service-level operations
	EngineOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_engine_operations_total",
			Help: "Total engine operations by service, method, and status",
		},
		[]string{"service", "method", "status"},
	)

	// MessagesPosted tracks posted messages by community and group kind
	MessagesPosted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_messages_posted_total",
			Help: "Total messages posted by community and message kind",
		},
		[]string{"community", "kind"},
	)

	// ReactionsToggled tracks reaction toggles by kind and outcome
	ReactionsToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_reactions_toggled_total",
			Help: "Total reaction toggles by reaction kind and outcome (added, removed, moved)",
		},
		[]string{"kind", "outcome"},
	)

	// ReportsSubmitted tracks flag submissions
	ReportsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blackhole_reports_submitted_total",
			Help: "Total message reports submitted",
		},
	)

	// MessagesAutoRemoved tracks messages deleted by the flag threshold
	MessagesAutoRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blackhole_messages_auto_removed_total",
			Help: "Total messages deleted after crossing the flag threshold",
		},
	)

	// QuotaRejections tracks confession posts rejected by the daily cap
	QuotaRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blackhole_confession_quota_rejections_total",
			Help: "Total confession posts rejected by the per-day quota",
		},
	)
)

// Purge Sweeper Metrics
var (
	// SweepRuns tracks sweep executions by phase and status
	SweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_sweep_runs_total",
			Help: "Total purge sweep runs by phase (inactive_groups, global_purge) and status",
		},
		[]string{"phase", "status"},
	)

	// SweepDeleted tracks rows deleted by sweeps
	SweepDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blackhole_sweep_deleted_rows_total",
			Help: "Total rows deleted by purge sweeps, by table",
		},
		[]string{"table"},
	)

	// SweepDuration tracks sweep latency
	SweepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "blackhole_sweep_duration_ms",
			Help:                            "Purge sweep duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"phase"},
	)
)

// Presence Metrics
var (
	// OnlineSessions tracks currently tracked presence keys per room
	OnlineSessions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blackhole_online_sessions",
			Help: "Currently tracked presence sessions by room",
		},
		[]string{"room"},
	)
)
