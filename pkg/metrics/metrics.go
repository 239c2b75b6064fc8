package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AccessDecisions counts access checks by resource type and outcome
	// (allow|deny|error). The error outcome marks fail-safe denies caused by
	// infrastructure failures; keeping it separate from deny is what lets
	// operators tell a broken resolver apart from legitimate denials.
	AccessDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicore_access_decisions_total",
			Help: "Total number of access decisions",
		},
		[]string{"resource_type", "outcome"},
	)

	// EmergencyAccessRequests counts break-the-glass requests by result
	// (granted|rejected).
	EmergencyAccessRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicore_emergency_access_requests_total",
			Help: "Total number of break-the-glass requests",
		},
		[]string{"result"},
	)

	// DroppedAuditWrites counts audit records that could not be persisted.
	// A non-zero value is an operational alarm: a denial or override happened
	// without a durable compliance record.
	DroppedAuditWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "clinicore_dropped_audit_writes_total",
			Help: "Total number of audit records that failed to persist",
		},
	)

	// PermissionCacheEvents counts cache lookups by result (hit|miss).
	PermissionCacheEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicore_permission_cache_events_total",
			Help: "Permission cache lookups by result",
		},
		[]string{"result"},
	)

	// APILatency observes HTTP request latency by method, route and status.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinicore_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
