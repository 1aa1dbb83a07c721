package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vendas"

var (
	// WebhookRequestsTotal counts webhook deliveries by provider and outcome
	// (processed, duplicate, sale_not_found, invalid, error).
	WebhookRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "webhook_requests_total",
		Help:      "Total payment webhook deliveries by provider and outcome.",
	}, []string{"provider", "outcome"})

	// WebhookDuration tracks end-to-end reconciliation latency.
	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "webhook_duration_seconds",
		Help:      "Payment webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"provider"})

	// CommissionsTotal counts ensureCommission outcomes (created, exists, error).
	CommissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "commissions_total",
		Help:      "Affiliate commission creation attempts by outcome.",
	}, []string{"outcome"})

	// MembershipsTotal counts per-course provisioning outcomes
	// (created, exists, error).
	MembershipsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "memberships_total",
		Help:      "Course membership provisioning attempts by outcome.",
	}, []string{"outcome"})

	// CheckoutsTotal counts checkout creations by gateway and outcome.
	CheckoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "billing",
		Name:      "checkouts_total",
		Help:      "Checkout creation attempts by gateway and outcome.",
	}, []string{"gateway", "outcome"})

	// TasksTotal counts async follow-up task executions.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "tasks_total",
		Help:      "Asynq reconciliation task executions by type and outcome.",
	}, []string{"task_type", "outcome"})

	// MappingCacheTotal counts course mapping cache lookups (hit, miss).
	MappingCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "membership",
		Name:      "mapping_cache_total",
		Help:      "Course mapping cache lookups by result.",
	}, []string{"result"})
)
