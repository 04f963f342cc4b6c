package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencyhub_http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agencyhub_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agencyhub_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)

	ClaimDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencyhub_claim_decisions_total",
			Help: "Claim requests moved to a new status",
		},
		[]string{"status"},
	)

	ComplianceChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencyhub_compliance_changes_total",
			Help: "Compliance rows written by operation",
		},
		[]string{"operation"},
	)

	NotificationsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencyhub_notifications_enqueued_total",
			Help: "Notification tasks enqueued by type and result",
		},
		[]string{"task_type", "result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agencyhub_notifications_sent_total",
			Help: "Notification emails delivered by the worker",
		},
		[]string{"task_type", "result"},
	)
)
