// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_requests_total",
			Help: "Chat requests handled, by classified intent and outcome status",
		},
		[]string{"intent", "status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommender_stage_duration_seconds",
			Help:    "Duration of each pipeline stage in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	FallbackInvoked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_fallback_invoked_total",
			Help: "Times the fallback retrieval policy ran",
		},
		[]string{"intent"},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommender_recommendations_returned",
			Help:    "Size of the recommendation set after ordering and truncation",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	FirewallDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_firewall_dropped_total",
			Help: "Records removed by the validation firewall",
		},
		[]string{"reason"},
	)

	ReplyScanFlagged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommender_reply_scan_flagged_total",
			Help: "Model replies flagged by the post-generation scan",
		},
	)

	ResilientCallAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_resilient_call_attempts_total",
			Help: "Attempts made through the resilient call wrapper",
		},
		[]string{"operation", "outcome"},
	)

	InteractionLogFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_interaction_log_failures_total",
			Help: "Swallowed interaction logging failures",
		},
		[]string{"step"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommender_active_sessions",
			Help: "Sessions currently held in the in-memory analysis window",
		},
	)

	AlertsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_fabrication_alerts_total",
			Help: "Fabrication alerts by channel and outcome",
		},
		[]string{"channel", "outcome"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommender_business_cache_lookups_total",
			Help: "Business cache lookups by result",
		},
		[]string{"result"},
	)
)
