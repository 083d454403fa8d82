package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelStatus   = "status"
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStage    = "stage"
	LabelDecision = "decision"
	LabelOutcome  = "outcome"
	LabelKind     = "kind"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acsp_members_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acsp_members_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	// AuthorizationTotal counts authorization stage outcomes
	AuthorizationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acsp_members_authorization_total",
			Help: "Total number of authorization stage evaluations",
		},
		[]string{LabelStage, LabelDecision},
	)

	// MembershipLookupDuration tracks membership store point reads
	MembershipLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "acsp_members_membership_lookup_duration_seconds",
			Help:    "Duration of membership store lookups in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelOutcome},
	)

	// NotificationsTotal counts notifications relayed to the provider
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acsp_members_notifications_total",
			Help: "Total number of notifications relayed to the provider",
		},
		[]string{LabelKind, LabelOutcome},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, http.StatusText(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordAuthorization records an authorization stage outcome
func (c *Collector) RecordAuthorization(stage, decision string) {
	AuthorizationTotal.WithLabelValues(stage, decision).Inc()
}

// RecordMembershipLookup records a membership store lookup
func (c *Collector) RecordMembershipLookup(outcome string, duration time.Duration) {
	MembershipLookupDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordNotification records a notification relay attempt
func (c *Collector) RecordNotification(kind string, success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	NotificationsTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
