package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus collectors for the guide service.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Change feed metrics.
	FeedSubscribers     prometheus.Gauge
	FeedEventsTotal     *prometheus.CounterVec
	FeedDroppedTotal    prometheus.Counter
	FeedReconnectsTotal prometheus.Counter

	// Auth metrics.
	AuthFailuresTotal  *prometheus.CounterVec
	AuthSuccessesTotal *prometheus.CounterVec

	// Domain metrics.
	InvitationsCreatedTotal  prometheus.Counter
	InvitationsAcceptedTotal prometheus.Counter
	AssistantRepliesTotal    *prometheus.CounterVec
	BlockedMessagesTotal     prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guide_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guide_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		FeedSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guide_feed_subscribers",
			Help: "Number of currently connected change feed subscribers.",
		}),

		FeedEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guide_feed_events_total",
			Help: "Total number of change events published, by table.",
		}, []string{"table"}),

		FeedDroppedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_feed_dropped_events_total",
			Help: "Total number of change events dropped on slow subscribers.",
		}),

		FeedReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_feed_reconnects_total",
			Help: "Total number of database listener reconnects.",
		}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guide_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"auth_type"}),

		AuthSuccessesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guide_auth_successes_total",
			Help: "Total number of successful authentications.",
		}, []string{"auth_type"}),

		InvitationsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_invitations_created_total",
			Help: "Total number of co-parent invitations created.",
		}),

		InvitationsAcceptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_invitations_accepted_total",
			Help: "Total number of co-parent invitations accepted.",
		}),

		AssistantRepliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guide_assistant_replies_total",
			Help: "Total number of assistant replies, by matched topic.",
		}, []string{"topic"}),

		BlockedMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guide_blocked_messages_total",
			Help: "Total number of chat messages rejected by the content filter.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guide_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.FeedSubscribers,
		m.FeedEventsTotal,
		m.FeedDroppedTotal,
		m.FeedReconnectsTotal,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.InvitationsCreatedTotal,
		m.InvitationsAcceptedTotal,
		m.AssistantRepliesTotal,
		m.BlockedMessagesTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, pathPattern string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, pathPattern, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, pathPattern).Observe(duration.Seconds())
}

// IncAuthFailure increments the auth failure counter for the given auth type.
func (m *Metrics) IncAuthFailure(authType string) {
	m.AuthFailuresTotal.WithLabelValues(authType).Inc()
}

// IncAuthSuccess increments the auth success counter for the given auth type.
func (m *Metrics) IncAuthSuccess(authType string) {
	m.AuthSuccessesTotal.WithLabelValues(authType).Inc()
}

// IncFeedEvent counts a change event published for the given table.
func (m *Metrics) IncFeedEvent(table string) {
	m.FeedEventsTotal.WithLabelValues(table).Inc()
}
