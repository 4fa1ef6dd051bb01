package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "school_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Messaging metrics
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "school_messages_sent_total",
			Help: "Total messages sent",
		},
	)

	ConversationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "school_conversations_created_total",
			Help: "Total conversations created",
		},
	)

	AnnouncementsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "school_announcements_published_total",
			Help: "Total announcements published",
		},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_notifications_created_total",
			Help: "Total notifications created",
		},
		[]string{"type"},
	)

	// Realtime metrics
	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "school_websocket_clients",
			Help: "Connected websocket clients",
		},
	)

	EventsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_realtime_events_total",
			Help: "Realtime events published",
		},
		[]string{"event"},
	)

	// Job metrics
	RemindersSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "school_event_reminders_total",
			Help: "Total event reminders dispatched",
		},
	)
)
