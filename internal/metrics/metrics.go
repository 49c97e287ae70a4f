package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// source: direct | cart
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_orders_created_total",
			Help: "Orders persisted from confirmed checkouts",
		},
		[]string{"source"},
	)

	// outcome: started | completed | cancelled | empty_cart
	Conversations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_conversations_total",
			Help: "Checkout conversation lifecycle events",
		},
		[]string{"outcome"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_validation_failures_total",
			Help: "Rejected checkout inputs per state",
		},
		[]string{"state"},
	)

	// kind: admin_new_order | status_change
	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_notification_failures_total",
			Help: "Best-effort notifications that could not be delivered",
		},
		[]string{"kind"},
	)

	Updates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbot_updates_total",
			Help: "Inbound chat updates by kind",
		},
		[]string{"kind"},
	)

	WebhookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderbot_webhook_duration_ms",
			Help:    "Duration of webhook requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"status"},
	)
)
