// Package metrics exposes the scheduler's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons, one per branch of the per-event evaluation chain.
const (
	SkipAlreadyNotified    = "already_notified"
	SkipMalformedStart     = "malformed_start"
	SkipOutOfWindow        = "out_of_window"
	SkipNoCoordinate       = "no_coordinate"
	SkipLocationUnknown    = "location_unavailable"
	SkipOutOfRadius        = "out_of_radius"
	SkipEvaluationPanicked = "evaluation_panicked"
)

var (
	Ticks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "georemind_ticks_total",
		Help: "Completed scheduler ticks.",
	})

	TicksDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "georemind_ticks_dropped_total",
		Help: "Ticks dropped because another tick was still running.",
	})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "georemind_notifications_sent_total",
		Help: "Reminders accepted by the delivery channel.",
	})

	NotificationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "georemind_notifications_rejected_total",
		Help: "Reminders rejected by the delivery channel; retried next tick.",
	})

	EventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "georemind_events_skipped_total",
		Help: "Events skipped during a tick, by reason.",
	}, []string{"reason"})
)
