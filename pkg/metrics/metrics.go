package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sk8school"

var (
	BookingsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_submitted_total",
			Help:      "Total number of booking requests sent to the coach",
		},
	)

	// BookingDecisionsTotal counts admin decisions by outcome: approved, rejected, unauthorized, not_found, duplicate.
	BookingDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_decisions_total",
			Help:      "Total number of admin decisions on bookings",
		},
		[]string{"decision"},
	)

	RemindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_total",
			Help:      "Reminder lifecycle events by result",
		},
		[]string{"result"},
	)

	BotUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bot_updates_total",
			Help:      "Total number of chat updates handled",
		},
		[]string{"kind"},
	)

	BotUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bot_update_duration_seconds",
			Help:      "Time spent handling one chat update",
			Buckets:   prometheus.DefBuckets,
		},
	)

	AchievementsUnlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Total number of achievements unlocked",
		},
		[]string{"achievement"},
	)

	MaintenanceRemovedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "maintenance_removed_total",
			Help:      "Bookings touched by maintenance sweeps",
		},
		[]string{"sweep"},
	)
)

// Collectors returns every application metric for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		BookingsSubmittedTotal,
		BookingDecisionsTotal,
		RemindersTotal,
		BotUpdatesTotal,
		BotUpdateDuration,
		AchievementsUnlockedTotal,
		MaintenanceRemovedTotal,
	}
}
