// Package metrics holds the Prometheus collectors of the league server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "card_league"

type Metrics struct {
	StandingsComputed  *prometheus.CounterVec
	StandingsDuration  prometheus.Histogram
	MissingSchedule    prometheus.Counter
	ExportsTotal       *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	ScoresEntered      prometheus.Counter
	OverridesChanged   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StandingsComputed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_computed_total",
			Help:      "Standings computations by outcome.",
		}, []string{"outcome"}),
		StandingsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "standings_duration_seconds",
			Help:      "Time spent loading inputs and computing standings.",
			Buckets:   prometheus.DefBuckets,
		}),
		MissingSchedule: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "standings_missing_schedule_total",
			Help:      "Computations that fell back to the default round count.",
		}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Standings exports by format and outcome.",
		}, []string{"format", "outcome"}),
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		ScoresEntered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_entered_total",
			Help:      "Game scores entered by operators.",
		}),
		OverridesChanged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overrides_changed_total",
			Help:      "Result overrides set or deleted.",
		}, []string{"action"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.StandingsComputed,
			m.StandingsDuration,
			m.MissingSchedule,
			m.ExportsTotal,
			m.NotificationsTotal,
			m.ScoresEntered,
			m.OverridesChanged,
		)
	}
	return m
}

// ObserveStandings records one computation.
func (m *Metrics) ObserveStandings(start time.Time, err error) {
	if m == nil {
		return
	}
	m.StandingsDuration.Observe(time.Since(start).Seconds())
	m.StandingsComputed.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveExport(format string, err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format, outcome(err)).Inc()
}

func (m *Metrics) ObserveNotification(channel string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.NotificationsTotal.WithLabelValues(channel, result).Inc()
}

func (m *Metrics) ObserveMissingSchedule() {
	if m == nil {
		return
	}
	m.MissingSchedule.Inc()
}

func (m *Metrics) ObserveScoreEntered() {
	if m == nil {
		return
	}
	m.ScoresEntered.Inc()
}

func (m *Metrics) ObserveOverride(action string) {
	if m == nil {
		return
	}
	m.OverridesChanged.WithLabelValues(action).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
