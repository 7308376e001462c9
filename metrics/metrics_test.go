package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveStandings(time.Now(), nil)
	m.ObserveStandings(time.Now(), errors.New("boom"))
	m.ObserveMissingSchedule()
	m.ObserveExport("xlsx", nil)
	m.ObserveNotification("email", false)
	m.ObserveScoreEntered()
	m.ObserveOverride("set")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StandingsComputed.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StandingsComputed.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MissingSchedule))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ExportsTotal.WithLabelValues("xlsx", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("email", "failed")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 7)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStandings(time.Now(), nil)
		m.ObserveExport("csv", nil)
		m.ObserveNotification("sms", true)
		m.ObserveMissingSchedule()
		m.ObserveScoreEntered()
		m.ObserveOverride("delete")
	})
}
