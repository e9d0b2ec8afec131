package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ThemeApplied("dark", "system")
	m.ThemeApplied("dark", "system")
	m.ClientMessage("event")
	m.PatchesSent(3)
	m.PatchesSent(0)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	m.SessionSwept()
	m.WebsocketError("read")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.themeApplied.WithLabelValues("dark", "system")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("event")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.patchesSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsSwept))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsErrors.WithLabelValues("read")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ThemeApplied("light", "default")
		m.ClientMessage("ready")
		m.PatchesSent(1)
		m.SessionOpened()
		m.SessionClosed()
		m.SessionSwept()
		m.WebsocketError("write")
	})
}
