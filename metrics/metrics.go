// Package metrics defines the Prometheus collectors of the portfolio server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portfolio"

// Metrics holds the server's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	themeApplied   *prometheus.CounterVec
	events         *prometheus.CounterVec
	patchesSent    prometheus.Counter
	activeSessions prometheus.Gauge
	sessionsSwept  prometheus.Counter
	wsErrors       *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		themeApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_applied_total",
			Help:      "Themes applied to pages, by theme and resolution source",
		}, []string{"theme", "source"}),

		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "client_messages_total",
			Help:      "Messages received from page scripts, by type",
		}, []string{"type"}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "patches_sent_total",
			Help:      "DOM patches sent to browsers",
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Page sessions currently held by the server",
		}),

		sessionsSwept: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_swept_total",
			Help:      "Page sessions dropped because no websocket attached in time",
		}),

		wsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "websocket_errors_total",
			Help:      "Websocket errors by type",
		}, []string{"type"}),
	}
}

func (m *Metrics) ThemeApplied(theme, source string) {
	if m == nil {
		return
	}
	m.themeApplied.WithLabelValues(theme, source).Inc()
}

func (m *Metrics) ClientMessage(typ string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(typ).Inc()
}

func (m *Metrics) PatchesSent(n int) {
	if m == nil || n == 0 {
		return
	}
	m.patchesSent.Add(float64(n))
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *Metrics) SessionSwept() {
	if m == nil {
		return
	}
	m.sessionsSwept.Inc()
}

func (m *Metrics) WebsocketError(typ string) {
	if m == nil {
		return
	}
	m.wsErrors.WithLabelValues(typ).Inc()
}
