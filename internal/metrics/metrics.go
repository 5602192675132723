package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SessionsCreated counts sessions created since process start.
	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_sessions_created_total",
		Help: "Number of sessions created.",
	})

	// SessionsConnected tracks sessions currently in the connected state.
	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "whatsapp_sessions_connected",
		Help: "Number of sessions currently connected.",
	})

	// MessagesSent counts outbound messages accepted by the protocol client.
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "whatsapp_messages_sent_total",
		Help: "Number of outbound messages sent.",
	})

	// RealtimeEvents counts events delivered to observers, by event name and
	// delivery mode (session or broadcast).
	RealtimeEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "whatsapp_realtime_events_total",
		Help: "Number of realtime events delivered to observers.",
	}, []string{"event", "mode"})
)

// Handler returns the Prometheus exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
