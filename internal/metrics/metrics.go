// Package metrics provides Prometheus instrumentation for the realtime
// layer: gauges for connected websocket clients, counters for channel
// publishes and fan-out deliveries.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectedClients tracks the current number of attached websocket clients,
	// labeled by channel name.
	ConnectedClients = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rollcall_connected_clients",
		Help: "Current number of attached realtime clients",
	}, []string{"channel"})

	// EventsPublished counts events published to a channel, labeled by channel
	// and event name.
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_events_published_total",
		Help: "Total number of events published to realtime channels",
	}, []string{"channel", "event"})

	// EventsDelivered counts per-subscriber deliveries, labeled by channel.
	// One publish to N subscribers increments this N times.
	EventsDelivered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_events_delivered_total",
		Help: "Total number of fan-out deliveries to realtime clients",
	}, []string{"channel"})

	// PublishFailures counts publishes that were dropped after a transport
	// error. These are logged and swallowed, never surfaced to the caller.
	PublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rollcall_publish_failures_total",
		Help: "Total number of failed channel publishes",
	}, []string{"channel"})
)

func init() {
	prometheus.MustRegister(
		ConnectedClients,
		EventsPublished,
		EventsDelivered,
		PublishFailures,
	)
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
