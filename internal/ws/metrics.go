package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chitchat_ws_connections",
		Help: "Live websocket connections.",
	})

	relayEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chitchat_relay_events_total",
		Help: "Relay events processed by the hub, by event name.",
	}, []string{"event"})
)
