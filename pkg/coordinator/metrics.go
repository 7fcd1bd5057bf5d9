package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "greenroom",
		Name:      "sessions_resident",
		Help:      "Number of session rooms currently resident in memory.",
	})
	metricSignalsRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greenroom",
		Name:      "signals_relayed_total",
		Help:      "Total signaling packets relayed between peers.",
	})
	metricChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greenroom",
		Name:      "chat_messages_total",
		Help:      "Total chat messages persisted and fanned out.",
	})
	metricDeliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "greenroom",
		Name:      "delivery_failures_total",
		Help:      "Total pushes dropped because the receiver was detached.",
	})
)
