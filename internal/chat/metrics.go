package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total broadcast lines processed by type",
	}, []string{"type"})

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_delivery_queue_depth",
		Help: "Lines currently buffered in the delivery queue",
	})

	BroadcastDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_broadcast_fanout_seconds",
		Help:    "Time to fan one line out to all connected sessions",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(QueueDepth)
	prometheus.MustRegister(BroadcastDuration)
}
