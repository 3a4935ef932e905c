package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	messagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "castctl",
			Subsystem: "messages",
			Name:      "sent_total",
			Help:      "Envelopes written to the receiver, by namespace.",
		},
		[]string{"namespace"},
	)
	messagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "castctl",
			Subsystem: "messages",
			Name:      "received_total",
			Help:      "Envelopes read from the receiver, by namespace.",
		},
		[]string{"namespace"},
	)
	dispatchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "castctl",
			Subsystem: "dispatch",
			Name:      "errors_total",
			Help:      "Inbound envelopes that failed routing or parsing, by error kind.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(messagesSent, messagesReceived, dispatchErrors)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordSent(namespace string) {
	RegisterMetrics()
	messagesSent.WithLabelValues(namespace).Inc()
}

func RecordReceived(namespace string) {
	RegisterMetrics()
	messagesReceived.WithLabelValues(namespace).Inc()
}

func RecordDispatchError(kind string) {
	RegisterMetrics()
	dispatchErrors.WithLabelValues(kind).Inc()
}
