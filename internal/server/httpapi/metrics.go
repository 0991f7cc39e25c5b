package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the server's operational counters.
type Metrics struct {
	Appends        *prometheus.CounterVec
	AppendFailures *prometheus.CounterVec
	Subscribers    *prometheus.GaugeVec
	AppendDuration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Appends: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "groupfeed_appends_total",
			Help: "Messages durably appended to the feed.",
		}, []string{"room", "kind"}),
		AppendFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "groupfeed_append_failures_total",
			Help: "Append requests that failed to commit.",
		}, []string{"room"}),
		Subscribers: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "groupfeed_active_subscribers",
			Help: "Currently attached websocket subscribers.",
		}, []string{"room"}),
		AppendDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "groupfeed_append_duration_seconds",
			Help:    "Wall time of the append path, commit included.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
