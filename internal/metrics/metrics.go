package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the acquisition layer increments. All
// consumers treat a nil *Metrics as "metrics disabled".
type Metrics struct {
	RequestAttemptsTotal *prometheus.CounterVec
	RequestRetriesTotal  *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec

	RecordsDroppedTotal *prometheus.CounterVec
	FeedFailuresTotal   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		RequestAttemptsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_request_attempts_total",
				Help: "Total upstream HTTP request attempts, including retries",
			},
			[]string{"upstream", "outcome"},
		),

		RequestRetriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upstream_request_retries_total",
				Help: "Total retried upstream HTTP requests",
			},
			[]string{"upstream"},
		),

		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "upstream_request_duration_seconds",
				Help:    "Upstream request duration in seconds, including retries",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"upstream"},
		),

		RecordsDroppedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_dropped_total",
				Help: "Records rejected during validation, by reason",
			},
			[]string{"reason"},
		),

		FeedFailuresTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "feed_failures_total",
				Help: "Feed sources that failed an ingestion cycle",
			},
			[]string{"source"},
		),
	}
}

// DropRecord is a nil-safe helper for the most common increment.
func (m *Metrics) DropRecord(reason string) {
	if m == nil {
		return
	}
	m.RecordsDroppedTotal.WithLabelValues(reason).Inc()
}

// FeedFailure is a nil-safe helper.
func (m *Metrics) FeedFailure(source string) {
	if m == nil {
		return
	}
	m.FeedFailuresTotal.WithLabelValues(source).Inc()
}
