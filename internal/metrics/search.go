package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dpex",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests sent to the dataset API",
		},
		[]string{"dataset", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dpex",
			Name:      "upstream_request_duration_seconds",
			Help:      "Dataset API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"dataset"},
	)

	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dpex",
			Name:      "upstream_errors_total",
			Help:      "Total dataset API errors",
		},
		[]string{"dataset", "error_type"},
	)

	RecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dpex",
			Name:      "records_total",
			Help:      "Records seen by the search pipeline, before (raw) and after (kept) re-filtering",
		},
		[]string{"stage"},
	)

	QuotaRequestsRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "dpex",
			Name:      "quota_requests_remaining",
			Help:      "Remaining upstream request budget",
		},
		[]string{"upstream", "period"},
	)

	StaleResponsesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dpex",
			Name:      "stale_responses_total",
			Help:      "Search responses dropped because a newer search superseded them",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers the search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamRequestDuration)
	prometheus.MustRegister(UpstreamErrorsTotal)
	prometheus.MustRegister(RecordsTotal)
	prometheus.MustRegister(QuotaRequestsRemaining)
	prometheus.MustRegister(StaleResponsesTotal)
	searchMetricsRegistered = true
}
