package generation

import "github.com/prometheus/client_golang/prometheus"

var (
	jobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmcord",
			Subsystem: "generation",
			Name:      "jobs_total",
			Help:      "Finished generation jobs by outcome",
		},
		[]string{"outcome"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmcord",
			Subsystem: "generation",
			Name:      "job_duration_seconds",
			Help:      "Wall time of generation jobs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"outcome"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmcord",
			Subsystem: "generation",
			Name:      "queue_depth",
			Help:      "Requests waiting for the worker",
		},
	)

	inflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "llmcord",
			Subsystem: "generation",
			Name:      "inflight_jobs",
			Help:      "Jobs currently generating (0 or 1)",
		},
	)

	fragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llmcord",
			Subsystem: "generation",
			Name:      "fragments_total",
			Help:      "Text fragments forwarded to callers",
		},
	)

	cancelRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmcord",
			Subsystem: "generation",
			Name:      "cancel_requests_total",
			Help:      "Cancel requests by where the job was when cancelled",
		},
		[]string{"target"},
	)
)

func init() {
	prometheus.MustRegister(jobsTotal, jobDuration, queueDepth, inflight, fragmentsTotal, cancelRequestsTotal)
}
