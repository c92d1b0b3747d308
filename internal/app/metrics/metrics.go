package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job pipeline metrics, exposed at /metrics.
var (
	JobsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "podscribe",
		Name:      "jobs_submitted_total",
		Help:      "Number of transcription jobs submitted.",
	})

	JobsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "podscribe",
		Name:      "jobs_completed_total",
		Help:      "Number of transcription jobs that reached Complete.",
	})

	JobsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "podscribe",
		Name:      "jobs_failed_total",
		Help:      "Number of transcription jobs that reached Failed, by step.",
	}, []string{"step"})

	ActiveJobs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "podscribe",
		Name:      "active_jobs",
		Help:      "Jobs currently running.",
	})

	SegmentsPerJob = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "podscribe",
		Name:      "segments_per_job",
		Help:      "Number of audio segments a job was split into.",
		Buckets:   []float64{1, 2, 4, 8, 16, 32},
	})

	ProviderCallSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "podscribe",
		Name:      "provider_call_seconds",
		Help:      "Wall time of individual speech-to-text provider calls.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})
)
