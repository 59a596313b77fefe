package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	jobTotal      *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
	jobsInFlight  prometheus.Gauge
	claimOutcomes *prometheus.CounterVec
	uploadsTotal  *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "worker",
			Name:      "pipeline_job_total",
			Help:      "Total pipeline job runs by status.",
		},
		[]string{"service", "status"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "claims",
			Subsystem: "worker",
			Name:      "pipeline_job_duration_seconds",
			Help:      "Pipeline job duration in seconds by status.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"service", "status"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "claims",
			Subsystem: "worker",
			Name:      "pipeline_jobs_in_flight",
			Help:      "Number of pipeline jobs currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	claimOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "worker",
			Name:      "claim_outcomes_total",
			Help:      "Adjudicated claims by outcome.",
		},
		[]string{"service", "outcome"},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "claims",
			Subsystem: "worker",
			Name:      "document_uploads_total",
			Help:      "Document uploads to the analysis service by status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(jobTotal, jobDuration, jobsInFlight, claimOutcomes, uploadsTotal)

	return &WorkerMetrics{
		registry:      registry,
		jobTotal:      jobTotal,
		jobDuration:   jobDuration,
		jobsInFlight:  jobsInFlight,
		claimOutcomes: claimOutcomes,
		uploadsTotal:  uploadsTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobsInFlight.Inc()
}

func (m *WorkerMetrics) FinishJob(service string, duration time.Duration, err error) {
	m.jobsInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.jobTotal.WithLabelValues(service, status).Inc()
	m.jobDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) RecordClaimOutcome(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.claimOutcomes.WithLabelValues(service, outcome).Inc()
}

func (m *WorkerMetrics) RecordUpload(service string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.uploadsTotal.WithLabelValues(service, status).Inc()
}
