package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sdiops/claims-pipeline/internal/bootstrap"
	"github.com/sdiops/claims-pipeline/internal/config"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
	"github.com/sdiops/claims-pipeline/internal/observability/logging"
	"github.com/sdiops/claims-pipeline/internal/observability/metrics"
)

// A full pipeline run uploads every document and makes two model calls per
// claim, so the ceiling is generous.
const jobTimeout = 2 * time.Hour

const serviceName = "worker"

// metricsObserver feeds pipeline progress into Prometheus counters.
type metricsObserver struct {
	metrics *metrics.WorkerMetrics
}

func (o *metricsObserver) ClaimDecided(outcome string) {
	o.metrics.RecordClaimOutcome(serviceName, outcome)
}

func (o *metricsObserver) DocumentUploaded(err error) {
	o.metrics.RecordUpload(serviceName, err)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("claims-worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app.ObserveRuns(&metricsObserver{metrics: workerMetrics})

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", workerMetrics.Handler())
	metricsServer := &http.Server{
		Addr:        ":" + cfg.WorkerMetricsPort,
		Handler:     metricsMux,
		ReadTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeJobs(ctx, func(handlerCtx context.Context, jobID string) error {
		runCtx, cancel := context.WithTimeout(handlerCtx, jobTimeout)
		defer cancel()
		return runJob(runCtx, app, workerMetrics, jobID)
	})
	if err != nil {
		slog.Error("worker subscribe", "error", err)
		os.Exit(1)
	}
}

func runJob(ctx context.Context, app *bootstrap.App, workerMetrics *metrics.WorkerMetrics, jobID string) error {
	job, err := app.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}

	slog.Info("pipeline job starting",
		"job_id", job.ID, "batch_size", job.BatchSize, "row_limit", job.RowLimit)
	workerMetrics.StartJob()
	start := time.Now()

	processed, err := app.Runner.Run(ctx, ports.RunOptions{
		CSVContent: job.CSVContent,
		RowLimit:   job.RowLimit,
		BatchSize:  job.BatchSize,
		JobID:      job.ID,
	})

	workerMetrics.FinishJob(serviceName, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("run pipeline job %s: %w", jobID, err)
	}
	slog.Info("pipeline job finished", "job_id", job.ID, "claims_processed", processed)
	return nil
}
