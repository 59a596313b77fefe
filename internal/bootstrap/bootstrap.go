package bootstrap

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/sdiops/claims-pipeline/internal/config"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
	"github.com/sdiops/claims-pipeline/internal/core/usecase"
	"github.com/sdiops/claims-pipeline/internal/infrastructure/llm/claude"
	"github.com/sdiops/claims-pipeline/internal/infrastructure/queue/nats"
	"github.com/sdiops/claims-pipeline/internal/infrastructure/repository/postgres"
	"github.com/sdiops/claims-pipeline/internal/infrastructure/resilience"
	"github.com/sdiops/claims-pipeline/internal/infrastructure/storage/localfs"
	"github.com/sdiops/claims-pipeline/internal/rules"
)

type App struct {
	Config config.Config

	Queue    *nats.Queue
	Claims   ports.ClaimStore
	Results  ports.ResultStore
	Jobs     ports.JobStore
	Runner   ports.PipelineRunner
	Accuracy *usecase.EvaluateAccuracyUseCase

	pipeline *usecase.PipelineUseCase
	closeFn  func()
}

// ObserveRuns attaches a progress observer to the pipeline. Worker processes
// use this to feed run metrics.
func (a *App) ObserveRuns(observer ports.RunObserver) {
	a.pipeline.SetObserver(observer)
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	claims := postgres.NewClaimRepository(db)
	results := postgres.NewResultRepository(db)
	jobs := postgres.NewJobRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init job queue: %w", err)
	}

	ruleSet, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	documents, err := localfs.New(cfg.DocumentsPath)
	if err != nil {
		return nil, fmt.Errorf("init document store: %w", err)
	}

	claudeClient := claude.New(claude.Config{
		BaseURL:   cfg.ClaudeBaseURL,
		APIKey:    cfg.ClaudeAPIKey,
		Model:     cfg.ClaudeModel,
		MaxTokens: cfg.ClaudeMaxTokens,
	}, ruleSet, executor)

	var limiter *rate.Limiter
	if cfg.UploadRatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.UploadRatePerSecond), cfg.UploadRatePerSecond)
	}

	extractor := usecase.NewExtractClaimsUseCase(documents)
	uploader := usecase.NewUploadDocumentsUseCase(claims, documents, claudeClient, limiter)
	decider := usecase.NewDecideClaimUseCase(claudeClient, ruleSet)
	runner := usecase.NewPipelineUseCase(extractor, uploader, decider, claims, results, jobs)
	accuracy := usecase.NewEvaluateAccuracyUseCase(claims, results)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Claims:   claims,
		Results:  results,
		Jobs:     jobs,
		Runner:   runner,
		Accuracy: accuracy,

		pipeline: runner,
		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
