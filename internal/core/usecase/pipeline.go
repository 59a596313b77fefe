package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
)

// PipelineUseCase drives the full sequence: extract, persist claims, upload
// documents, run both decision phases, persist results. Per-claim failures
// are absorbed at the claim boundary; only infrastructure failures abort a
// run and mark the job failed.
type PipelineUseCase struct {
	extractor *ExtractClaimsUseCase
	uploader  *UploadDocumentsUseCase
	decider   *DecideClaimUseCase
	claims    ports.ClaimStore
	results   ports.ResultStore
	jobs      ports.JobStore
	observer  ports.RunObserver
}

func NewPipelineUseCase(
	extractor *ExtractClaimsUseCase,
	uploader *UploadDocumentsUseCase,
	decider *DecideClaimUseCase,
	claims ports.ClaimStore,
	results ports.ResultStore,
	jobs ports.JobStore,
) *PipelineUseCase {
	return &PipelineUseCase{
		extractor: extractor,
		uploader:  uploader,
		decider:   decider,
		claims:    claims,
		results:   results,
		jobs:      jobs,
	}
}

// SetObserver attaches a progress observer. Call before Run; the observer
// is read concurrently once a run is in flight.
func (uc *PipelineUseCase) SetObserver(observer ports.RunObserver) {
	uc.observer = observer
	uc.uploader.SetObserver(observer)
}

func (uc *PipelineUseCase) observe(outcome string) {
	if uc.observer != nil {
		uc.observer.ClaimDecided(outcome)
	}
}

// Run executes one pipeline invocation. With a job id it maintains the job
// progress marker: processing on entry, completed with the final count, or
// failed with the error message when the top-level sequence errors out.
func (uc *PipelineUseCase) Run(ctx context.Context, opts ports.RunOptions) (int, error) {
	if opts.JobID != "" {
		if err := uc.jobs.MarkProcessing(ctx, opts.JobID); err != nil {
			return 0, fmt.Errorf("mark job processing: %w", err)
		}
	}

	processed, err := uc.run(ctx, opts)
	if err != nil {
		if opts.JobID != "" {
			if failErr := uc.jobs.MarkFailed(ctx, opts.JobID, err.Error()); failErr != nil {
				slog.Error("mark job failed", "job_id", opts.JobID, "error", failErr)
			}
		}
		return 0, err
	}

	if opts.JobID != "" {
		if err := uc.jobs.MarkCompleted(ctx, opts.JobID, processed); err != nil {
			return processed, fmt.Errorf("mark job completed: %w", err)
		}
	}
	return processed, nil
}

func (uc *PipelineUseCase) run(ctx context.Context, opts ports.RunOptions) (int, error) {
	records, err := uc.extractor.Extract(ctx, opts.CSVContent, opts.RowLimit)
	if err != nil {
		return 0, fmt.Errorf("extract claims: %w", err)
	}

	saved := 0
	for i := range records {
		if err := uc.claims.Upsert(ctx, &records[i]); err != nil {
			slog.Error("save claim", "tracking_number", records[i].TrackingNumber, "error", err)
			continue
		}
		saved++
	}
	slog.Info("claims saved", "saved", saved, "failed", len(records)-saved)

	if err := uc.uploader.BatchUpload(ctx, opts.BatchSize); err != nil {
		return 0, fmt.Errorf("batch upload documents: %w", err)
	}

	allClaims, err := uc.claims.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list claims for analysis: %w", err)
	}

	results := uc.processAll(ctx, allClaims, opts.JobID)
	return len(results), nil
}

type phase1Item struct {
	claim    domain.ClaimRecord
	decision InitialDecision
	err      error
}

type phase2Item struct {
	result *domain.ClaimResult
	err    error
}

// processAll fans Phase 1 out across every claim, partitions the outcomes
// into declined / approved / errored, persists declined results right away,
// then fans Phase 2 out across the approved bucket only. Results are
// persisted as each claim completes; one claim's save failure never blocks
// another's.
func (uc *PipelineUseCase) processAll(ctx context.Context, claims []domain.ClaimRecord, jobID string) []domain.ClaimResult {
	results := make([]domain.ClaimResult, 0, len(claims))
	if len(claims) == 0 {
		slog.Warn("no claims to process")
		return results
	}

	slog.Info("phase 1 starting", "claims", len(claims))
	phase1 := make([]phase1Item, len(claims))
	var wg sync.WaitGroup
	for i, claim := range claims {
		wg.Add(1)
		go func(i int, claim domain.ClaimRecord) {
			defer wg.Done()
			decision, err := uc.decider.ProcessInitial(ctx, claim)
			phase1[i] = phase1Item{claim: claim, decision: decision, err: err}
			if err == nil && decision.Declined != nil {
				uc.saveResult(ctx, decision.Declined, jobID)
			}
		}(i, claim)
	}
	wg.Wait()

	type approvedPair struct {
		claim   domain.ClaimRecord
		initial domain.ClaimResult
	}
	var approved []approvedPair
	declinedCount, erroredCount := 0, 0
	for _, item := range phase1 {
		switch {
		case item.err != nil:
			erroredCount++
			uc.observe("error")
			slog.Error("phase 1 failed", "tracking_number", item.claim.TrackingNumber, "error", item.err)
		case item.decision.Declined != nil:
			declinedCount++
			uc.observe("declined")
			results = append(results, *item.decision.Declined)
		case item.decision.Approved != nil:
			approved = append(approved, approvedPair{claim: item.claim, initial: *item.decision.Approved})
		}
	}
	slog.Info("phase 1 complete",
		"approved", len(approved), "declined", declinedCount, "errors", erroredCount)

	if len(approved) > 0 {
		slog.Info("phase 2 starting", "claims", len(approved))
		phase2 := make([]phase2Item, len(approved))
		for i, pair := range approved {
			wg.Add(1)
			go func(i int, pair approvedPair) {
				defer wg.Done()
				result, err := uc.decider.ProcessCharges(ctx, pair.claim, pair.initial)
				phase2[i] = phase2Item{result: result, err: err}
				if err == nil {
					uc.saveResult(ctx, result, jobID)
				}
			}(i, pair)
		}
		wg.Wait()

		succeeded, failed := 0, 0
		for i, item := range phase2 {
			if item.err != nil {
				failed++
				uc.observe("error")
				slog.Error("phase 2 failed",
					"tracking_number", approved[i].claim.TrackingNumber, "error", item.err)
				continue
			}
			succeeded++
			uc.observe("approved")
			results = append(results, *item.result)
		}
		slog.Info("phase 2 complete", "successful", succeeded, "errors", failed)
	}

	slog.Info("processing complete", "results", len(results), "claims", len(claims))
	return results
}

// saveResult upserts one result and bumps the job's processed count. Both
// writes are guarded: a failure is logged and contained to this claim.
func (uc *PipelineUseCase) saveResult(ctx context.Context, result *domain.ClaimResult, jobID string) {
	if err := uc.results.Upsert(ctx, result); err != nil {
		slog.Error("save claim result", "tracking_number", result.TrackingNumber, "error", err)
		return
	}
	if jobID != "" {
		if err := uc.jobs.IncrementProcessed(ctx, jobID); err != nil {
			slog.Error("increment job progress", "job_id", jobID, "error", err)
		}
	}
}
