package ports

import (
	"context"
	"io"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

// ClaimStore persists claim records, keyed by tracking number.
type ClaimStore interface {
	Upsert(ctx context.Context, claim *domain.ClaimRecord) error
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.ClaimRecord, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]domain.ClaimRecord, error)
	ListAll(ctx context.Context) ([]domain.ClaimRecord, error)
	UpdateAnalysisFiles(ctx context.Context, trackingNumber string, files []domain.AnalysisFile) error
}

// ResultStore persists adjudication outcomes, upsert-by-tracking-number.
type ResultStore interface {
	Upsert(ctx context.Context, result *domain.ClaimResult) error
	ListAll(ctx context.Context) ([]domain.ClaimResult, error)
}

// JobStore persists pipeline job progress markers.
type JobStore interface {
	Create(ctx context.Context, job *domain.PipelineJob) error
	GetByID(ctx context.Context, id string) (*domain.PipelineJob, error)
	List(ctx context.Context) ([]domain.PipelineJob, error)
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, claimsProcessed int) error
	MarkFailed(ctx context.Context, id, message string) error
	IncrementProcessed(ctx context.Context, id string) error
}

// DocumentLocator resolves the source documents belonging to a claim.
type DocumentLocator interface {
	ListForClaim(ctx context.Context, trackingNumber string) ([]domain.Document, error)
}

// DocumentFS opens source document content for upload.
type DocumentFS interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileUploader pushes one document's content to the external analysis
// service and returns the opaque handle.
type FileUploader interface {
	Upload(ctx context.Context, filename, mimeType string, data io.Reader) (domain.AnalysisFile, error)
}

// ClaimAnalyzer invokes the external model for the two adjudication phases.
// Implementations carry the policy rule set; the returned types exclude
// identity and monetary fields so callers must supply those from the source
// claim.
type ClaimAnalyzer interface {
	AnalyzeInitial(ctx context.Context, claim domain.ClaimRecord) (domain.InitialAnalysis, error)
	AnalyzeCharges(ctx context.Context, claim domain.ClaimRecord, initial domain.ClaimResult) (domain.ChargesAnalysis, error)
}

// RunObserver receives per-claim progress signals from a pipeline run.
// Implementations must be safe for concurrent use; the pipeline fans claims
// out across goroutines.
type RunObserver interface {
	ClaimDecided(outcome string)
	DocumentUploaded(err error)
}

// JobQueue hands pipeline job ids from the API to the worker.
type JobQueue interface {
	PublishJob(ctx context.Context, jobID string) error
	SubscribeJobs(ctx context.Context, handler func(context.Context, string) error) error
}
