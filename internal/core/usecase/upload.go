package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
)

var mimeTypesByExtension = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func mimeTypeFor(name string) string {
	if mt, ok := mimeTypesByExtension[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "application/octet-stream"
}

// UploadDocumentsUseCase pushes claim documents to the external analysis
// service. Claims are handled one at a time to respect the service's rate
// limits; the documents within one claim upload in parallel, throttled by a
// shared limiter.
type UploadDocumentsUseCase struct {
	claims   ports.ClaimStore
	fs       ports.DocumentFS
	uploader ports.FileUploader
	limiter  *rate.Limiter
	observer ports.RunObserver
}

func NewUploadDocumentsUseCase(
	claims ports.ClaimStore,
	fs ports.DocumentFS,
	uploader ports.FileUploader,
	limiter *rate.Limiter,
) *UploadDocumentsUseCase {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &UploadDocumentsUseCase{
		claims:   claims,
		fs:       fs,
		uploader: uploader,
		limiter:  limiter,
	}
}

// UploadFor uploads one claim's documents. A claim that already holds file
// handles is returned unchanged without any external call, which is what
// makes reprocessing idempotent. A claim with no documents comes back with
// an explicitly empty handle list. Individual document failures are logged
// and skipped; the claim proceeds with the handles that succeeded.
func (uc *UploadDocumentsUseCase) UploadFor(ctx context.Context, claim domain.ClaimRecord) (domain.ClaimRecord, error) {
	if claim.Uploaded() {
		return claim, nil
	}
	if len(claim.Documents) == 0 {
		claim.AnalysisFiles = []domain.AnalysisFile{}
		return claim, nil
	}

	uploaded := make([]*domain.AnalysisFile, len(claim.Documents))
	var wg sync.WaitGroup
	for i, doc := range claim.Documents {
		wg.Add(1)
		go func(i int, doc domain.Document) {
			defer wg.Done()
			file, err := uc.uploadDocument(ctx, doc)
			if err != nil {
				slog.Error("upload document",
					"tracking_number", claim.TrackingNumber,
					"document", doc.Name,
					"error", err,
				)
				return
			}
			uploaded[i] = &file
		}(i, doc)
	}
	wg.Wait()

	files := make([]domain.AnalysisFile, 0, len(uploaded))
	for _, f := range uploaded {
		if f != nil {
			files = append(files, *f)
		}
	}
	claim.AnalysisFiles = files
	return claim, nil
}

func (uc *UploadDocumentsUseCase) uploadDocument(ctx context.Context, doc domain.Document) (domain.AnalysisFile, error) {
	if err := uc.limiter.Wait(ctx); err != nil {
		return domain.AnalysisFile{}, fmt.Errorf("wait for upload slot: %w", err)
	}
	body, err := uc.fs.Open(ctx, doc.Path)
	if err != nil {
		return domain.AnalysisFile{}, fmt.Errorf("open document: %w", err)
	}
	defer body.Close()

	file, err := uc.uploader.Upload(ctx, doc.Name, mimeTypeFor(doc.Name), body)
	if uc.observer != nil {
		uc.observer.DocumentUploaded(err)
	}
	if err != nil {
		return domain.AnalysisFile{}, fmt.Errorf("upload to analysis service: %w", err)
	}
	return file, nil
}

// SetObserver attaches a progress observer. Call before any upload starts.
func (uc *UploadDocumentsUseCase) SetObserver(observer ports.RunObserver) {
	uc.observer = observer
}

// UploadMany applies UploadFor across the list sequentially. A claim-level
// failure is logged and the original claim passed through unchanged; it
// never aborts the batch.
func (uc *UploadDocumentsUseCase) UploadMany(ctx context.Context, claims []domain.ClaimRecord) []domain.ClaimRecord {
	results := make([]domain.ClaimRecord, 0, len(claims))
	for _, claim := range claims {
		updated, err := uc.UploadFor(ctx, claim)
		if err != nil {
			slog.Error("upload claim documents",
				"tracking_number", claim.TrackingNumber,
				"error", err,
			)
			results = append(results, claim)
			continue
		}
		results = append(results, updated)
	}
	return results
}

// BatchUpload pages claims out of storage in fixed-size pages, uploads the
// documents of claims that have none of their files uploaded yet, and
// persists the new handle lists before moving to the next page. The
// page-at-a-time persistence is the pipeline's resume checkpoint: a crash
// never causes an already-uploaded claim to upload again.
func (uc *UploadDocumentsUseCase) BatchUpload(ctx context.Context, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 50
	}

	total, err := uc.claims.Count(ctx)
	if err != nil {
		return fmt.Errorf("count claims: %w", err)
	}
	totalPages := (total + batchSize - 1) / batchSize

	for page := 0; page < totalPages; page++ {
		offset := page * batchSize

		pageClaims, err := uc.claims.List(ctx, batchSize, offset)
		if err != nil {
			return fmt.Errorf("list claims page %d: %w", page+1, err)
		}

		unprocessed := make([]domain.ClaimRecord, 0, len(pageClaims))
		for _, claim := range pageClaims {
			if !claim.Uploaded() {
				unprocessed = append(unprocessed, claim)
			}
		}
		if skipped := len(pageClaims) - len(unprocessed); skipped > 0 {
			slog.Info("skipping already-uploaded claims",
				"page", page+1, "pages", totalPages, "skipped", skipped)
		}
		if len(unprocessed) == 0 {
			continue
		}

		processed := uc.UploadMany(ctx, unprocessed)

		for _, claim := range processed {
			if claim.AnalysisFiles == nil {
				continue
			}
			if err := uc.claims.UpdateAnalysisFiles(ctx, claim.TrackingNumber, claim.AnalysisFiles); err != nil {
				slog.Error("persist analysis files",
					"tracking_number", claim.TrackingNumber,
					"error", err,
				)
			}
		}
	}
	return nil
}
