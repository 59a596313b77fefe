package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

// In-memory stores shared by the usecase tests. All methods take the lock;
// the pipeline writes from several goroutines.

type memClaimStore struct {
	mu     sync.Mutex
	claims []domain.ClaimRecord
}

func (s *memClaimStore) Upsert(_ context.Context, claim *domain.ClaimRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.claims {
		if s.claims[i].TrackingNumber == claim.TrackingNumber {
			s.claims[i] = *claim
			return nil
		}
	}
	s.claims = append(s.claims, *claim)
	return nil
}

func (s *memClaimStore) GetByTrackingNumber(_ context.Context, trackingNumber string) (*domain.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.claims {
		if s.claims[i].TrackingNumber == trackingNumber {
			claim := s.claims[i]
			return &claim, nil
		}
	}
	return nil, domain.WrapError(domain.ErrClaimNotFound, "get claim", fmt.Errorf("tracking number %s", trackingNumber))
}

func (s *memClaimStore) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims), nil
}

func (s *memClaimStore) List(_ context.Context, limit, offset int) ([]domain.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset >= len(s.claims) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.claims) {
		end = len(s.claims)
	}
	page := make([]domain.ClaimRecord, end-offset)
	copy(page, s.claims[offset:end])
	return page, nil
}

func (s *memClaimStore) ListAll(context.Context) ([]domain.ClaimRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.ClaimRecord, len(s.claims))
	copy(all, s.claims)
	return all, nil
}

func (s *memClaimStore) UpdateAnalysisFiles(_ context.Context, trackingNumber string, files []domain.AnalysisFile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.claims {
		if s.claims[i].TrackingNumber == trackingNumber {
			s.claims[i].AnalysisFiles = files
			return nil
		}
	}
	return domain.WrapError(domain.ErrClaimNotFound, "update analysis files", fmt.Errorf("tracking number %s", trackingNumber))
}

type memResultStore struct {
	mu      sync.Mutex
	results []domain.ClaimResult
}

func (s *memResultStore) Upsert(_ context.Context, result *domain.ClaimResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.results {
		if s.results[i].TrackingNumber == result.TrackingNumber {
			s.results[i] = *result
			return nil
		}
	}
	s.results = append(s.results, *result)
	return nil
}

func (s *memResultStore) ListAll(context.Context) ([]domain.ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.ClaimResult, len(s.results))
	copy(all, s.results)
	return all, nil
}

type memJobStore struct {
	mu          sync.Mutex
	transitions []string
	processed   int
	completed   int
	failMessage string
}

func (s *memJobStore) Create(context.Context, *domain.PipelineJob) error { return nil }

func (s *memJobStore) GetByID(_ context.Context, id string) (*domain.PipelineJob, error) {
	return nil, domain.WrapError(domain.ErrJobNotFound, "get pipeline job", fmt.Errorf("id %s", id))
}

func (s *memJobStore) List(context.Context) ([]domain.PipelineJob, error) { return nil, nil }

func (s *memJobStore) MarkProcessing(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, "processing")
	return nil
}

func (s *memJobStore) MarkCompleted(_ context.Context, _ string, claimsProcessed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, "completed")
	s.completed = claimsProcessed
	return nil
}

func (s *memJobStore) MarkFailed(_ context.Context, _ string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = append(s.transitions, "failed")
	s.failMessage = message
	return nil
}

func (s *memJobStore) IncrementProcessed(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed++
	return nil
}

type fsFake struct {
	missing map[string]bool
}

func (f *fsFake) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if f.missing[path] {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return io.NopCloser(strings.NewReader("document bytes")), nil
}

type uploaderFake struct {
	mu      sync.Mutex
	uploads []string
	failFor map[string]bool
}

func (f *uploaderFake) Upload(_ context.Context, filename, mimeType string, _ io.Reader) (domain.AnalysisFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[filename] {
		return domain.AnalysisFile{}, fmt.Errorf("upload %s: service rejected", filename)
	}
	f.uploads = append(f.uploads, filename)
	return domain.AnalysisFile{
		ID:       "file-" + filename,
		Filename: filename,
		MimeType: mimeType,
	}, nil
}

func (f *uploaderFake) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func TestUploadForSkipsAlreadyUploadedClaim(t *testing.T) {
	uploader := &uploaderFake{}
	uc := NewUploadDocumentsUseCase(&memClaimStore{}, &fsFake{}, uploader, nil)

	claim := domain.ClaimRecord{
		TrackingNumber: "CLM-1",
		Documents:      []domain.Document{{Name: "lease.pdf", Path: "CLM-1/lease.pdf"}},
		AnalysisFiles:  []domain.AnalysisFile{{ID: "file-existing"}},
	}
	updated, err := uc.UploadFor(context.Background(), claim)
	if err != nil {
		t.Fatalf("UploadFor() error = %v", err)
	}
	if uploader.count() != 0 {
		t.Fatalf("expected no uploads, got %d", uploader.count())
	}
	if updated.AnalysisFiles[0].ID != "file-existing" {
		t.Fatalf("existing handles must be preserved, got %+v", updated.AnalysisFiles)
	}
}

func TestUploadForNoDocumentsYieldsEmptyHandleList(t *testing.T) {
	uc := NewUploadDocumentsUseCase(&memClaimStore{}, &fsFake{}, &uploaderFake{}, nil)

	updated, err := uc.UploadFor(context.Background(), domain.ClaimRecord{TrackingNumber: "CLM-1"})
	if err != nil {
		t.Fatalf("UploadFor() error = %v", err)
	}
	if updated.AnalysisFiles == nil {
		t.Fatalf("handle list must be non-nil to mark the claim as processed")
	}
	if len(updated.AnalysisFiles) != 0 {
		t.Fatalf("expected empty handle list, got %+v", updated.AnalysisFiles)
	}
}

func TestUploadForKeepsSuccessfulHandlesOnPartialFailure(t *testing.T) {
	uploader := &uploaderFake{failFor: map[string]bool{"ledger.pdf": true}}
	uc := NewUploadDocumentsUseCase(&memClaimStore{}, &fsFake{}, uploader, nil)

	claim := domain.ClaimRecord{
		TrackingNumber: "CLM-1",
		Documents: []domain.Document{
			{Name: "lease.pdf", Path: "CLM-1/lease.pdf"},
			{Name: "ledger.pdf", Path: "CLM-1/ledger.pdf"},
		},
	}
	updated, err := uc.UploadFor(context.Background(), claim)
	if err != nil {
		t.Fatalf("UploadFor() error = %v", err)
	}
	if len(updated.AnalysisFiles) != 1 || updated.AnalysisFiles[0].Filename != "lease.pdf" {
		t.Fatalf("expected only the successful handle, got %+v", updated.AnalysisFiles)
	}
}

func TestBatchUploadPersistsHandlesAndSkipsUploaded(t *testing.T) {
	store := &memClaimStore{claims: []domain.ClaimRecord{
		{
			TrackingNumber: "CLM-1",
			Documents:      []domain.Document{{Name: "lease.pdf", Path: "CLM-1/lease.pdf"}},
		},
		{
			TrackingNumber: "CLM-2",
			AnalysisFiles:  []domain.AnalysisFile{{ID: "file-old"}},
		},
		{TrackingNumber: "CLM-3"},
	}}
	uploader := &uploaderFake{}
	uc := NewUploadDocumentsUseCase(store, &fsFake{}, uploader, nil)

	if err := uc.BatchUpload(context.Background(), 2); err != nil {
		t.Fatalf("BatchUpload() error = %v", err)
	}
	if uploader.count() != 1 {
		t.Fatalf("expected exactly 1 upload, got %d", uploader.count())
	}

	first, err := store.GetByTrackingNumber(context.Background(), "CLM-1")
	if err != nil {
		t.Fatalf("GetByTrackingNumber() error = %v", err)
	}
	if len(first.AnalysisFiles) != 1 || first.AnalysisFiles[0].ID != "file-lease.pdf" {
		t.Fatalf("handles not persisted for CLM-1: %+v", first.AnalysisFiles)
	}

	second, _ := store.GetByTrackingNumber(context.Background(), "CLM-2")
	if second.AnalysisFiles[0].ID != "file-old" {
		t.Fatalf("already-uploaded claim must keep its handles, got %+v", second.AnalysisFiles)
	}

	third, _ := store.GetByTrackingNumber(context.Background(), "CLM-3")
	if third.AnalysisFiles == nil || len(third.AnalysisFiles) != 0 {
		t.Fatalf("documentless claim should be marked with an empty handle list, got %+v", third.AnalysisFiles)
	}
}

func TestUploadDocumentFailsWhenSourceMissing(t *testing.T) {
	fs := &fsFake{missing: map[string]bool{"CLM-1/lease.pdf": true}}
	uploader := &uploaderFake{}
	uc := NewUploadDocumentsUseCase(&memClaimStore{}, fs, uploader, nil)

	claim := domain.ClaimRecord{
		TrackingNumber: "CLM-1",
		Documents:      []domain.Document{{Name: "lease.pdf", Path: "CLM-1/lease.pdf"}},
	}
	updated, err := uc.UploadFor(context.Background(), claim)
	if err != nil {
		t.Fatalf("UploadFor() error = %v", err)
	}
	if len(updated.AnalysisFiles) != 0 {
		t.Fatalf("unreadable document must not produce a handle, got %+v", updated.AnalysisFiles)
	}
	if uploader.count() != 0 {
		t.Fatalf("nothing should reach the uploader, got %d uploads", uploader.count())
	}
}
