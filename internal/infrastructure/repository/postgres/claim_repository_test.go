package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

func claimRowColumns() []string {
	return []string{
		"tracking_number", "claim_date", "property_address", "lease_start_date", "lease_end_date", "move_out_date",
		"monthly_rent_cents", "property_management_company", "group_number", "treaty_number", "policy",
		"max_benefit_cents", "status", "approved_benefit_cents", "documents", "analysis_files", "created_at", "updated_at",
	}
}

func TestClaimRepositoryListKeepsAbsentFieldsNil(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClaimRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(claimRowColumns()).
		AddRow("CLM-1", nil, "12 Main St, Austin, TX", nil, nil, nil,
			nil, "", "", "", "",
			int64(350000), "posted", nil, []byte(`[]`), nil, now, now)

	mock.ExpectQuery("FROM claims").WillReturnRows(rows)

	claims, err := repo.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("expected 1 claim, got %d", len(claims))
	}

	claim := claims[0]
	if claim.MonthlyRent != nil {
		t.Fatalf("expected nil monthly rent, got %v", *claim.MonthlyRent)
	}
	if claim.MaxBenefit == nil || *claim.MaxBenefit != 3500.00 {
		t.Fatalf("expected max benefit 3500.00, got %v", claim.MaxBenefit)
	}
	if claim.AnalysisFiles != nil {
		t.Fatalf("expected nil analysis files before upload, got %v", claim.AnalysisFiles)
	}
	if claim.Uploaded() {
		t.Fatalf("claim without analysis files must not report uploaded")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClaimRepositoryListDistinguishesEmptyAnalysisFiles(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClaimRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows(claimRowColumns()).
		AddRow("CLM-2", nil, "", nil, nil, nil,
			int64(120000), "", "", "", "",
			nil, "declined", nil, []byte(`[]`), []byte(`[]`), now, now)

	mock.ExpectQuery("FROM claims").WillReturnRows(rows)

	claims, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if claims[0].AnalysisFiles == nil {
		t.Fatalf("expected non-nil analysis files for a claim the uploader already visited")
	}
	if len(claims[0].AnalysisFiles) != 0 {
		t.Fatalf("expected empty analysis files, got %d", len(claims[0].AnalysisFiles))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClaimRepositoryGetByTrackingNumberMapsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClaimRepository(db)
	mock.ExpectQuery("FROM claims").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(claimRowColumns()))

	_, err = repo.GetByTrackingNumber(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrClaimNotFound) {
		t.Fatalf("expected ErrClaimNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClaimRepositoryUpdateAnalysisFilesReturnsNotFoundWhenNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClaimRepository(db)
	mock.ExpectExec("UPDATE claims").
		WithArgs("missing", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateAnalysisFiles(context.Background(), "missing", []domain.AnalysisFile{{ID: "file-1"}})
	if !domain.IsKind(err, domain.ErrClaimNotFound) {
		t.Fatalf("expected ErrClaimNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestClaimRepositoryUpsertStoresCents(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewClaimRepository(db)
	rent := 1987.65
	claim := domain.ClaimRecord{
		TrackingNumber: "CLM-3",
		MonthlyRent:    &rent,
		Status:         domain.ClaimStatusPosted,
	}

	mock.ExpectExec("INSERT INTO claims").
		WithArgs("CLM-3", nil, "", nil, nil, nil,
			int64(198765), "", "", "", "",
			nil, "posted", nil, sqlmock.AnyArg(), nil,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), &claim); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
