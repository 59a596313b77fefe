package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

func TestResultRepositoryUpsertStoresCents(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewResultRepository(db)
	result := domain.ClaimResult{
		TrackingNumber:       "CLM-1",
		TenantName:           "Jordan Reyes",
		Status:               domain.ResultApproved,
		MaxBenefit:           3500.00,
		MonthlyRent:          1750.50,
		ApprovedCharges:      []domain.ChargeItem{{Description: "Cleaning", Amount: 200.00, Category: "cleaning"}},
		ApprovedChargesTotal: 200.00,
		FinalPayout:          200.00,
		DecisionSummary:      "Approved with one cleaning charge.",
	}

	mock.ExpectExec("INSERT INTO claim_results").
		WithArgs("CLM-1", "Jordan Reyes", "approved",
			int64(350000), int64(175050),
			false, "", false, "",
			sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), int64(20000), sqlmock.AnyArg(), int64(20000),
			"Approved with one cleaning charge.", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), &result); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestResultRepositoryListAllRestoresDollars(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	repo := NewResultRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"tracking_number", "tenant_name", "status", "max_benefit_cents", "monthly_rent_cents",
		"is_first_month_rent_paid", "first_month_rent_paid_evidence",
		"is_first_month_premium_paid", "first_month_premium_paid_evidence",
		"missing_required_documents", "submitted_documents",
		"approved_charges", "approved_charges_total_cents", "excluded_charges", "final_payout_cents",
		"decision_summary", "created_at", "updated_at",
	}).AddRow(
		"CLM-1", "Jordan Reyes", "declined", int64(350000), int64(175050),
		true, "Ledger shows rent payment", false, "No premium entry found",
		[]byte(`["tenant_ledger"]`), []byte(`[{"name":"lease.pdf","path":"CLM-1/lease.pdf"}]`),
		[]byte(`[]`), int64(0), []byte(`[]`), int64(0),
		"Claim declined. Missing documents: tenant_ledger.", now, now,
	)

	mock.ExpectQuery("FROM claim_results").WillReturnRows(rows)

	results, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.MaxBenefit != 3500.00 {
		t.Fatalf("expected max benefit 3500.00, got %v", got.MaxBenefit)
	}
	if got.MonthlyRent != 1750.50 {
		t.Fatalf("expected monthly rent 1750.50, got %v", got.MonthlyRent)
	}
	if got.Status != domain.ResultDeclined {
		t.Fatalf("expected declined status, got %s", got.Status)
	}
	if len(got.MissingRequiredDocuments) != 1 || got.MissingRequiredDocuments[0] != "tenant_ledger" {
		t.Fatalf("unexpected missing documents: %v", got.MissingRequiredDocuments)
	}
	if len(got.SubmittedDocuments) != 1 || got.SubmittedDocuments[0].Name != "lease.pdf" {
		t.Fatalf("unexpected submitted documents: %v", got.SubmittedDocuments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
