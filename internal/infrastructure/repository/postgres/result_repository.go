package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

const resultColumns = `
tracking_number, tenant_name, status, max_benefit_cents, monthly_rent_cents,
is_first_month_rent_paid, first_month_rent_paid_evidence,
is_first_month_premium_paid, first_month_premium_paid_evidence,
missing_required_documents, submitted_documents,
approved_charges, approved_charges_total_cents, excluded_charges, final_payout_cents,
decision_summary, created_at, updated_at`

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Upsert writes a result keyed by tracking number, so reprocessing a claim
// replaces its earlier outcome instead of accumulating duplicates.
func (r *ResultRepository) Upsert(ctx context.Context, result *domain.ClaimResult) error {
	missingJSON, err := json.Marshal(orEmptyStrings(result.MissingRequiredDocuments))
	if err != nil {
		return fmt.Errorf("marshal missing documents: %w", err)
	}
	submittedJSON, err := json.Marshal(orEmptyDocuments(result.SubmittedDocuments))
	if err != nil {
		return fmt.Errorf("marshal submitted documents: %w", err)
	}
	approvedJSON, err := json.Marshal(orEmptyCharges(result.ApprovedCharges))
	if err != nil {
		return fmt.Errorf("marshal approved charges: %w", err)
	}
	excludedJSON, err := json.Marshal(orEmptyCharges(result.ExcludedCharges))
	if err != nil {
		return fmt.Errorf("marshal excluded charges: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO claim_results (`+resultColumns+`
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (tracking_number) DO UPDATE SET
	tenant_name = EXCLUDED.tenant_name,
	status = EXCLUDED.status,
	max_benefit_cents = EXCLUDED.max_benefit_cents,
	monthly_rent_cents = EXCLUDED.monthly_rent_cents,
	is_first_month_rent_paid = EXCLUDED.is_first_month_rent_paid,
	first_month_rent_paid_evidence = EXCLUDED.first_month_rent_paid_evidence,
	is_first_month_premium_paid = EXCLUDED.is_first_month_premium_paid,
	first_month_premium_paid_evidence = EXCLUDED.first_month_premium_paid_evidence,
	missing_required_documents = EXCLUDED.missing_required_documents,
	submitted_documents = EXCLUDED.submitted_documents,
	approved_charges = EXCLUDED.approved_charges,
	approved_charges_total_cents = EXCLUDED.approved_charges_total_cents,
	excluded_charges = EXCLUDED.excluded_charges,
	final_payout_cents = EXCLUDED.final_payout_cents,
	decision_summary = EXCLUDED.decision_summary,
	updated_at = EXCLUDED.updated_at
`,
		result.TrackingNumber, result.TenantName, string(result.Status),
		domain.DollarsToCents(result.MaxBenefit), domain.DollarsToCents(result.MonthlyRent),
		result.IsFirstMonthRentPaid, result.FirstMonthRentPaidEvidence,
		result.IsFirstMonthPremiumPaid, result.FirstMonthPremiumPaidEvidence,
		missingJSON, submittedJSON,
		approvedJSON, domain.DollarsToCents(result.ApprovedChargesTotal),
		excludedJSON, domain.DollarsToCents(result.FinalPayout),
		result.DecisionSummary, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert claim result: %w", err)
	}
	return nil
}

func (r *ResultRepository) ListAll(ctx context.Context) ([]domain.ClaimResult, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+resultColumns+`
FROM claim_results
ORDER BY tracking_number
`)
	if err != nil {
		return nil, fmt.Errorf("list claim results: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ClaimResult, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim result: %w", err)
		}
		out = append(out, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim results: %w", err)
	}
	return out, nil
}

func scanResult(row rowScanner) (domain.ClaimResult, error) {
	var result domain.ClaimResult
	var status string
	var maxBenefitCents, monthlyRentCents, approvedTotalCents, payoutCents int64
	var missingRaw, submittedRaw, approvedRaw, excludedRaw []byte

	err := row.Scan(
		&result.TrackingNumber, &result.TenantName, &status,
		&maxBenefitCents, &monthlyRentCents,
		&result.IsFirstMonthRentPaid, &result.FirstMonthRentPaidEvidence,
		&result.IsFirstMonthPremiumPaid, &result.FirstMonthPremiumPaidEvidence,
		&missingRaw, &submittedRaw,
		&approvedRaw, &approvedTotalCents, &excludedRaw, &payoutCents,
		&result.DecisionSummary, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return domain.ClaimResult{}, err
	}

	result.Status = domain.ResultStatus(status)
	result.MaxBenefit = domain.CentsToDollars(maxBenefitCents)
	result.MonthlyRent = domain.CentsToDollars(monthlyRentCents)
	result.ApprovedChargesTotal = domain.CentsToDollars(approvedTotalCents)
	result.FinalPayout = domain.CentsToDollars(payoutCents)

	if err := json.Unmarshal(missingRaw, &result.MissingRequiredDocuments); err != nil {
		return domain.ClaimResult{}, fmt.Errorf("unmarshal missing documents: %w", err)
	}
	if err := json.Unmarshal(submittedRaw, &result.SubmittedDocuments); err != nil {
		return domain.ClaimResult{}, fmt.Errorf("unmarshal submitted documents: %w", err)
	}
	if err := json.Unmarshal(approvedRaw, &result.ApprovedCharges); err != nil {
		return domain.ClaimResult{}, fmt.Errorf("unmarshal approved charges: %w", err)
	}
	if err := json.Unmarshal(excludedRaw, &result.ExcludedCharges); err != nil {
		return domain.ClaimResult{}, fmt.Errorf("unmarshal excluded charges: %w", err)
	}
	return result, nil
}

func orEmptyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func orEmptyDocuments(in []domain.Document) []domain.Document {
	if in == nil {
		return []domain.Document{}
	}
	return in
}

func orEmptyCharges(in []domain.ChargeItem) []domain.ChargeItem {
	if in == nil {
		return []domain.ChargeItem{}
	}
	return in
}
