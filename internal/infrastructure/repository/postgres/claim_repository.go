package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

const claimColumns = `
tracking_number, claim_date, property_address, lease_start_date, lease_end_date, move_out_date,
monthly_rent_cents, property_management_company, group_number, treaty_number, policy,
max_benefit_cents, status, approved_benefit_cents, documents, analysis_files, created_at, updated_at`

type ClaimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Upsert writes a claim keyed by tracking number. Reprocessing the same CSV
// refreshes the source fields but never touches analysis_files: the upload
// checkpoint survives re-ingestion.
func (r *ClaimRepository) Upsert(ctx context.Context, claim *domain.ClaimRecord) error {
	documentsJSON, err := json.Marshal(claim.Documents)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}
	filesJSON, err := marshalNullable(claim.AnalysisFiles)
	if err != nil {
		return fmt.Errorf("marshal analysis files: %w", err)
	}

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `
INSERT INTO claims (`+claimColumns+`
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
ON CONFLICT (tracking_number) DO UPDATE SET
	claim_date = EXCLUDED.claim_date,
	property_address = EXCLUDED.property_address,
	lease_start_date = EXCLUDED.lease_start_date,
	lease_end_date = EXCLUDED.lease_end_date,
	move_out_date = EXCLUDED.move_out_date,
	monthly_rent_cents = EXCLUDED.monthly_rent_cents,
	property_management_company = EXCLUDED.property_management_company,
	group_number = EXCLUDED.group_number,
	treaty_number = EXCLUDED.treaty_number,
	policy = EXCLUDED.policy,
	max_benefit_cents = EXCLUDED.max_benefit_cents,
	status = EXCLUDED.status,
	approved_benefit_cents = EXCLUDED.approved_benefit_cents,
	documents = EXCLUDED.documents,
	updated_at = EXCLUDED.updated_at
`,
		claim.TrackingNumber, claim.ClaimDate, claim.PropertyAddress,
		claim.LeaseStartDate, claim.LeaseEndDate, claim.MoveOutDate,
		centsOrNull(claim.MonthlyRent), claim.PropertyManagementCompany,
		claim.GroupNumber, claim.TreatyNumber, claim.Policy,
		centsOrNull(claim.MaxBenefit), string(claim.Status),
		centsOrNull(claim.ApprovedBenefitAmount), documentsJSON, filesJSON,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert claim: %w", err)
	}
	return nil
}

func (r *ClaimRepository) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.ClaimRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+claimColumns+`
FROM claims
WHERE tracking_number = $1
`, trackingNumber)

	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrClaimNotFound, "get claim",
				fmt.Errorf("tracking number %s", trackingNumber))
		}
		return nil, fmt.Errorf("get claim by tracking number: %w", err)
	}
	return &claim, nil
}

func (r *ClaimRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM claims`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return count, nil
}

// List pages claims in stable tracking-number order so the uploader's paging
// sees each claim exactly once.
func (r *ClaimRepository) List(ctx context.Context, limit, offset int) ([]domain.ClaimRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+claimColumns+`
FROM claims
ORDER BY tracking_number
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return collectClaims(rows)
}

func (r *ClaimRepository) ListAll(ctx context.Context) ([]domain.ClaimRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+claimColumns+`
FROM claims
ORDER BY tracking_number
`)
	if err != nil {
		return nil, fmt.Errorf("list all claims: %w", err)
	}
	return collectClaims(rows)
}

func (r *ClaimRepository) UpdateAnalysisFiles(ctx context.Context, trackingNumber string, files []domain.AnalysisFile) error {
	if files == nil {
		files = []domain.AnalysisFile{}
	}
	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("marshal analysis files: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
UPDATE claims
SET analysis_files = $2, updated_at = $3
WHERE tracking_number = $1
`, trackingNumber, filesJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update analysis files: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update analysis files rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrClaimNotFound, "update analysis files",
			fmt.Errorf("tracking number %s", trackingNumber))
	}
	return nil
}

func collectClaims(rows *sql.Rows) ([]domain.ClaimRecord, error) {
	defer rows.Close()

	out := make([]domain.ClaimRecord, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (domain.ClaimRecord, error) {
	var claim domain.ClaimRecord
	var monthlyRent, maxBenefit, approvedBenefit sql.NullInt64
	var status string
	var documentsRaw []byte
	var filesRaw []byte

	err := row.Scan(
		&claim.TrackingNumber, &claim.ClaimDate, &claim.PropertyAddress,
		&claim.LeaseStartDate, &claim.LeaseEndDate, &claim.MoveOutDate,
		&monthlyRent, &claim.PropertyManagementCompany,
		&claim.GroupNumber, &claim.TreatyNumber, &claim.Policy,
		&maxBenefit, &status, &approvedBenefit,
		&documentsRaw, &filesRaw, &claim.CreatedAt, &claim.UpdatedAt,
	)
	if err != nil {
		return domain.ClaimRecord{}, err
	}

	claim.Status = domain.ClaimStatus(status)
	claim.MonthlyRent = dollarsOrNil(monthlyRent)
	claim.MaxBenefit = dollarsOrNil(maxBenefit)
	claim.ApprovedBenefitAmount = dollarsOrNil(approvedBenefit)

	if err := json.Unmarshal(documentsRaw, &claim.Documents); err != nil {
		return domain.ClaimRecord{}, fmt.Errorf("unmarshal documents: %w", err)
	}
	if filesRaw != nil {
		if err := json.Unmarshal(filesRaw, &claim.AnalysisFiles); err != nil {
			return domain.ClaimRecord{}, fmt.Errorf("unmarshal analysis files: %w", err)
		}
		if claim.AnalysisFiles == nil {
			claim.AnalysisFiles = []domain.AnalysisFile{}
		}
	}
	return claim, nil
}

func centsOrNull(dollars *float64) any {
	if dollars == nil {
		return nil
	}
	return domain.DollarsToCents(*dollars)
}

func dollarsOrNil(cents sql.NullInt64) *float64 {
	if !cents.Valid {
		return nil
	}
	dollars := domain.CentsToDollars(cents.Int64)
	return &dollars
}

// marshalNullable keeps the nil/empty distinction across the database: a nil
// slice stores SQL NULL (uploader has not run), an empty slice stores [].
func marshalNullable(files []domain.AnalysisFile) (any, error) {
	if files == nil {
		return nil, nil
	}
	raw, err := json.Marshal(files)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
