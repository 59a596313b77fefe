package usecase

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
)

// Fixed positional layout of the raw claims export.
const (
	colTrackingNumber  = 0
	colClaimDate       = 1
	colStreetAddress   = 3
	colCity            = 4
	colState           = 5
	colZip             = 6
	colLeaseStartDate  = 7
	colLeaseEndDate    = 8
	colMoveOutDate     = 9
	colMonthlyRent     = 10
	colManagementCo    = 22
	colGroupNumber     = 24
	colTreatyNumber    = 25
	colPolicy          = 26
	colMaxBenefit      = 27
	colStatus          = 28
	colApprovedBenefit = 29
)

// ExtractClaimsUseCase parses raw CSV content into claim records and
// resolves each claim's source documents.
type ExtractClaimsUseCase struct {
	locator ports.DocumentLocator
}

func NewExtractClaimsUseCase(locator ports.DocumentLocator) *ExtractClaimsUseCase {
	return &ExtractClaimsUseCase{locator: locator}
}

// Extract parses csvContent into ordered claim records. The header row is
// always skipped; rowLimit > 0 bounds the number of data rows. Malformed
// cells degrade to absent fields; only structurally invalid input is fatal.
func (uc *ExtractClaimsUseCase) Extract(ctx context.Context, csvContent string, rowLimit int) ([]domain.ClaimRecord, error) {
	reader := csv.NewReader(strings.NewReader(csvContent))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse claims csv", err)
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse claims csv", fmt.Errorf("input has no header row"))
	}

	dataRows := rows[1:]
	if rowLimit > 0 && len(dataRows) > rowLimit {
		dataRows = dataRows[:rowLimit]
	}

	records := make([]domain.ClaimRecord, 0, len(dataRows))
	for _, row := range dataRows {
		records = append(records, claimFromRow(row))
	}

	uc.attachDocuments(ctx, records)
	return records, nil
}

// attachDocuments resolves each claim's document list in parallel. A lookup
// failure yields an empty list for that claim, never a batch failure.
func (uc *ExtractClaimsUseCase) attachDocuments(ctx context.Context, records []domain.ClaimRecord) {
	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(rec *domain.ClaimRecord) {
			defer wg.Done()
			docs, err := uc.locator.ListForClaim(ctx, rec.TrackingNumber)
			if err != nil {
				slog.Warn("resolve claim documents",
					"tracking_number", rec.TrackingNumber,
					"error", err,
				)
				rec.Documents = []domain.Document{}
				return
			}
			rec.Documents = docs
		}(&records[i])
	}
	wg.Wait()
}

func claimFromRow(row []string) domain.ClaimRecord {
	return domain.ClaimRecord{
		TrackingNumber: cell(row, colTrackingNumber),
		ClaimDate:      domain.ParseClaimDate(cell(row, colClaimDate)),
		PropertyAddress: buildPropertyAddress(
			cell(row, colStreetAddress),
			cell(row, colCity),
			cell(row, colState),
			cell(row, colZip),
		),
		LeaseStartDate:            domain.ParseClaimDate(cell(row, colLeaseStartDate)),
		LeaseEndDate:              domain.ParseClaimDate(cell(row, colLeaseEndDate)),
		MoveOutDate:               domain.ParseClaimDate(cell(row, colMoveOutDate)),
		MonthlyRent:               parseDollarAmount(cell(row, colMonthlyRent)),
		PropertyManagementCompany: cell(row, colManagementCo),
		GroupNumber:               cell(row, colGroupNumber),
		TreatyNumber:              cell(row, colTreatyNumber),
		Policy:                    cell(row, colPolicy),
		MaxBenefit:                parseDollarAmount(cell(row, colMaxBenefit)),
		Status:                    normalizeStatus(cell(row, colStatus)),
		ApprovedBenefitAmount:     parseDollarAmount(cell(row, colApprovedBenefit)),
	}
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseDollarAmount strips currency symbols and thousands separators before
// conversion. A cell that fails to parse yields absent, never an error.
func parseDollarAmount(value string) *float64 {
	if value == "" {
		return nil
	}
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(value)
	parsed, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// buildPropertyAddress joins present components with ", ". All components
// absent yields an absent address, not an empty string joined from nothing.
func buildPropertyAddress(street, city, state, zip string) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{street, city, state, zip} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ", ")
}

func normalizeStatus(status string) domain.ClaimStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "posted":
		return domain.ClaimStatusPosted
	case "declined":
		return domain.ClaimStatusDeclined
	default:
		return domain.ClaimStatusUnknown
	}
}
