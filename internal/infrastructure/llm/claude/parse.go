package claude

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

// Wire structs use pointer fields so a key the model omitted is
// distinguishable from a zero value; required keys that come back nil fail
// schema validation instead of silently defaulting.

type fileWire struct {
	ID        *string `json:"id"`
	Filename  *string `json:"filename"`
	MimeType  *string `json:"mime_type"`
	SizeBytes *int64  `json:"size_bytes"`
	CreatedAt *string `json:"created_at"`
}

func (w fileWire) toDomain() (domain.AnalysisFile, error) {
	if w.ID == nil || *w.ID == "" {
		return domain.AnalysisFile{}, domain.WrapError(domain.ErrSchemaValidation, "parse file response",
			fmt.Errorf("missing file id"))
	}
	file := domain.AnalysisFile{ID: *w.ID}
	if w.Filename != nil {
		file.Filename = *w.Filename
	}
	if w.MimeType != nil {
		file.MimeType = *w.MimeType
	}
	if w.SizeBytes != nil {
		file.SizeBytes = *w.SizeBytes
	}
	if w.CreatedAt != nil {
		if ts, err := time.Parse(time.RFC3339, *w.CreatedAt); err == nil {
			file.CreatedAt = ts
		}
	}
	return file, nil
}

type messageWire struct {
	Content    []contentBlockWire `json:"content"`
	StopReason *string            `json:"stop_reason"`
}

type contentBlockWire struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (w messageWire) firstText() (string, error) {
	if len(w.Content) == 0 {
		return "", domain.WrapError(domain.ErrSchemaValidation, "read message content",
			fmt.Errorf("response has no content blocks"))
	}
	if w.Content[0].Type != "text" {
		return "", domain.WrapError(domain.ErrSchemaValidation, "read message content",
			fmt.Errorf("expected text block, got %q", w.Content[0].Type))
	}
	return strings.TrimSpace(w.Content[0].Text), nil
}

type documentWire struct {
	Types []string `json:"types"`
	Name  *string  `json:"name"`
	Path  string   `json:"path"`
}

type initialWire struct {
	TenantName                       *string         `json:"tenantName"`
	Status                           *string         `json:"status"`
	IsFirstMonthPaid                 *bool           `json:"isFirstMonthPaid"`
	FirstMonthPaidEvidence           *string         `json:"firstMonthPaidEvidence"`
	IsFirstMonthSDIPremiumPaid       *bool           `json:"isFirstMonthSDIPremiumPaid"`
	FirstMonthSDIPremiumPaidEvidence *string         `json:"firstMonthSDIPremiumPaidEvidence"`
	MissingRequiredDocuments         *[]string       `json:"missingRequiredDocuments"`
	SubmittedDocuments               *[]documentWire `json:"submittedDocuments"`
	DecisionSummary                  *string         `json:"decisionSummary"`
}

func parseInitialAnalysis(raw string) (domain.InitialAnalysis, error) {
	var wire initialWire
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &wire); err != nil {
		return domain.InitialAnalysis{}, domain.WrapError(domain.ErrSchemaValidation, "parse initial analysis", err)
	}

	missing := missingKeys(map[string]bool{
		"tenantName":                 wire.TenantName == nil,
		"status":                     wire.Status == nil,
		"isFirstMonthPaid":           wire.IsFirstMonthPaid == nil,
		"isFirstMonthSDIPremiumPaid": wire.IsFirstMonthSDIPremiumPaid == nil,
		"missingRequiredDocuments":   wire.MissingRequiredDocuments == nil,
		"submittedDocuments":         wire.SubmittedDocuments == nil,
	})
	if len(missing) > 0 {
		return domain.InitialAnalysis{}, domain.WrapError(domain.ErrSchemaValidation, "parse initial analysis",
			fmt.Errorf("missing keys: %s", strings.Join(missing, ", ")))
	}

	analysis := domain.InitialAnalysis{
		TenantName:               *wire.TenantName,
		Status:                   domain.ResultStatus(*wire.Status),
		IsFirstMonthRentPaid:     *wire.IsFirstMonthPaid,
		IsFirstMonthPremiumPaid:  *wire.IsFirstMonthSDIPremiumPaid,
		MissingRequiredDocuments: *wire.MissingRequiredDocuments,
	}
	if wire.FirstMonthPaidEvidence != nil {
		analysis.FirstMonthRentPaidEvidence = *wire.FirstMonthPaidEvidence
	}
	if wire.FirstMonthSDIPremiumPaidEvidence != nil {
		analysis.FirstMonthPremiumPaidEvidence = *wire.FirstMonthSDIPremiumPaidEvidence
	}
	if wire.DecisionSummary != nil {
		analysis.DecisionSummary = *wire.DecisionSummary
	}

	analysis.SubmittedDocuments = make([]domain.Document, 0, len(*wire.SubmittedDocuments))
	for _, doc := range *wire.SubmittedDocuments {
		converted := domain.Document{Types: doc.Types, Path: doc.Path}
		if doc.Name != nil {
			converted.Name = *doc.Name
		}
		analysis.SubmittedDocuments = append(analysis.SubmittedDocuments, converted)
	}
	return analysis, nil
}

type chargeWire struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
}

type chargesWire struct {
	ApprovedCharges *[]chargeWire `json:"approvedCharges"`
	ExcludedCharges *[]chargeWire `json:"excludedCharges"`
	DecisionSummary *string       `json:"decisionSummary"`
}

func parseChargesAnalysis(raw string) (domain.ChargesAnalysis, error) {
	var wire chargesWire
	if err := json.Unmarshal([]byte(stripCodeFences(raw)), &wire); err != nil {
		return domain.ChargesAnalysis{}, domain.WrapError(domain.ErrSchemaValidation, "parse charges analysis", err)
	}

	missing := missingKeys(map[string]bool{
		"approvedCharges": wire.ApprovedCharges == nil,
		"excludedCharges": wire.ExcludedCharges == nil,
		"decisionSummary": wire.DecisionSummary == nil,
	})
	if len(missing) > 0 {
		return domain.ChargesAnalysis{}, domain.WrapError(domain.ErrSchemaValidation, "parse charges analysis",
			fmt.Errorf("missing keys: %s", strings.Join(missing, ", ")))
	}

	approved, err := convertCharges(*wire.ApprovedCharges)
	if err != nil {
		return domain.ChargesAnalysis{}, domain.WrapError(domain.ErrSchemaValidation, "parse approved charges", err)
	}
	excluded, err := convertCharges(*wire.ExcludedCharges)
	if err != nil {
		return domain.ChargesAnalysis{}, domain.WrapError(domain.ErrSchemaValidation, "parse excluded charges", err)
	}

	return domain.ChargesAnalysis{
		ApprovedCharges: approved,
		ExcludedCharges: excluded,
		DecisionSummary: *wire.DecisionSummary,
	}, nil
}

func convertCharges(wires []chargeWire) ([]domain.ChargeItem, error) {
	charges := make([]domain.ChargeItem, 0, len(wires))
	for i, w := range wires {
		if w.Description == nil || w.Amount == nil {
			return nil, fmt.Errorf("charge %d is missing description or amount", i)
		}
		charges = append(charges, domain.ChargeItem{
			Description: *w.Description,
			Amount:      *w.Amount,
			Category:    w.Category,
		})
	}
	return charges, nil
}

func missingKeys(checks map[string]bool) []string {
	var missing []string
	for key, absent := range checks {
		if absent {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// stripCodeFences removes a markdown fence the model sometimes wraps around
// its JSON despite being told not to.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
