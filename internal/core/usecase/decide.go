package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
	"github.com/sdiops/claims-pipeline/internal/rules"
)

// InitialDecision is the tagged outcome of Phase 1. Exactly one field is
// set: Declined holds a complete terminal result that skips Phase 2,
// Approved holds a partial result awaiting charge adjudication. The split
// keeps charge fields unreadable on a declined claim.
type InitialDecision struct {
	Declined *domain.ClaimResult
	Approved *domain.ClaimResult
}

// DecideClaimUseCase runs the two model-invocation phases for a single
// claim. Claims share no mutable state, so phase transitions for different
// claims are safe to run concurrently.
type DecideClaimUseCase struct {
	analyzer ports.ClaimAnalyzer
	rules    *rules.RuleSet
}

func NewDecideClaimUseCase(analyzer ports.ClaimAnalyzer, ruleSet *rules.RuleSet) *DecideClaimUseCase {
	if ruleSet == nil {
		ruleSet = rules.Default()
	}
	return &DecideClaimUseCase{analyzer: analyzer, rules: ruleSet}
}

// ProcessInitial runs Phase 1: document classification, payment
// verification, and the required-document check. The tracking number and
// monetary fields of the result always come from the source claim; the
// model output only ever contributes classification fields.
func (uc *DecideClaimUseCase) ProcessInitial(ctx context.Context, claim domain.ClaimRecord) (InitialDecision, error) {
	analysis, err := uc.analyzer.AnalyzeInitial(ctx, claim)
	if err != nil {
		return InitialDecision{}, fmt.Errorf("phase 1 analysis for claim %s: %w", claim.TrackingNumber, err)
	}
	if err := uc.validateInitial(analysis); err != nil {
		return InitialDecision{}, fmt.Errorf("phase 1 validation for claim %s: %w", claim.TrackingNumber, err)
	}

	result := &domain.ClaimResult{
		TrackingNumber:                claim.TrackingNumber,
		TenantName:                    analysis.TenantName,
		Status:                        analysis.Status,
		MaxBenefit:                    claim.MaxBenefitOrZero(),
		MonthlyRent:                   claim.MonthlyRentOrZero(),
		IsFirstMonthRentPaid:          analysis.IsFirstMonthRentPaid,
		FirstMonthRentPaidEvidence:    analysis.FirstMonthRentPaidEvidence,
		IsFirstMonthPremiumPaid:       analysis.IsFirstMonthPremiumPaid,
		FirstMonthPremiumPaidEvidence: analysis.FirstMonthPremiumPaidEvidence,
		MissingRequiredDocuments:      analysis.MissingRequiredDocuments,
		SubmittedDocuments:            analysis.SubmittedDocuments,
		ApprovedCharges:               []domain.ChargeItem{},
		ExcludedCharges:               []domain.ChargeItem{},
	}

	if analysis.Status == domain.ResultDeclined {
		result.ApprovedChargesTotal = 0
		result.FinalPayout = 0
		result.DecisionSummary = analysis.DecisionSummary
		if result.DecisionSummary == "" {
			result.DecisionSummary = declinedSummary(analysis)
		}
		return InitialDecision{Declined: result}, nil
	}
	return InitialDecision{Approved: result}, nil
}

// ProcessCharges runs Phase 2 for a claim approved in Phase 1. The approved
// total is recomputed from the charge list and the payout capped by the max
// benefit; neither figure is trusted from the model.
func (uc *DecideClaimUseCase) ProcessCharges(ctx context.Context, claim domain.ClaimRecord, initial domain.ClaimResult) (*domain.ClaimResult, error) {
	analysis, err := uc.analyzer.AnalyzeCharges(ctx, claim, initial)
	if err != nil {
		return nil, fmt.Errorf("phase 2 analysis for claim %s: %w", claim.TrackingNumber, err)
	}
	if err := validateCharges(analysis); err != nil {
		return nil, fmt.Errorf("phase 2 validation for claim %s: %w", claim.TrackingNumber, err)
	}

	var total float64
	for _, charge := range analysis.ApprovedCharges {
		total += charge.Amount
	}
	payout := total
	if initial.MaxBenefit < payout {
		payout = initial.MaxBenefit
	}

	complete := initial
	complete.ApprovedCharges = analysis.ApprovedCharges
	complete.ApprovedChargesTotal = total
	complete.ExcludedCharges = analysis.ExcludedCharges
	complete.FinalPayout = payout
	complete.DecisionSummary = analysis.DecisionSummary
	return &complete, nil
}

func (uc *DecideClaimUseCase) validateInitial(analysis domain.InitialAnalysis) error {
	if analysis.Status != domain.ResultApproved && analysis.Status != domain.ResultDeclined {
		return domain.WrapError(domain.ErrSchemaValidation, "check status",
			fmt.Errorf("unexpected status %q", analysis.Status))
	}
	known := uc.rules.KnownDocumentTypes()
	for _, docType := range analysis.MissingRequiredDocuments {
		if !known[docType] {
			return domain.WrapError(domain.ErrSchemaValidation, "check missing documents",
				fmt.Errorf("unknown document type %q", docType))
		}
	}
	for _, doc := range analysis.SubmittedDocuments {
		if doc.Name == "" {
			return domain.WrapError(domain.ErrSchemaValidation, "check submitted documents",
				fmt.Errorf("submitted document without a name"))
		}
	}
	return nil
}

func validateCharges(analysis domain.ChargesAnalysis) error {
	if strings.TrimSpace(analysis.DecisionSummary) == "" {
		return domain.WrapError(domain.ErrSchemaValidation, "check decision summary",
			fmt.Errorf("decision summary is empty"))
	}
	for _, charge := range append(analysis.ApprovedCharges, analysis.ExcludedCharges...) {
		if charge.Amount < 0 {
			return domain.WrapError(domain.ErrSchemaValidation, "check charge amounts",
				fmt.Errorf("negative amount %.2f for %q", charge.Amount, charge.Description))
		}
	}
	return nil
}

func declinedSummary(analysis domain.InitialAnalysis) string {
	missing := strings.Join(analysis.MissingRequiredDocuments, ", ")
	if missing == "" {
		missing = "None"
	}
	return fmt.Sprintf(
		"Claim declined. Missing documents: %s. First month rent paid: %t. First month SDI premium paid: %t.",
		missing,
		analysis.IsFirstMonthRentPaid,
		analysis.IsFirstMonthPremiumPaid,
	)
}
