package domain

import "time"

// ResultStatus is the adjudication outcome of a claim.
type ResultStatus string

const (
	ResultApproved ResultStatus = "approved"
	ResultDeclined ResultStatus = "declined"
)

// ChargeItem is a single charge extracted from claim documents.
type ChargeItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
}

// ClaimResult is the adjudication outcome for one claim, correlated to its
// ClaimRecord by tracking number. Invariants: FinalPayout equals
// min(ApprovedChargesTotal, MaxBenefit); a declined result carries zeroed
// charge totals and empty charge lists.
type ClaimResult struct {
	TrackingNumber string
	TenantName     string
	Status         ResultStatus
	MaxBenefit     float64
	MonthlyRent    float64

	IsFirstMonthRentPaid          bool
	FirstMonthRentPaidEvidence    string
	IsFirstMonthPremiumPaid       bool
	FirstMonthPremiumPaidEvidence string

	MissingRequiredDocuments []string
	SubmittedDocuments       []Document

	ApprovedCharges      []ChargeItem
	ApprovedChargesTotal float64
	ExcludedCharges      []ChargeItem
	FinalPayout          float64

	DecisionSummary string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InitialAnalysis is the Phase 1 classification returned by the external
// model. It deliberately excludes the tracking number and monetary fields:
// the model's echo of those is never trusted, so the type makes it
// impossible to read them from a response. Callers build the ClaimResult by
// combining this with the source ClaimRecord.
type InitialAnalysis struct {
	TenantName string
	Status     ResultStatus

	IsFirstMonthRentPaid          bool
	FirstMonthRentPaidEvidence    string
	IsFirstMonthPremiumPaid       bool
	FirstMonthPremiumPaidEvidence string

	MissingRequiredDocuments []string
	SubmittedDocuments       []Document

	// DecisionSummary is optional in Phase 1; when empty on a declined
	// claim the decision engine synthesizes one.
	DecisionSummary string
}

// ChargesAnalysis is the Phase 2 classification returned by the external
// model. Totals are not part of the type: the engine computes them from the
// approved charge amounts rather than trusting the model's arithmetic.
type ChargesAnalysis struct {
	ApprovedCharges []ChargeItem
	ExcludedCharges []ChargeItem
	DecisionSummary string
}
