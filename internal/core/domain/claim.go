package domain

import "time"

// ClaimStatus is the source-data status of a claim. Only two values are
// recognized; anything else from the input normalizes to StatusUnknown.
type ClaimStatus string

const (
	ClaimStatusUnknown  ClaimStatus = ""
	ClaimStatusPosted   ClaimStatus = "posted"
	ClaimStatusDeclined ClaimStatus = "declined"
)

// Document is a reference to a source file belonging to a claim. A single
// document may match several types (e.g. agreement and addendum in one PDF).
type Document struct {
	Types []string `json:"types,omitempty"`
	Name  string   `json:"name"`
	Path  string   `json:"path"`
}

// AnalysisFile is the opaque handle returned by the external analysis
// service after a document upload. Created once by the uploader, never
// mutated.
type AnalysisFile struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// ClaimRecord is one row of the claims input, normalized. Pointer fields
// distinguish absent from zero: a missing monetary or date cell stays nil,
// it never collapses to 0.
//
// AnalysisFiles is nil until the uploader has run for the claim. A claim
// whose documents have all been uploaded (or that has no documents) holds a
// non-nil, possibly empty, slice.
type ClaimRecord struct {
	TrackingNumber            string
	ClaimDate                 *time.Time
	PropertyAddress           string
	LeaseStartDate            *time.Time
	LeaseEndDate              *time.Time
	MoveOutDate               *time.Time
	MonthlyRent               *float64
	PropertyManagementCompany string
	GroupNumber               string
	TreatyNumber              string
	Policy                    string
	MaxBenefit                *float64
	Status                    ClaimStatus

	// ApprovedBenefitAmount is ground truth from the source data, used only
	// by the accuracy evaluator, never for decisioning.
	ApprovedBenefitAmount *float64

	Documents     []Document
	AnalysisFiles []AnalysisFile

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Uploaded reports whether the claim already holds at least one analysis
// file handle, which makes the uploader skip it.
func (c ClaimRecord) Uploaded() bool {
	return len(c.AnalysisFiles) > 0
}

// MonthlyRentOrZero returns the monthly rent, treating absent as zero for
// result construction and prompts.
func (c ClaimRecord) MonthlyRentOrZero() float64 {
	if c.MonthlyRent == nil {
		return 0
	}
	return *c.MonthlyRent
}

// MaxBenefitOrZero returns the max benefit, treating absent as zero.
func (c ClaimRecord) MaxBenefitOrZero() float64 {
	if c.MaxBenefit == nil {
		return 0
	}
	return *c.MaxBenefit
}
