package httpadapter

import (
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

// Response DTOs keep the wire format stable even when the domain structs
// change shape.

type jobDTO struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	BatchSize       int       `json:"batchSize"`
	RowLimit        int       `json:"rowLimit,omitempty"`
	ClaimsProcessed int       `json:"claimsProcessed"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func jobToDTO(job domain.PipelineJob) jobDTO {
	return jobDTO{
		ID:              job.ID,
		Status:          string(job.Status),
		BatchSize:       job.BatchSize,
		RowLimit:        job.RowLimit,
		ClaimsProcessed: job.ClaimsProcessed,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
	}
}

type claimDTO struct {
	TrackingNumber            string                `json:"trackingNumber"`
	ClaimDate                 string                `json:"claimDate,omitempty"`
	PropertyAddress           string                `json:"propertyAddress,omitempty"`
	LeaseStartDate            string                `json:"leaseStartDate,omitempty"`
	LeaseEndDate              string                `json:"leaseEndDate,omitempty"`
	MoveOutDate               string                `json:"moveOutDate,omitempty"`
	MonthlyRent               *float64              `json:"monthlyRent,omitempty"`
	PropertyManagementCompany string                `json:"propertyManagementCompany,omitempty"`
	GroupNumber               string                `json:"groupNumber,omitempty"`
	TreatyNumber              string                `json:"treatyNumber,omitempty"`
	Policy                    string                `json:"policy,omitempty"`
	MaxBenefit                *float64              `json:"maxBenefit,omitempty"`
	Status                    string                `json:"status,omitempty"`
	Documents                 []domain.Document     `json:"documents"`
	AnalysisFiles             []domain.AnalysisFile `json:"analysisFiles,omitempty"`
}

func claimToDTO(claim domain.ClaimRecord) claimDTO {
	return claimDTO{
		TrackingNumber:            claim.TrackingNumber,
		ClaimDate:                 domain.FormatClaimDate(claim.ClaimDate),
		PropertyAddress:           claim.PropertyAddress,
		LeaseStartDate:            domain.FormatClaimDate(claim.LeaseStartDate),
		LeaseEndDate:              domain.FormatClaimDate(claim.LeaseEndDate),
		MoveOutDate:               domain.FormatClaimDate(claim.MoveOutDate),
		MonthlyRent:               claim.MonthlyRent,
		PropertyManagementCompany: claim.PropertyManagementCompany,
		GroupNumber:               claim.GroupNumber,
		TreatyNumber:              claim.TreatyNumber,
		Policy:                    claim.Policy,
		MaxBenefit:                claim.MaxBenefit,
		Status:                    string(claim.Status),
		Documents:                 claim.Documents,
		AnalysisFiles:             claim.AnalysisFiles,
	}
}

type resultDTO struct {
	TrackingNumber                string              `json:"trackingNumber"`
	TenantName                    string              `json:"tenantName"`
	Status                        string              `json:"status"`
	MaxBenefit                    float64             `json:"maxBenefit"`
	MonthlyRent                   float64             `json:"monthlyRent"`
	IsFirstMonthRentPaid          bool                `json:"isFirstMonthRentPaid"`
	FirstMonthRentPaidEvidence    string              `json:"firstMonthRentPaidEvidence,omitempty"`
	IsFirstMonthPremiumPaid       bool                `json:"isFirstMonthPremiumPaid"`
	FirstMonthPremiumPaidEvidence string              `json:"firstMonthPremiumPaidEvidence,omitempty"`
	MissingRequiredDocuments      []string            `json:"missingRequiredDocuments"`
	SubmittedDocuments            []domain.Document   `json:"submittedDocuments"`
	ApprovedCharges               []domain.ChargeItem `json:"approvedCharges"`
	ApprovedChargesTotal          float64             `json:"approvedChargesTotal"`
	ExcludedCharges               []domain.ChargeItem `json:"excludedCharges"`
	FinalPayout                   float64             `json:"finalPayout"`
	DecisionSummary               string              `json:"decisionSummary"`
}

func resultToDTO(result domain.ClaimResult) resultDTO {
	return resultDTO{
		TrackingNumber:                result.TrackingNumber,
		TenantName:                    result.TenantName,
		Status:                        string(result.Status),
		MaxBenefit:                    result.MaxBenefit,
		MonthlyRent:                   result.MonthlyRent,
		IsFirstMonthRentPaid:          result.IsFirstMonthRentPaid,
		FirstMonthRentPaidEvidence:    result.FirstMonthRentPaidEvidence,
		IsFirstMonthPremiumPaid:       result.IsFirstMonthPremiumPaid,
		FirstMonthPremiumPaidEvidence: result.FirstMonthPremiumPaidEvidence,
		MissingRequiredDocuments:      result.MissingRequiredDocuments,
		SubmittedDocuments:            result.SubmittedDocuments,
		ApprovedCharges:               result.ApprovedCharges,
		ApprovedChargesTotal:          result.ApprovedChargesTotal,
		ExcludedCharges:               result.ExcludedCharges,
		FinalPayout:                   result.FinalPayout,
		DecisionSummary:               result.DecisionSummary,
	}
}
