package usecase

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
	"github.com/sdiops/claims-pipeline/internal/core/ports"
)

// ClaimAccuracy compares one adjudicated claim against its ground truth.
type ClaimAccuracy struct {
	TrackingNumber  string
	ExpectedStatus  domain.ResultStatus
	PredictedStatus domain.ResultStatus
	StatusMatch     bool
	ExpectedPayout  float64
	PredictedPayout float64
	PayoutError     float64
	PayoutPctError  float64
}

// AccuracyMetrics aggregates the per-claim comparisons. Approved is the
// positive class of the confusion matrix.
type AccuracyMetrics struct {
	TotalEvaluated int

	StatusMatches  int
	StatusAccuracy float64
	TruePositives  int
	TrueNegatives  int
	FalsePositives int
	FalseNegatives int

	ExactPayoutMatches       int
	PayoutsWithinOneDollar   int
	PayoutsWithinFivePercent int
	MeanAbsoluteError        float64
	MeanPercentageError      float64
	SymmetricMAPE            float64
	RootMeanSquaredError     float64
	MaxPayoutError           float64
	MinPayoutError           float64
}

// AccuracyReport is one evaluation run over every claim that carries both a
// processed result and ground truth.
type AccuracyReport struct {
	GeneratedAt time.Time
	Metrics     AccuracyMetrics
	Claims      []ClaimAccuracy
}

// EvaluateAccuracyUseCase scores pipeline output against the adjuster
// decisions recorded in the source export.
type EvaluateAccuracyUseCase struct {
	claims  ports.ClaimStore
	results ports.ResultStore
}

func NewEvaluateAccuracyUseCase(claims ports.ClaimStore, results ports.ResultStore) *EvaluateAccuracyUseCase {
	return &EvaluateAccuracyUseCase{claims: claims, results: results}
}

// Evaluate builds an accuracy report over the current stores. Claims without
// ground truth or without a processed result are skipped; when nothing is
// evaluable the report is nil rather than a sheet of zeroes.
func (uc *EvaluateAccuracyUseCase) Evaluate(ctx context.Context) (*AccuracyReport, error) {
	claims, err := uc.claims.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	results, err := uc.results.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list claim results: %w", err)
	}

	resultsByTracking := make(map[string]domain.ClaimResult, len(results))
	for _, r := range results {
		resultsByTracking[r.TrackingNumber] = r
	}

	var comparisons []ClaimAccuracy
	for _, claim := range claims {
		if claim.ApprovedBenefitAmount == nil {
			continue
		}
		result, ok := resultsByTracking[claim.TrackingNumber]
		if !ok {
			continue
		}

		expected := *claim.ApprovedBenefitAmount
		expectedStatus := groundTruthStatus(expected)
		predicted := result.FinalPayout
		comparisons = append(comparisons, ClaimAccuracy{
			TrackingNumber:  claim.TrackingNumber,
			ExpectedStatus:  expectedStatus,
			PredictedStatus: result.Status,
			StatusMatch:     expectedStatus == result.Status,
			ExpectedPayout:  expected,
			PredictedPayout: predicted,
			PayoutError:     math.Abs(predicted - expected),
			PayoutPctError:  percentageError(expected, predicted),
		})
	}
	if len(comparisons) == 0 {
		return nil, nil
	}

	return &AccuracyReport{
		GeneratedAt: time.Now().UTC(),
		Metrics:     aggregate(comparisons),
		Claims:      comparisons,
	}, nil
}

// groundTruthStatus reads the adjuster's decision out of the approved benefit
// amount: a strictly positive payout means the claim was approved, a zero
// payout means it was declined.
func groundTruthStatus(approvedBenefitAmount float64) domain.ResultStatus {
	if approvedBenefitAmount > 0 {
		return domain.ResultApproved
	}
	return domain.ResultDeclined
}

// percentageError measures the payout deviation relative to ground truth. A
// zero ground truth with a nonzero prediction counts as a full 100% miss; two
// zeroes agree exactly.
func percentageError(expected, predicted float64) float64 {
	diff := math.Abs(predicted - expected)
	switch {
	case expected > 0:
		return diff / expected * 100
	case predicted > 0:
		return 100
	default:
		return 0
	}
}

func aggregate(comparisons []ClaimAccuracy) AccuracyMetrics {
	m := AccuracyMetrics{
		TotalEvaluated: len(comparisons),
		MinPayoutError: math.Inf(1),
	}

	var sumAbs, sumPct, sumSMAPE, sumSquared float64
	for _, c := range comparisons {
		if c.StatusMatch {
			m.StatusMatches++
		}
		switch {
		case c.ExpectedStatus == domain.ResultApproved && c.PredictedStatus == domain.ResultApproved:
			m.TruePositives++
		case c.ExpectedStatus == domain.ResultDeclined && c.PredictedStatus == domain.ResultDeclined:
			m.TrueNegatives++
		case c.ExpectedStatus == domain.ResultDeclined && c.PredictedStatus == domain.ResultApproved:
			m.FalsePositives++
		default:
			m.FalseNegatives++
		}

		if c.PayoutError < 0.01 {
			m.ExactPayoutMatches++
		}
		if c.PayoutError < 1.00 {
			m.PayoutsWithinOneDollar++
		}
		if c.PayoutPctError < 5.0 {
			m.PayoutsWithinFivePercent++
		}

		sumAbs += c.PayoutError
		sumPct += c.PayoutPctError
		sumSMAPE += symmetricPctError(c.ExpectedPayout, c.PredictedPayout)
		sumSquared += c.PayoutError * c.PayoutError

		if c.PayoutError > m.MaxPayoutError {
			m.MaxPayoutError = c.PayoutError
		}
		if c.PayoutError < m.MinPayoutError {
			m.MinPayoutError = c.PayoutError
		}
	}

	n := float64(len(comparisons))
	m.StatusAccuracy = float64(m.StatusMatches) / n * 100
	m.MeanAbsoluteError = sumAbs / n
	m.MeanPercentageError = sumPct / n
	m.SymmetricMAPE = sumSMAPE / n
	m.RootMeanSquaredError = math.Sqrt(sumSquared / n)
	return m
}

// symmetricPctError is bounded by 200 and treats a matching pair of zeroes
// as a perfect score instead of dividing by zero.
func symmetricPctError(expected, predicted float64) float64 {
	denom := (math.Abs(expected) + math.Abs(predicted)) / 2
	if denom == 0 {
		return 0
	}
	return math.Abs(predicted-expected) / denom * 100
}
