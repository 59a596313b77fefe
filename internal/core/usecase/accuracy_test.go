package usecase

import (
	"context"
	"math"
	"testing"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

func ptr(v float64) *float64 { return &v }

func TestEvaluateReturnsNilWithoutGroundTruth(t *testing.T) {
	claims := &memClaimStore{claims: []domain.ClaimRecord{
		{TrackingNumber: "CLM-1", Status: domain.ClaimStatusUnknown},
		{TrackingNumber: "CLM-2", Status: domain.ClaimStatusPosted},
	}}
	results := &memResultStore{results: []domain.ClaimResult{
		{TrackingNumber: "CLM-1", Status: domain.ResultApproved},
		{TrackingNumber: "CLM-2", Status: domain.ResultApproved},
	}}

	report, err := NewEvaluateAccuracyUseCase(claims, results).Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report != nil {
		t.Fatalf("expected nil report when nothing is evaluable, got %+v", report)
	}
}

func TestEvaluateDerivesGroundTruthFromBenefitAmount(t *testing.T) {
	// The CSV status column does not decide ground truth; the recorded payout
	// does. An unrecognized status with a positive amount still evaluates, and
	// a zero amount means the adjuster declined regardless of status.
	claims := &memClaimStore{claims: []domain.ClaimRecord{
		{TrackingNumber: "CLM-1", Status: domain.ClaimStatusUnknown, ApprovedBenefitAmount: ptr(100)},
		{TrackingNumber: "CLM-2", Status: domain.ClaimStatusPosted, ApprovedBenefitAmount: ptr(0)},
	}}
	results := &memResultStore{results: []domain.ClaimResult{
		{TrackingNumber: "CLM-1", Status: domain.ResultApproved, FinalPayout: 100},
		{TrackingNumber: "CLM-2", Status: domain.ResultApproved, FinalPayout: 150},
	}}

	report, err := NewEvaluateAccuracyUseCase(claims, results).Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.Metrics.TotalEvaluated != 2 {
		t.Fatalf("evaluated = %d, want 2", report.Metrics.TotalEvaluated)
	}

	byTracking := make(map[string]ClaimAccuracy, len(report.Claims))
	for _, c := range report.Claims {
		byTracking[c.TrackingNumber] = c
	}

	positive := byTracking["CLM-1"]
	if positive.ExpectedStatus != domain.ResultApproved || !positive.StatusMatch {
		t.Fatalf("CLM-1 expected status %q, match %v", positive.ExpectedStatus, positive.StatusMatch)
	}

	zero := byTracking["CLM-2"]
	if zero.ExpectedStatus != domain.ResultDeclined {
		t.Fatalf("CLM-2 expected status = %q, want declined", zero.ExpectedStatus)
	}
	if zero.StatusMatch {
		t.Fatal("approving a zero-payout claim should not count as a status match")
	}
	if zero.PayoutPctError != 100 {
		t.Fatalf("CLM-2 pct error = %v, want 100", zero.PayoutPctError)
	}
	if report.Metrics.FalsePositives != 1 {
		t.Fatalf("false positives = %d, want 1", report.Metrics.FalsePositives)
	}
}

func TestEvaluateToleranceBoundsAreExclusive(t *testing.T) {
	claims := &memClaimStore{claims: []domain.ClaimRecord{
		{TrackingNumber: "CLM-1", Status: domain.ClaimStatusPosted, ApprovedBenefitAmount: ptr(100)},
	}}
	results := &memResultStore{results: []domain.ClaimResult{
		// Off by exactly $1.00, which is exactly 1% over a 100 ground truth.
		{TrackingNumber: "CLM-1", Status: domain.ResultApproved, FinalPayout: 101},
	}}

	report, err := NewEvaluateAccuracyUseCase(claims, results).Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	m := report.Metrics
	if m.PayoutsWithinOneDollar != 0 {
		t.Fatalf("within a dollar = %d, want 0 for an error of exactly $1", m.PayoutsWithinOneDollar)
	}
	if m.PayoutsWithinFivePercent != 1 {
		t.Fatalf("within 5%% = %d, want 1 for a 1%% error", m.PayoutsWithinFivePercent)
	}
}

func TestEvaluateSkipsClaimsWithoutResults(t *testing.T) {
	claims := &memClaimStore{claims: []domain.ClaimRecord{
		{TrackingNumber: "CLM-1", Status: domain.ClaimStatusPosted, ApprovedBenefitAmount: ptr(100)},
		{TrackingNumber: "CLM-2", Status: domain.ClaimStatusPosted, ApprovedBenefitAmount: ptr(200)},
	}}
	results := &memResultStore{results: []domain.ClaimResult{
		{TrackingNumber: "CLM-1", Status: domain.ResultApproved, FinalPayout: 100},
	}}

	report, err := NewEvaluateAccuracyUseCase(claims, results).Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if report.Metrics.TotalEvaluated != 1 {
		t.Fatalf("evaluated = %d, want 1", report.Metrics.TotalEvaluated)
	}
}

func TestEvaluateComputesConfusionMatrixAndPayoutMetrics(t *testing.T) {
	claims := &memClaimStore{claims: []domain.ClaimRecord{
		// True positive with an exact payout match.
		{TrackingNumber: "TP", Status: domain.ClaimStatusPosted, ApprovedBenefitAmount: ptr(500)},
		// True negative, both payouts zero.
		{TrackingNumber: "TN", Status: domain.ClaimStatusDeclined, ApprovedBenefitAmount: ptr(0)},
		// False positive, paid out where the adjuster declined.
		{TrackingNumber: "FP", Status: domain.ClaimStatusDeclined, ApprovedBenefitAmount: ptr(0)},
		// False negative, declined where the adjuster paid 400.
		{TrackingNumber: "FN", Status: domain.ClaimStatusPosted, ApprovedBenefitAmount: ptr(400)},
	}}
	results := &memResultStore{results: []domain.ClaimResult{
		{TrackingNumber: "TP", Status: domain.ResultApproved, FinalPayout: 500},
		{TrackingNumber: "TN", Status: domain.ResultDeclined, FinalPayout: 0},
		{TrackingNumber: "FP", Status: domain.ResultApproved, FinalPayout: 300},
		{TrackingNumber: "FN", Status: domain.ResultDeclined, FinalPayout: 0},
	}}

	report, err := NewEvaluateAccuracyUseCase(claims, results).Evaluate(context.Background())
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	m := report.Metrics
	if m.TotalEvaluated != 4 {
		t.Fatalf("evaluated = %d, want 4", m.TotalEvaluated)
	}
	if m.TruePositives != 1 || m.TrueNegatives != 1 || m.FalsePositives != 1 || m.FalseNegatives != 1 {
		t.Fatalf("confusion matrix = TP%d TN%d FP%d FN%d", m.TruePositives, m.TrueNegatives, m.FalsePositives, m.FalseNegatives)
	}
	if m.StatusMatches != 2 || m.StatusAccuracy != 50.0 {
		t.Fatalf("status accuracy = %d matches, %.2f%%", m.StatusMatches, m.StatusAccuracy)
	}

	// Absolute errors: 0, 0, 300, 400.
	if m.ExactPayoutMatches != 2 || m.PayoutsWithinOneDollar != 2 {
		t.Fatalf("exact = %d, within a dollar = %d", m.ExactPayoutMatches, m.PayoutsWithinOneDollar)
	}
	if m.MeanAbsoluteError != 175.0 {
		t.Fatalf("MAE = %v, want 175", m.MeanAbsoluteError)
	}
	// Percentage errors: 0, 0, 100 (zero ground truth), 100.
	if m.MeanPercentageError != 50.0 {
		t.Fatalf("MPE = %v, want 50", m.MeanPercentageError)
	}
	if m.PayoutsWithinFivePercent != 2 {
		t.Fatalf("within 5%% = %d, want 2", m.PayoutsWithinFivePercent)
	}
	wantRMSE := math.Sqrt((300.0*300.0 + 400.0*400.0) / 4.0)
	if math.Abs(m.RootMeanSquaredError-wantRMSE) > 1e-9 {
		t.Fatalf("RMSE = %v, want %v", m.RootMeanSquaredError, wantRMSE)
	}
	if m.MaxPayoutError != 400 || m.MinPayoutError != 0 {
		t.Fatalf("max = %v min = %v", m.MaxPayoutError, m.MinPayoutError)
	}
}

func TestPercentageError(t *testing.T) {
	cases := []struct {
		name      string
		expected  float64
		predicted float64
		want      float64
	}{
		{"exact", 200, 200, 0},
		{"half over", 200, 300, 50},
		{"zero truth nonzero prediction", 0, 10, 100},
		{"both zero", 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := percentageError(tc.expected, tc.predicted); got != tc.want {
				t.Fatalf("percentageError(%v, %v) = %v, want %v", tc.expected, tc.predicted, got, tc.want)
			}
		})
	}
}
