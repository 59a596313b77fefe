package usecase

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const reportRule = 80

// FormatText renders an accuracy report as the fixed-width text layout used
// for operator review.
func (r *AccuracyReport) FormatText() string {
	var b strings.Builder
	heavy := strings.Repeat("=", reportRule)
	light := strings.Repeat("-", reportRule)
	m := r.Metrics

	fmt.Fprintf(&b, "%s\nADJUDICATION ACCURACY REPORT\n%s\n\n", heavy, heavy)
	fmt.Fprintf(&b, "Generated: %s\n", r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "Total Claims Analyzed: %d\n\n", m.TotalEvaluated)

	fmt.Fprintf(&b, "STATUS ACCURACY\n%s\n", light)
	fmt.Fprintf(&b, "Correct: %d\n", m.StatusMatches)
	fmt.Fprintf(&b, "Incorrect: %d\n", m.TotalEvaluated-m.StatusMatches)
	fmt.Fprintf(&b, "Accuracy: %.2f%%\n\n", m.StatusAccuracy)

	b.WriteString("Confusion Matrix:\n")
	fmt.Fprintf(&b, "  Approved -> Approved: %d\n", m.TruePositives)
	fmt.Fprintf(&b, "  Approved -> Declined: %d\n", m.FalseNegatives)
	fmt.Fprintf(&b, "  Declined -> Approved: %d\n", m.FalsePositives)
	fmt.Fprintf(&b, "  Declined -> Declined: %d\n\n", m.TrueNegatives)

	fmt.Fprintf(&b, "PAYOUT ACCURACY\n%s\n", light)
	fmt.Fprintf(&b, "Exact Matches: %d\n", m.ExactPayoutMatches)
	fmt.Fprintf(&b, "Within $1.00: %d\n", m.PayoutsWithinOneDollar)
	fmt.Fprintf(&b, "Within 5%%: %d\n", m.PayoutsWithinFivePercent)
	fmt.Fprintf(&b, "Mean Absolute Error: $%.2f\n", m.MeanAbsoluteError)
	fmt.Fprintf(&b, "Mean Percentage Error: %.2f%%\n", m.MeanPercentageError)
	fmt.Fprintf(&b, "Symmetric Mean Absolute Percentage Error (SMAPE): %.2f%%\n", m.SymmetricMAPE)
	fmt.Fprintf(&b, "Root Mean Squared Error: $%.2f\n", m.RootMeanSquaredError)
	fmt.Fprintf(&b, "Max Error: $%.2f\n", m.MaxPayoutError)
	fmt.Fprintf(&b, "Min Error: $%.2f\n\n", m.MinPayoutError)

	fmt.Fprintf(&b, "PER-CLAIM DETAILS\n%s\n", light)
	b.WriteString("Tracking #   | Status   | Status Match | Payout AI   | Payout GT   | Difference  | % Error\n")
	b.WriteString(light + "\n")
	for _, c := range r.Claims {
		match := "no"
		if c.StatusMatch {
			match = "yes"
		}
		fmt.Fprintf(&b, "%-12s | %-8s | %-12s | $%10.2f | $%10.2f | $%10.2f | %6.2f%%\n",
			c.TrackingNumber,
			c.PredictedStatus,
			match,
			c.PredictedPayout,
			c.ExpectedPayout,
			c.PredictedPayout-c.ExpectedPayout,
			c.PayoutPctError,
		)
	}
	return b.String()
}

// BuildWorkbook renders the report as a two-sheet spreadsheet: aggregate
// metrics on Summary, one row per claim on Claims. The caller owns closing
// the returned file.
func (r *AccuracyReport) BuildWorkbook() (*excelize.File, error) {
	f := excelize.NewFile()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	m := r.Metrics
	summaryRows := [][]any{
		{"Metric", "Value"},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Total Claims Analyzed", m.TotalEvaluated},
		{"Status Correct", m.StatusMatches},
		{"Status Accuracy (%)", m.StatusAccuracy},
		{"Approved -> Approved", m.TruePositives},
		{"Approved -> Declined", m.FalseNegatives},
		{"Declined -> Approved", m.FalsePositives},
		{"Declined -> Declined", m.TrueNegatives},
		{"Exact Payout Matches", m.ExactPayoutMatches},
		{"Payouts Within $1.00", m.PayoutsWithinOneDollar},
		{"Payouts Within 5%", m.PayoutsWithinFivePercent},
		{"Mean Absolute Error ($)", m.MeanAbsoluteError},
		{"Mean Percentage Error (%)", m.MeanPercentageError},
		{"SMAPE (%)", m.SymmetricMAPE},
		{"Root Mean Squared Error ($)", m.RootMeanSquaredError},
		{"Max Error ($)", m.MaxPayoutError},
		{"Min Error ($)", m.MinPayoutError},
	}
	for i, row := range summaryRows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("summary cell name: %w", err)
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	const claims = "Claims"
	if _, err := f.NewSheet(claims); err != nil {
		return nil, fmt.Errorf("create claims sheet: %w", err)
	}
	header := []any{
		"Tracking Number", "Expected Status", "Predicted Status", "Status Match",
		"Expected Payout", "Predicted Payout", "Absolute Error", "Percentage Error",
	}
	if err := f.SetSheetRow(claims, "A1", &header); err != nil {
		return nil, fmt.Errorf("write claims header: %w", err)
	}
	for i, c := range r.Claims {
		row := []any{
			c.TrackingNumber,
			string(c.ExpectedStatus),
			string(c.PredictedStatus),
			c.StatusMatch,
			c.ExpectedPayout,
			c.PredictedPayout,
			c.PayoutError,
			c.PayoutPctError,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("claims cell name: %w", err)
		}
		if err := f.SetSheetRow(claims, cell, &row); err != nil {
			return nil, fmt.Errorf("write claim row %d: %w", i+2, err)
		}
	}
	return f, nil
}
