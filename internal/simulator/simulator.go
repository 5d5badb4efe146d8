package simulator

import (
	"github.com/savegress/fraudsight/pkg/models"
)

// Result holds the derived figures for one threshold
type Result struct {
	Threshold    float64 `json:"threshold"`
	FlaggedCount int     `json:"flagged_count"`
	TotalCount   int     `json:"total_count"`
	FlagRate     float64 `json:"flag_rate"`
}

// Simulate maps a risk-score threshold to the flagged count and flag
// rate over the active filtered set. A transaction counts as flagged
// when its score meets or exceeds the threshold; the rate is 0 for an
// empty set. Flagged count is non-increasing in the threshold.
func Simulate(txns []models.Transaction, threshold float64) Result {
	flagged := 0
	for _, txn := range txns {
		if txn.FraudScore >= threshold {
			flagged++
		}
	}

	rate := 0.0
	if len(txns) > 0 {
		rate = float64(flagged) / float64(len(txns))
	}

	return Result{
		Threshold:    threshold,
		FlaggedCount: flagged,
		TotalCount:   len(txns),
		FlagRate:     rate,
	}
}

// Sweep evaluates a sequence of thresholds against the same set, for
// rendering a threshold curve.
func Sweep(txns []models.Transaction, thresholds []float64) []Result {
	results := make([]Result, 0, len(thresholds))
	for _, t := range thresholds {
		results = append(results, Simulate(txns, t))
	}
	return results
}
