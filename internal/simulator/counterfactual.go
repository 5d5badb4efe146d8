package simulator

import (
	"github.com/savegress/fraudsight/internal/stats"
	"github.com/savegress/fraudsight/pkg/models"
)

// Fixed heuristic score offsets per mitigation toggle. These are
// illustrative approximations, not a recomputation of the scoring model.
const (
	countryChangeOffset   = 0.20
	amountReductionOffset = 0.15
)

// CounterfactualOptions selects the hypothetical mitigations to apply
type CounterfactualOptions struct {
	// IgnoreCountryChange deducts a fixed offset from transactions whose
	// country differs from the owning user's most frequent country.
	IgnoreCountryChange bool `json:"ignore_country_change"`

	// ReduceAmount deducts a fixed offset from transactions whose amount
	// exceeds AmountFraction of the owning user's mean amount, modelling
	// a reduction of the amount below that fraction.
	ReduceAmount   bool    `json:"reduce_amount"`
	AmountFraction float64 `json:"amount_fraction"`
}

// CounterfactualResult reports how many transactions would remain at or
// above the threshold under the hypothesis, next to the baseline.
type CounterfactualResult struct {
	Threshold float64               `json:"threshold"`
	Baseline  int                   `json:"baseline"`
	Remaining int                   `json:"remaining"`
	Options   CounterfactualOptions `json:"options"`
}

// Counterfactual estimates the flagged population under the selected
// mitigations. Effective scores are clamped at zero; the baseline is the
// unmodified flagged count at the same threshold.
func Counterfactual(txns []models.Transaction, snap *stats.Snapshot, threshold float64, opts CounterfactualOptions) CounterfactualResult {
	if opts.AmountFraction <= 0 {
		opts.AmountFraction = 0.5
	}

	baseline := 0
	remaining := 0
	for _, txn := range txns {
		if txn.FraudScore >= threshold {
			baseline++
		}

		score := txn.FraudScore
		user := snap.User(txn.UserID)

		if opts.IgnoreCountryChange && user != nil {
			if top := user.TopCountry(); top != "" && txn.Country != top {
				score -= countryChangeOffset
			}
		}
		if opts.ReduceAmount && user != nil && user.Count > 0 {
			if txn.AmountFloat() > opts.AmountFraction*user.Mean() {
				score -= amountReductionOffset
			}
		}
		if score < 0 {
			score = 0
		}

		if score >= threshold {
			remaining++
		}
	}

	return CounterfactualResult{
		Threshold: threshold,
		Baseline:  baseline,
		Remaining: remaining,
		Options:   opts,
	}
}
