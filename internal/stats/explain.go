package stats

import (
	"math"

	"github.com/savegress/fraudsight/pkg/models"
)

// Driver labels surfaced by the explainability layer.
const (
	DriverRuleFlag       = "Rule-based detector fired"
	DriverModelFlag      = "Model detector fired"
	DriverVelocityFlag   = "High transaction velocity"
	DriverHighScore      = "High risk score"
	DriverLargeAmount    = "Unusually large amount"
	DriverCountryChange  = "Country differs from user's usual"
	DriverNone           = "No dominant driver"
	highScoreDriverLevel = 0.75
)

// Drivers produces the ordered list of qualitative reasons a transaction
// looks risky, given its owning user's aggregate. The list is never
// empty: when nothing applies, a single placeholder driver is emitted.
func Drivers(txn models.Transaction, user *UserAggregate) []string {
	var drivers []string

	if txn.RuleFlag {
		drivers = append(drivers, DriverRuleFlag)
	}
	if txn.ModelFlag {
		drivers = append(drivers, DriverModelFlag)
	}
	if txn.VelocityFlag {
		drivers = append(drivers, DriverVelocityFlag)
	}
	if txn.FraudScore > highScoreDriverLevel {
		drivers = append(drivers, DriverHighScore)
	}

	if user != nil && user.Count > 0 {
		if unusuallyLarge(txn, user) {
			drivers = append(drivers, DriverLargeAmount)
		}
		if top := user.TopCountry(); top != "" && txn.Country != top {
			drivers = append(drivers, DriverCountryChange)
		}
	}

	if len(drivers) == 0 {
		drivers = append(drivers, DriverNone)
	}
	return drivers
}

// unusuallyLarge reports whether the amount sits more than two standard
// deviations above the user's typical spend. The baseline excludes the
// transaction under test: a single extreme amount would otherwise drag
// the mean and deviation up far enough to hide itself.
func unusuallyLarge(txn models.Transaction, user *UserAggregate) bool {
	amount := txn.AmountFloat()
	n := float64(user.Count - 1)
	if n < 1 {
		return false
	}
	mean := (user.Sum - amount) / n
	variance := (user.SumSq-amount*amount)/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return amount > mean+2*math.Sqrt(variance)
}
