package stats

import (
	"math"

	"github.com/savegress/fraudsight/pkg/models"
)

// UserAggregate holds the per-user rollup over the filtered set. Sums
// are kept alongside sum-of-squares so mean and variance derive without
// a second pass. Countries preserve first-seen order so the most
// frequent country is deterministic under ties.
type UserAggregate struct {
	UserID       string         `json:"user_id"`
	Count        int            `json:"count"`
	Sum          float64        `json:"sum"`
	SumSq        float64        `json:"sum_sq"`
	RiskSum      float64        `json:"risk_sum"`
	Countries    map[string]int `json:"countries"`
	countryOrder []string
}

// Mean returns the mean transaction amount.
func (u *UserAggregate) Mean() float64 {
	if u.Count == 0 {
		return 0
	}
	return u.Sum / float64(u.Count)
}

// Variance returns the population variance, clamped at zero to absorb
// floating-point error.
func (u *UserAggregate) Variance() float64 {
	if u.Count == 0 {
		return 0
	}
	mean := u.Mean()
	v := u.SumSq/float64(u.Count) - mean*mean
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the population standard deviation.
func (u *UserAggregate) StdDev() float64 {
	return math.Sqrt(u.Variance())
}

// AvgRisk returns the mean fraud score.
func (u *UserAggregate) AvgRisk() float64 {
	if u.Count == 0 {
		return 0
	}
	return u.RiskSum / float64(u.Count)
}

// TopCountry returns the user's single most frequent country, breaking
// ties by first-seen order.
func (u *UserAggregate) TopCountry() string {
	best := ""
	bestCount := 0
	for _, country := range u.countryOrder {
		if u.Countries[country] > bestCount {
			best = country
			bestCount = u.Countries[country]
		}
	}
	return best
}

// CountryAggregate holds the per-country rollup over the filtered set
type CountryAggregate struct {
	Country string  `json:"country"`
	Count   int     `json:"count"`
	RiskSum float64 `json:"risk_sum"`
}

// AvgRisk returns the mean fraud score for the country.
func (c *CountryAggregate) AvgRisk() float64 {
	if c.Count == 0 {
		return 0
	}
	return c.RiskSum / float64(c.Count)
}

// Snapshot is the result of one aggregation pass. It is rebuilt in full
// on every filter change and read-only afterwards.
type Snapshot struct {
	Users     map[string]*UserAggregate
	Countries map[string]*CountryAggregate
}

// Compute builds user and country aggregates in a single linear pass
// over the filtered transaction set.
func Compute(txns []models.Transaction) *Snapshot {
	snap := &Snapshot{
		Users:     make(map[string]*UserAggregate),
		Countries: make(map[string]*CountryAggregate),
	}

	for _, txn := range txns {
		user := snap.Users[txn.UserID]
		if user == nil {
			user = &UserAggregate{
				UserID:    txn.UserID,
				Countries: make(map[string]int),
			}
			snap.Users[txn.UserID] = user
		}

		amount := txn.AmountFloat()
		user.Count++
		user.Sum += amount
		user.SumSq += amount * amount
		user.RiskSum += txn.FraudScore
		if _, seen := user.Countries[txn.Country]; !seen {
			user.countryOrder = append(user.countryOrder, txn.Country)
		}
		user.Countries[txn.Country]++

		country := snap.Countries[txn.Country]
		if country == nil {
			country = &CountryAggregate{Country: txn.Country}
			snap.Countries[txn.Country] = country
		}
		country.Count++
		country.RiskSum += txn.FraudScore
	}

	return snap
}

// User returns the aggregate for a user ID, or nil.
func (s *Snapshot) User(userID string) *UserAggregate {
	return s.Users[userID]
}

// Country returns the aggregate for a country, or nil.
func (s *Snapshot) Country(name string) *CountryAggregate {
	return s.Countries[name]
}
