package stats

import (
	"sort"

	"github.com/savegress/fraudsight/pkg/models"
)

// heatmapTopN restricts the heatmap to the most frequent categories and
// countries.
const heatmapTopN = 5

// HeatmapCell is one category x country cell with its mean risk score
type HeatmapCell struct {
	Category string  `json:"category"`
	Country  string  `json:"country"`
	Count    int     `json:"count"`
	MeanRisk float64 `json:"mean_risk"`
}

// Heatmap covers the top-5 categories and top-5 countries by transaction
// count. Cells absent from Cells have no transactions and render as
// zero-intensity.
type Heatmap struct {
	Categories []string      `json:"categories"`
	Countries  []string      `json:"countries"`
	Cells      []HeatmapCell `json:"cells"`
}

// BuildHeatmap computes mean risk per category x country cell, restricted
// to the five most frequent categories and countries in the filtered set.
// Top-5 selection breaks ties by first-seen order, so the result is
// deterministic for a given input ordering.
func BuildHeatmap(txns []models.Transaction) Heatmap {
	categories := topByCount(txns, func(t models.Transaction) string { return t.Category })
	countries := topByCount(txns, func(t models.Transaction) string { return t.Country })

	catSet := toSet(categories)
	countrySet := toSet(countries)

	type cellAgg struct {
		count   int
		riskSum float64
	}
	cells := make(map[[2]string]*cellAgg)
	for _, txn := range txns {
		if !catSet[txn.Category] || !countrySet[txn.Country] {
			continue
		}
		key := [2]string{txn.Category, txn.Country}
		agg := cells[key]
		if agg == nil {
			agg = &cellAgg{}
			cells[key] = agg
		}
		agg.count++
		agg.riskSum += txn.FraudScore
	}

	hm := Heatmap{Categories: categories, Countries: countries}
	for _, cat := range categories {
		for _, country := range countries {
			agg := cells[[2]string{cat, country}]
			if agg == nil {
				continue
			}
			hm.Cells = append(hm.Cells, HeatmapCell{
				Category: cat,
				Country:  country,
				Count:    agg.count,
				MeanRisk: agg.riskSum / float64(agg.count),
			})
		}
	}
	return hm
}

// topByCount returns up to heatmapTopN keys ordered by descending count,
// first-seen order breaking ties.
func topByCount(txns []models.Transaction, key func(models.Transaction) string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	for i, txn := range txns {
		k := key(txn)
		if _, seen := counts[k]; !seen {
			firstSeen[k] = i
			order = append(order, k)
		}
		counts[k]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	if len(order) > heatmapTopN {
		order = order[:heatmapTopN]
	}
	return order
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
