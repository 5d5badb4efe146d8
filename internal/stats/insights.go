package stats

import (
	"fmt"
	"sort"

	"github.com/savegress/fraudsight/pkg/models"
	"github.com/shopspring/decimal"
)

// CategorySpend is total spend for one category
type CategorySpend struct {
	Category   string          `json:"category"`
	TotalSpend decimal.Decimal `json:"total_spend"`
}

// MonthlyTrend is total spend for one calendar month
type MonthlyTrend struct {
	Month      string          `json:"month"`
	TotalSpend decimal.Decimal `json:"total_spend"`
}

// Insights is the compact rollup that feeds the KPI header, the charts
// and the assistant context block.
type Insights struct {
	TotalSpend    decimal.Decimal `json:"total_spend"`
	TopCategories []CategorySpend `json:"top_categories"`
	MonthlyTrends []MonthlyTrend  `json:"monthly_trends"`
	UserSummaries []UserSummary   `json:"user_summaries"`
}

// BuildInsights computes the dashboard insight rollup from the filtered
// transaction set. An empty set yields zero values, not an error.
func BuildInsights(txns []models.Transaction, snap *Snapshot) Insights {
	ins := Insights{
		TotalSpend:    decimal.Zero,
		TopCategories: []CategorySpend{},
		MonthlyTrends: []MonthlyTrend{},
		UserSummaries: []UserSummary{},
	}
	if len(txns) == 0 {
		return ins
	}

	byCategory := make(map[string]decimal.Decimal)
	byMonth := make(map[string]decimal.Decimal)
	for _, txn := range txns {
		ins.TotalSpend = ins.TotalSpend.Add(txn.Amount)
		byCategory[txn.Category] = byCategory[txn.Category].Add(txn.Amount)
		month := txn.Timestamp.Format("2006-01")
		byMonth[month] = byMonth[month].Add(txn.Amount)
	}

	for cat, total := range byCategory {
		ins.TopCategories = append(ins.TopCategories, CategorySpend{Category: cat, TotalSpend: total})
	}
	sort.SliceStable(ins.TopCategories, func(i, j int) bool {
		return ins.TopCategories[i].TotalSpend.GreaterThan(ins.TopCategories[j].TotalSpend)
	})

	for month, total := range byMonth {
		ins.MonthlyTrends = append(ins.MonthlyTrends, MonthlyTrend{Month: month, TotalSpend: total})
	}
	sort.Slice(ins.MonthlyTrends, func(i, j int) bool {
		return ins.MonthlyTrends[i].Month < ins.MonthlyTrends[j].Month
	})

	userIDs := make([]string, 0, len(snap.Users))
	for id := range snap.Users {
		userIDs = append(userIDs, id)
	}
	sort.Strings(userIDs)
	for _, id := range userIDs {
		ins.UserSummaries = append(ins.UserSummaries, snap.summarize(id))
	}

	return ins
}

// Cluster is one human-readable anomaly cluster for the dashboard
type Cluster struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// BuildClusters derives lightweight anomaly clusters from the filtered
// set: risky categories, geographic hotspots and velocity-heavy users.
// Scores are normalized against the maximum observed fraud score so the
// UI renders a consistent 0-1 intensity. At most five clusters survive.
func BuildClusters(txns []models.Transaction, snap *Snapshot) []Cluster {
	if len(txns) == 0 {
		return []Cluster{}
	}

	maxScore := 1e-6
	for _, txn := range txns {
		if txn.FraudScore > maxScore {
			maxScore = txn.FraudScore
		}
	}

	var clusters []Cluster

	// Risky categories by mean normalized score, top 3.
	catRisk := make(map[string]float64)
	catCount := make(map[string]int)
	var catOrder []string
	for _, txn := range txns {
		if _, seen := catCount[txn.Category]; !seen {
			catOrder = append(catOrder, txn.Category)
		}
		catRisk[txn.Category] += clamp01(txn.FraudScore / maxScore)
		catCount[txn.Category]++
	}
	sort.SliceStable(catOrder, func(i, j int) bool {
		return catRisk[catOrder[i]]/float64(catCount[catOrder[i]]) >
			catRisk[catOrder[j]]/float64(catCount[catOrder[j]])
	})
	for i, cat := range catOrder {
		if i == 3 {
			break
		}
		clusters = append(clusters, Cluster{
			Name:  fmt.Sprintf("Category spike: %s", cat),
			Score: catRisk[cat] / float64(catCount[cat]),
		})
	}

	// Geographic hotspots, top 2.
	countryOrder := make([]string, 0, len(snap.Countries))
	for name := range snap.Countries {
		countryOrder = append(countryOrder, name)
	}
	sort.Strings(countryOrder)
	sort.SliceStable(countryOrder, func(i, j int) bool {
		return snap.Countries[countryOrder[i]].AvgRisk() > snap.Countries[countryOrder[j]].AvgRisk()
	})
	for i, name := range countryOrder {
		if i == 2 {
			break
		}
		clusters = append(clusters, Cluster{
			Name:  fmt.Sprintf("Geo hotspot: %s", name),
			Score: clamp01(snap.Countries[name].AvgRisk() / maxScore),
		})
	}

	// Velocity-heavy users: share of velocity-flagged transactions, top 2.
	velHits := make(map[string]int)
	for _, txn := range txns {
		if txn.VelocityFlag {
			velHits[txn.UserID]++
		}
	}
	velOrder := make([]string, 0, len(velHits))
	for id := range velHits {
		velOrder = append(velOrder, id)
	}
	sort.Strings(velOrder)
	sort.SliceStable(velOrder, func(i, j int) bool {
		return velShare(velHits, snap, velOrder[i]) > velShare(velHits, snap, velOrder[j])
	})
	for i, id := range velOrder {
		if i == 2 {
			break
		}
		clusters = append(clusters, Cluster{
			Name:  fmt.Sprintf("Velocity burst: %s", id),
			Score: velShare(velHits, snap, id),
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Score > clusters[j].Score
	})
	if len(clusters) > 5 {
		clusters = clusters[:5]
	}
	return clusters
}

func velShare(hits map[string]int, snap *Snapshot, userID string) float64 {
	agg := snap.Users[userID]
	if agg == nil || agg.Count == 0 {
		return 0
	}
	return float64(hits[userID]) / float64(agg.Count)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
