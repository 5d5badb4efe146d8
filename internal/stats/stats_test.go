package stats

import (
	"math"
	"testing"
	"time"

	"github.com/savegress/fraudsight/pkg/models"
	"github.com/shopspring/decimal"
)

func txn(id, userID string, amount float64, score float64, category, country string) models.Transaction {
	return models.Transaction{
		ID:         id,
		UserID:     userID,
		Timestamp:  time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Amount:     decimal.NewFromFloat(amount),
		Category:   category,
		Country:    country,
		FraudScore: score,
	}
}

func TestCompute_AggregateConsistency(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 100, 0.1, "food", "India"),
		txn("2", "U1", 200, 0.2, "travel", "India"),
		txn("3", "U1", 300, 0.3, "food", "UK"),
		txn("4", "U2", 50, 0.9, "food", "USA"),
	}

	snap := Compute(txns)

	u1 := snap.User("U1")
	if u1 == nil {
		t.Fatal("expected aggregate for U1")
	}
	if u1.Count != 3 {
		t.Errorf("U1 count = %d, want 3", u1.Count)
	}
	// mean * count must reproduce the sum within float tolerance.
	if diff := math.Abs(u1.Mean()*float64(u1.Count) - u1.Sum); diff > 1e-9 {
		t.Errorf("mean*count differs from sum by %v", diff)
	}
	if u1.Sum != 600 {
		t.Errorf("U1 sum = %v, want 600", u1.Sum)
	}
	if got := snap.User("U2").AvgRisk(); got != 0.9 {
		t.Errorf("U2 avg risk = %v, want 0.9", got)
	}

	india := snap.Country("India")
	if india == nil || india.Count != 2 {
		t.Fatalf("India aggregate = %+v, want count 2", india)
	}
}

func TestUserAggregate_VarianceClamped(t *testing.T) {
	// Identical amounts can produce a tiny negative variance from
	// floating-point error; it must clamp to zero.
	agg := &UserAggregate{Count: 3, Sum: 0.3, SumSq: 0.03}
	if v := agg.Variance(); v < 0 {
		t.Errorf("variance = %v, want >= 0", v)
	}
}

func TestUserAggregate_TopCountryTieBreak(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 10, 0, "food", "India"),
		txn("2", "U1", 10, 0, "food", "UK"),
	}
	snap := Compute(txns)

	// Equal counts: first-seen country wins.
	if got := snap.User("U1").TopCountry(); got != "India" {
		t.Errorf("top country = %s, want India", got)
	}
}

func TestDrivers_LargeAmountAndHighScore(t *testing.T) {
	// Amounts [100, 100, 10000] for one user: the 10000 transaction must
	// surface both the amount driver and the score driver.
	txns := []models.Transaction{
		txn("1", "U1", 100, 0.1, "food", "India"),
		txn("2", "U1", 100, 0.1, "food", "India"),
		txn("3", "U1", 10000, 0.9, "food", "India"),
	}
	snap := Compute(txns)
	agg := snap.User("U1")

	if got := agg.Mean(); got != 3400 {
		t.Errorf("mean = %v, want 3400", got)
	}

	drivers := Drivers(txns[2], agg)
	if !contains(drivers, DriverLargeAmount) {
		t.Errorf("drivers = %v, want %q included", drivers, DriverLargeAmount)
	}
	if !contains(drivers, DriverHighScore) {
		t.Errorf("drivers = %v, want %q included", drivers, DriverHighScore)
	}

	// The unremarkable sibling transactions must not pick up the
	// amount driver.
	if contains(Drivers(txns[0], agg), DriverLargeAmount) {
		t.Error("ordinary transaction should not carry the amount driver")
	}
}

func TestDrivers_TwoSigmaAmount(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 100, 0.1, "food", "India"),
		txn("2", "U1", 110, 0.1, "food", "India"),
		txn("3", "U1", 90, 0.1, "food", "India"),
		txn("4", "U1", 105, 0.1, "food", "India"),
		txn("5", "U1", 5000, 0.2, "food", "India"),
	}
	snap := Compute(txns)
	agg := snap.User("U1")

	drivers := Drivers(txns[4], agg)
	if !contains(drivers, DriverLargeAmount) {
		t.Errorf("drivers = %v, want %q included", drivers, DriverLargeAmount)
	}
	if contains(Drivers(txns[1], agg), DriverLargeAmount) {
		t.Error("in-band amount should not carry the amount driver")
	}
}

func TestDrivers_FlagsAndCountryChange(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 100, 0.1, "food", "India"),
		txn("2", "U1", 100, 0.1, "food", "India"),
	}
	snap := Compute(txns)
	agg := snap.User("U1")

	suspect := txn("3", "U1", 100, 0.2, "food", "Nigeria")
	suspect.RuleFlag = true
	suspect.VelocityFlag = true

	drivers := Drivers(suspect, agg)
	for _, want := range []string{DriverRuleFlag, DriverVelocityFlag, DriverCountryChange} {
		if !contains(drivers, want) {
			t.Errorf("drivers = %v, want %q included", drivers, want)
		}
	}
	if contains(drivers, DriverModelFlag) {
		t.Errorf("drivers = %v, model flag driver should be absent", drivers)
	}
}

func TestDrivers_NeverEmpty(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 100, 0.1, "food", "India"),
	}
	snap := Compute(txns)

	// A perfectly ordinary transaction still yields the placeholder.
	drivers := Drivers(txns[0], snap.User("U1"))
	if len(drivers) == 0 {
		t.Fatal("driver list must never be empty")
	}
	if drivers[0] != DriverNone {
		t.Errorf("drivers = %v, want single placeholder", drivers)
	}

	// Even with no owning aggregate at all.
	drivers = Drivers(txns[0], nil)
	if len(drivers) == 0 {
		t.Fatal("driver list must never be empty without an aggregate")
	}
}

func TestCompare_SameUserBothSides(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 100, 0.4, "food", "India"),
		txn("2", "U1", 300, 0.6, "food", "India"),
	}
	snap := Compute(txns)

	cmp := snap.Compare("U1", "U1")
	if cmp.Left != cmp.Right {
		t.Errorf("same-user comparison sides differ: %+v vs %+v", cmp.Left, cmp.Right)
	}
	if cmp.Left.TotalSpend != 400 {
		t.Errorf("total spend = %v, want 400", cmp.Left.TotalSpend)
	}
	if cmp.Left.AvgSpend != 200 {
		t.Errorf("avg spend = %v, want 200", cmp.Left.AvgSpend)
	}
	if cmp.Left.AvgRisk != 0.5 {
		t.Errorf("avg risk = %v, want 0.5", cmp.Left.AvgRisk)
	}
}

func TestCompare_UnknownUser(t *testing.T) {
	snap := Compute(nil)
	cmp := snap.Compare("ghost", "ghost")
	if cmp.Left.TxCount != 0 || cmp.Left.TotalSpend != 0 {
		t.Errorf("unknown user summary = %+v, want zeros", cmp.Left)
	}
}

func TestBuildHeatmap_TopFiveDeterministic(t *testing.T) {
	var txns []models.Transaction
	categories := []string{"a", "b", "c", "d", "e", "f", "g"}
	for i, cat := range categories {
		// Category "a" most frequent, descending from there.
		for j := 0; j <= len(categories)-i; j++ {
			txns = append(txns, txn("x", "U1", 10, 0.5, cat, "India"))
		}
	}

	hm1 := BuildHeatmap(txns)
	hm2 := BuildHeatmap(txns)

	if len(hm1.Categories) != 5 {
		t.Fatalf("got %d categories, want 5", len(hm1.Categories))
	}
	for i := range hm1.Categories {
		if hm1.Categories[i] != hm2.Categories[i] {
			t.Errorf("heatmap not deterministic at category %d", i)
		}
	}
	if hm1.Categories[0] != "a" {
		t.Errorf("most frequent category = %s, want a", hm1.Categories[0])
	}
	// "f" and "g" fall outside the top 5.
	for _, cat := range hm1.Categories {
		if cat == "f" || cat == "g" {
			t.Errorf("category %s should be outside the top 5", cat)
		}
	}
}

func TestBuildHeatmap_CellMeanRisk(t *testing.T) {
	txns := []models.Transaction{
		txn("1", "U1", 10, 0.2, "food", "India"),
		txn("2", "U1", 10, 0.4, "food", "India"),
		txn("3", "U1", 10, 0.9, "travel", "UK"),
	}

	hm := BuildHeatmap(txns)

	var foodIndia *HeatmapCell
	for i := range hm.Cells {
		if hm.Cells[i].Category == "food" && hm.Cells[i].Country == "India" {
			foodIndia = &hm.Cells[i]
		}
		if hm.Cells[i].Category == "food" && hm.Cells[i].Country == "UK" {
			t.Error("empty cell food/UK must not be materialized")
		}
	}
	if foodIndia == nil {
		t.Fatal("expected food/India cell")
	}
	if diff := math.Abs(foodIndia.MeanRisk - 0.3); diff > 1e-9 {
		t.Errorf("food/India mean risk = %v, want 0.3", foodIndia.MeanRisk)
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
