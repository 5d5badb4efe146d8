// Package dashboard implements the controller that owns the loaded
// transaction set and every derived view: aggregates, insights, clusters,
// the two tables and the KPI header.
package dashboard

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/savegress/fraudsight/internal/config"
	"github.com/savegress/fraudsight/internal/stats"
	"github.com/savegress/fraudsight/internal/store"
	"github.com/savegress/fraudsight/internal/table"
	"github.com/savegress/fraudsight/pkg/models"
)

// StatusNoData is the distinguished status before any upload. An empty
// dataset is a normal state, never an error.
const (
	StatusNoData = "no data yet"
	StatusReady  = "ready"
)

var (
	// ErrInvalidTimeRange is returned for a time range outside the enumerated set.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrTransactionNotFound is returned when no transaction matches the ID.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// KPIs is the headline metric block of the dashboard.
type KPIs struct {
	TotalTransactions int             `json:"total_transactions"`
	FlaggedCount      int             `json:"flagged_count"`
	FlagRate          float64         `json:"flag_rate"`
	TotalSpend        decimal.Decimal `json:"total_spend"`
	AvgRisk           float64         `json:"avg_risk"`
	UniqueUsers       int             `json:"unique_users"`
}

// Payload is the full dashboard response body.
type Payload struct {
	Status          string                `json:"status"`
	Insights        stats.Insights        `json:"insights"`
	CategoryChart   []stats.CategorySpend `json:"category_chart"`
	MonthlyTrends   []stats.MonthlyTrend  `json:"monthly_trends"`
	Transactions    []table.RenderedRow   `json:"transactions"`
	FraudTable      []table.RenderedRow   `json:"fraud_table"`
	ClusterInsights []stats.Cluster       `json:"cluster_insights"`
	UserProfile     models.UserProfile    `json:"user_profile"`
	SampleRows      []models.Transaction  `json:"sample_rows"`
	KPIs            KPIs                  `json:"kpis"`
	RiskThreshold   float64               `json:"risk_threshold"`
	TimeRange       models.TimeRange      `json:"time_range"`
}

// TableQuery carries the view parameters of one table request.
type TableQuery struct {
	Page     int
	Sort     string
	Desc     bool
	Search   string
	Category string
}

// TableView is the rendered response for one table request.
type TableView struct {
	Rows       []table.RenderedRow `json:"rows"`
	StatusLine string              `json:"status_line"`
	Pagination table.Pagination    `json:"pagination"`
}

// Controller owns the dataset and all derived state. Recompute is a
// wholesale replacement under the write lock; readers see either the old
// or the new view, never a mix.
type Controller struct {
	mu  sync.RWMutex
	ui  *store.Store
	cfg config.DashboardConfig
	now func() time.Time

	notify func()

	all     []models.Transaction
	profile models.UserProfile
	loaded  bool

	threshold float64
	timeRange models.TimeRange

	filtered []models.Transaction
	snap     *stats.Snapshot
	insights stats.Insights
	clusters []stats.Cluster
	kpis     KPIs

	txnTable    *table.Table[models.Transaction]
	reviewTable *table.Table[models.Transaction]
}

// NewController creates a controller publishing into the given UI store.
func NewController(ui *store.Store, cfg config.DashboardConfig) *Controller {
	timeRange := models.TimeRange(cfg.TimeRange)
	if !timeRange.Valid() {
		timeRange = models.TimeRangeAll
	}

	c := &Controller{
		ui:          ui,
		cfg:         cfg,
		now:         time.Now,
		threshold:   clampThreshold(cfg.RiskThreshold),
		timeRange:   timeRange,
		txnTable:    newTransactionTable(cfg.PageSize),
		reviewTable: newReviewTable(cfg.PageSize),
	}
	c.recompute()
	return c
}

// SetNotify installs the hook invoked after every recompute, typically
// the websocket hub broadcast. Must be set before serving traffic.
func (c *Controller) SetNotify(fn func()) {
	c.mu.Lock()
	c.notify = fn
	c.mu.Unlock()
}

// SetClock overrides the clock used to anchor rolling time windows.
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Load replaces the dataset and profile wholesale and rebuilds every
// derived view.
func (c *Controller) Load(txns []models.Transaction, profile models.UserProfile) {
	c.mu.Lock()
	c.all = append([]models.Transaction(nil), txns...)
	c.profile = profile
	c.loaded = true
	c.recompute()
	c.mu.Unlock()
	c.publish()
}

// SetThreshold clamps the value to [0,1], applies it and rebuilds. The
// applied value is returned.
func (c *Controller) SetThreshold(value float64) float64 {
	c.mu.Lock()
	c.threshold = clampThreshold(value)
	applied := c.threshold
	c.recompute()
	c.mu.Unlock()
	c.publish()
	return applied
}

// SetTimeRange applies a time-range filter from the enumerated set and
// rebuilds. Unknown values are rejected without side effects.
func (c *Controller) SetTimeRange(r models.TimeRange) error {
	if !r.Valid() {
		return ErrInvalidTimeRange
	}
	c.mu.Lock()
	c.timeRange = r
	c.recompute()
	c.mu.Unlock()
	c.publish()
	return nil
}

// Threshold returns the active risk threshold.
func (c *Controller) Threshold() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.threshold
}

// TimeRange returns the active time range.
func (c *Controller) TimeRange() models.TimeRange {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeRange
}

// Filtered returns a copy of the current time-filtered row set for the
// simulator and export collaborators.
func (c *Controller) Filtered() []models.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Transaction(nil), c.filtered...)
}

// Snapshot returns the aggregate snapshot over the filtered set.
func (c *Controller) Snapshot() *stats.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Heatmap builds the category-by-country risk heatmap over the filtered set.
func (c *Controller) Heatmap() stats.Heatmap {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return stats.BuildHeatmap(c.filtered)
}

// Compare summarizes two users side by side over the filtered set.
func (c *Controller) Compare(left, right string) stats.Comparison {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap.Compare(left, right)
}

// Drivers explains one transaction's risk against its user's aggregate.
func (c *Controller) Drivers(txnID string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, txn := range c.filtered {
		if txn.ID == txnID {
			return stats.Drivers(txn, c.snap.User(txn.UserID)), nil
		}
	}
	return nil, ErrTransactionNotFound
}

// Transaction returns the filtered-set transaction with the given ID.
func (c *Controller) Transaction(txnID string) (models.Transaction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, txn := range c.filtered {
		if txn.ID == txnID {
			return txn, nil
		}
	}
	return models.Transaction{}, ErrTransactionNotFound
}

// QueryTransactions applies the view parameters to the general
// transaction table and returns the rendered page.
func (c *Controller) QueryTransactions(q TableQuery) TableView {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyQuery(c.txnTable, q, nil)
	return viewOf(c.txnTable)
}

// QueryReview applies the view parameters to the fraud review queue,
// which only ever shows rows flagged at the active threshold.
func (c *Controller) QueryReview(q TableQuery) TableView {
	c.mu.Lock()
	defer c.mu.Unlock()

	threshold := c.threshold
	c.applyQuery(c.reviewTable, q, func(t models.Transaction) bool {
		return t.Flagged(threshold)
	})
	return viewOf(c.reviewTable)
}

// Dashboard assembles the full dashboard payload.
func (c *Controller) Dashboard() Payload {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := StatusReady
	if !c.loaded || len(c.all) == 0 {
		status = StatusNoData
	}

	sample := c.filtered
	if len(sample) > c.cfg.SampleRows {
		sample = sample[:c.cfg.SampleRows]
	}

	return Payload{
		Status:          status,
		Insights:        c.insights,
		CategoryChart:   c.insights.TopCategories,
		MonthlyTrends:   c.insights.MonthlyTrends,
		Transactions:    c.txnTable.RenderN(c.cfg.MaxTableRows),
		FraudTable:      c.reviewTable.RenderN(c.cfg.MaxTableRows),
		ClusterInsights: c.clusters,
		UserProfile:     c.profile,
		SampleRows:      append([]models.Transaction{}, sample...),
		KPIs:            c.kpis,
		RiskThreshold:   c.threshold,
		TimeRange:       c.timeRange,
	}
}

// recompute rebuilds every derived view from the loaded set. Caller must
// hold the write lock.
func (c *Controller) recompute() {
	c.filtered = c.applyTimeRange(c.all)
	c.snap = stats.Compute(c.filtered)
	c.insights = stats.BuildInsights(c.filtered, c.snap)
	c.clusters = stats.BuildClusters(c.filtered, c.snap)

	c.txnTable.SetRows(c.filtered)
	c.reviewTable.SetRows(c.filtered)
	threshold := c.threshold
	c.reviewTable.SetFilter(func(t models.Transaction) bool {
		return t.Flagged(threshold)
	})

	flagged := 0
	riskSum := 0.0
	for _, txn := range c.filtered {
		if txn.Flagged(threshold) {
			flagged++
		}
		riskSum += txn.FraudScore
	}
	kpis := KPIs{
		TotalTransactions: len(c.filtered),
		FlaggedCount:      flagged,
		TotalSpend:        c.insights.TotalSpend,
		UniqueUsers:       len(c.snap.Users),
	}
	if len(c.filtered) > 0 {
		kpis.FlagRate = float64(flagged) / float64(len(c.filtered))
		kpis.AvgRisk = riskSum / float64(len(c.filtered))
	}
	c.kpis = kpis
}

// publish pushes filter and KPI state into the UI store and fires the
// refresh hook. Runs outside the controller lock so subscribers may call
// back into the controller.
func (c *Controller) publish() {
	c.mu.RLock()
	threshold := c.threshold
	timeRange := c.timeRange
	kpis := c.kpis
	status := StatusReady
	if !c.loaded || len(c.all) == 0 {
		status = StatusNoData
	}
	notify := c.notify
	c.mu.RUnlock()

	c.ui.Set("filters.threshold", threshold)
	c.ui.Set("filters.timerange", string(timeRange))
	c.ui.Set("dashboard.status", status)
	c.ui.Set("dashboard.kpis", kpis)

	if notify != nil {
		notify()
	}
}

func (c *Controller) applyTimeRange(txns []models.Transaction) []models.Transaction {
	window := c.timeRange.Window()
	if window == 0 {
		return append([]models.Transaction(nil), txns...)
	}

	cutoff := c.now().Add(-window)
	out := make([]models.Transaction, 0, len(txns))
	for _, txn := range txns {
		if !txn.Timestamp.Before(cutoff) {
			out = append(out, txn)
		}
	}
	return out
}

// applyQuery installs the request's view parameters on a table. The
// category filter composes with the table's base predicate.
func (c *Controller) applyQuery(t *table.Table[models.Transaction], q TableQuery, base func(models.Transaction) bool) {
	category := strings.TrimSpace(q.Category)
	switch {
	case base == nil && category == "":
		t.SetFilter(nil)
	case base == nil:
		t.SetFilter(func(txn models.Transaction) bool {
			return strings.EqualFold(txn.Category, category)
		})
	case category == "":
		t.SetFilter(base)
	default:
		t.SetFilter(func(txn models.Transaction) bool {
			return base(txn) && strings.EqualFold(txn.Category, category)
		})
	}

	t.SetSearch(q.Search)
	t.Sort(q.Sort, q.Desc)
	if q.Page > 0 {
		t.SetPage(q.Page)
	}
}

func viewOf(t *table.Table[models.Transaction]) TableView {
	return TableView{
		Rows:       t.RenderPage(),
		StatusLine: t.StatusLine(),
		Pagination: t.Pagination(),
	}
}

func clampThreshold(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
