package dashboard

import (
	"fmt"
	"time"

	"github.com/savegress/fraudsight/internal/table"
	"github.com/savegress/fraudsight/pkg/models"
)

// transactionColumns is the shared column set for both dashboard tables.
func transactionColumns() []table.Column[models.Transaction] {
	return []table.Column[models.Transaction]{
		{Name: "id", Value: func(t models.Transaction) interface{} { return t.ID }},
		{Name: "user_id", Value: func(t models.Transaction) interface{} { return t.UserID }},
		{Name: "timestamp", Value: func(t models.Transaction) interface{} { return t.Timestamp.Unix() }},
		{Name: "amount", Value: func(t models.Transaction) interface{} { return t.AmountFloat() }},
		{Name: "category", Value: func(t models.Transaction) interface{} { return t.Category }},
		{Name: "merchant", Value: func(t models.Transaction) interface{} { return t.Merchant }},
		{Name: "country", Value: func(t models.Transaction) interface{} { return t.Country }},
		{Name: "fraud_score", Value: func(t models.Transaction) interface{} { return t.FraudScore }},
	}
}

// renderWith builds a row-render strategy that badges each row from the
// given label vocabulary. The two tables differ only in this strategy.
func renderWith(labels models.LabelSet) table.RenderFunc[models.Transaction] {
	return func(t models.Transaction) table.RenderedRow {
		return table.RenderedRow{
			Cells: map[string]string{
				"id":          t.ID,
				"user_id":     t.UserID,
				"timestamp":   t.Timestamp.Format(time.RFC3339),
				"amount":      t.Amount.StringFixed(2),
				"category":    t.Category,
				"merchant":    t.Merchant,
				"country":     t.Country,
				"fraud_score": fmt.Sprintf("%.2f", t.FraudScore),
			},
			Badge: labels.Label(t.FraudScore),
		}
	}
}

// newTransactionTable builds the general transaction table with the
// review vocabulary (Low/Medium/High).
func newTransactionTable(pageSize int) *table.Table[models.Transaction] {
	return table.New(nil, transactionColumns(), renderWith(models.ReviewLabels), pageSize)
}

// newReviewTable builds the fraud review queue with the triage vocabulary
// (Low/Warning/Critical). Its flagged-only filter is installed by the
// controller on every recompute because it closes over the threshold.
func newReviewTable(pageSize int) *table.Table[models.Transaction] {
	return table.New(nil, transactionColumns(), renderWith(models.TriageLabels), pageSize)
}
