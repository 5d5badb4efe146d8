package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction with externally
// computed risk signals. Scores and flags arrive precomputed from the
// scoring backend; a missing score deserializes to 0 and missing flags
// to false, which is the documented sentinel behavior. The engine never
// mutates a transaction after load.
type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Timestamp    time.Time       `json:"timestamp"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Merchant     string          `json:"merchant"`
	Country      string          `json:"country"`
	FraudScore   float64         `json:"fraud_score"`
	RuleFlag     bool            `json:"rule_based_fraud_flag"`
	ModelFlag    bool            `json:"model_fraud_flag"`
	VelocityFlag bool            `json:"velocity_flag"`
}

// Flagged reports whether the transaction is flagged at the given
// threshold: the score meets or exceeds the threshold, or any detection
// flag is set.
func (t Transaction) Flagged(threshold float64) bool {
	return t.FraudScore >= threshold || t.RuleFlag || t.ModelFlag || t.VelocityFlag
}

// AmountFloat returns the amount as a float64 for statistics math.
func (t Transaction) AmountFloat() float64 {
	return t.Amount.InexactFloat64()
}

// TimeRange represents the active time-range filter
type TimeRange string

const (
	TimeRangeAll TimeRange = "all"
	TimeRange7d  TimeRange = "7d"
	TimeRange30d TimeRange = "30d"
	TimeRange90d TimeRange = "90d"
)

// Valid reports whether the time range is one of the enumerated set.
func (r TimeRange) Valid() bool {
	switch r {
	case TimeRangeAll, TimeRange7d, TimeRange30d, TimeRange90d:
		return true
	}
	return false
}

// Window returns the rolling window duration, or 0 for "all".
func (r TimeRange) Window() time.Duration {
	switch r {
	case TimeRange7d:
		return 7 * 24 * time.Hour
	case TimeRange30d:
		return 30 * 24 * time.Hour
	case TimeRange90d:
		return 90 * 24 * time.Hour
	}
	return 0
}

// CaseStatus represents the analyst review status of a case
type CaseStatus string

const (
	CaseStatusOpen      CaseStatus = "open"
	CaseStatusReview    CaseStatus = "review"
	CaseStatusEscalated CaseStatus = "escalated"
	CaseStatusClosed    CaseStatus = "closed"
)

// Valid reports whether the status is a known workflow state.
func (s CaseStatus) Valid() bool {
	switch s {
	case CaseStatusOpen, CaseStatusReview, CaseStatusEscalated, CaseStatusClosed:
		return true
	}
	return false
}

// CaseEvent is one append-only history entry on a case
type CaseEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
}

// Case represents an analyst-tracked review record for one flagged
// transaction. The case ID equals the transaction ID; at most one case
// exists per transaction. The fraud score is a snapshot taken at
// creation time.
type Case struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Amount     decimal.Decimal `json:"amount"`
	Country    string          `json:"country"`
	FraudScore float64         `json:"fraud_score"`
	Status     CaseStatus      `json:"status"`
	History    []CaseEvent     `json:"history"`
	CreatedAt  time.Time       `json:"created_at"`
}

// UserProfile carries the optional profile fields supplied at upload time
type UserProfile struct {
	Name      string `json:"name"`
	Age       string `json:"age"`
	SheetType string `json:"sheet_type"`
}

// LabelSet is a three-tier risk vocabulary over the shared score bands
// (low <= 0.40, mid <= 0.75, high above). The two sets are intentionally
// distinct: they address different audiences for the same banding.
type LabelSet struct {
	Low  string
	Mid  string
	High string
}

// Shared banding thresholds for all label sets.
const (
	RiskBandLow  = 0.40
	RiskBandHigh = 0.75
)

var (
	// ReviewLabels is the vocabulary used on the general transaction table.
	ReviewLabels = LabelSet{Low: "Low", Mid: "Medium", High: "High"}

	// TriageLabels is the vocabulary used on the fraud review queue.
	TriageLabels = LabelSet{Low: "Low", Mid: "Warning", High: "Critical"}
)

// Label maps a fraud score into the set's vocabulary.
func (ls LabelSet) Label(score float64) string {
	switch {
	case score > RiskBandHigh:
		return ls.High
	case score > RiskBandLow:
		return ls.Mid
	default:
		return ls.Low
	}
}
