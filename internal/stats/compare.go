package stats

// UserSummary is one side of a user comparison
type UserSummary struct {
	UserID     string  `json:"user_id"`
	TotalSpend float64 `json:"total_spend"`
	AvgSpend   float64 `json:"avg_spend"`
	TxCount    int     `json:"tx_count"`
	AvgRisk    float64 `json:"avg_risk"`
}

// Comparison holds the side-by-side figures for two users
type Comparison struct {
	Left  UserSummary `json:"left"`
	Right UserSummary `json:"right"`
}

// Compare computes side-by-side figures for two user IDs from the same
// filtered set. Comparing a user against themselves is permitted and
// yields identical figures on each side. An unknown user yields a zero
// summary rather than an error.
func (s *Snapshot) Compare(left, right string) Comparison {
	return Comparison{
		Left:  s.summarize(left),
		Right: s.summarize(right),
	}
}

func (s *Snapshot) summarize(userID string) UserSummary {
	agg := s.Users[userID]
	if agg == nil {
		return UserSummary{UserID: userID}
	}
	return UserSummary{
		UserID:     userID,
		TotalSpend: agg.Sum,
		AvgSpend:   agg.Mean(),
		TxCount:    agg.Count,
		AvgRisk:    agg.AvgRisk(),
	}
}
