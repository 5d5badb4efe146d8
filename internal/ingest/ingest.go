// Package ingest parses uploaded transaction CSVs into the engine's data
// model. Parsing is forgiving about values and strict about schema:
// missing required columns fail the upload, while malformed cell values
// fall back to documented sentinels.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/savegress/fraudsight/pkg/models"
)

// RequiredColumns are the columns every upload must carry.
var RequiredColumns = []string{"user_id", "amount", "category", "merchant", "country", "timestamp"}

// timestampLayouts are tried in order when parsing the timestamp column.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Result carries the parsed rows and how many rows were dropped for
// unparseable timestamps.
type Result struct {
	Transactions []models.Transaction
	Dropped      int
}

// Parse reads a transaction CSV. Headers are normalized by trimming and
// lowercasing before the schema check. Rows with unparseable timestamps
// are dropped; other malformed values fall back to sentinels (amount and
// score 0, flags false). A missing ID column or cell defaults the ID to
// the 1-based row ordinal.
func Parse(r io.Reader) (Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("empty file")
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Result{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	var result Result
	ordinal := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("failed to read row %d: %w", ordinal+1, err)
		}
		ordinal++

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		ts, ok := parseTimestamp(cell("timestamp"))
		if !ok {
			result.Dropped++
			log.Printf("ingest: dropping row %d: unparseable timestamp %q", ordinal, cell("timestamp"))
			continue
		}

		id := cell("id")
		if id == "" {
			id = strconv.Itoa(ordinal)
		}

		result.Transactions = append(result.Transactions, models.Transaction{
			ID:           id,
			UserID:       cell("user_id"),
			Timestamp:    ts,
			Amount:       parseAmount(cell("amount")),
			Category:     cell("category"),
			Merchant:     cell("merchant"),
			Country:      cell("country"),
			FraudScore:   parseScore(cell("fraud_score")),
			RuleFlag:     parseFlag(cell("rule_based_fraud_flag")),
			ModelFlag:    parseFlag(cell("model_fraud_flag")),
			VelocityFlag: parseFlag(cell("velocity_flag")),
		})
	}

	return result, nil
}

func parseTimestamp(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseAmount(value string) decimal.Decimal {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

func parseScore(value string) float64 {
	score, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return score
}

func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "t", "yes", "y":
		return true
	}
	return false
}
