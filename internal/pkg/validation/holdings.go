package validation

import (
	"fmt"
	"sort"

	"etf-analysis/internal/domain"
)

// WarningCode categorizes dataset warnings. W3xxx = holdings validation.
type WarningCode string

const (
	WarnWeightSum       WarningCode = "W3001" // weights do not add up to ~100%
	WarnDuplicateTicker WarningCode = "W3002"
	WarnAbnormalWeight  WarningCode = "W3003" // weight > 50 or < 0
)

// Acceptable total weight band, in percent.
const (
	MinTotalWeight  = 95.0
	MaxTotalWeight  = 105.0
	MaxNormalWeight = 50.0
)

// Warning is a non-fatal finding about a parsed holdings set.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// HoldingsReport is the advisory result of ValidateHoldings.
type HoldingsReport struct {
	TotalWeight      float64   `json:"total_weight"`
	DuplicateCount   int       `json:"duplicate_count"`
	DuplicateTickers []string  `json:"duplicate_tickers"`
	AbnormalCount    int       `json:"abnormal_count"`
	IsValid          bool      `json:"is_valid"`
	Warnings         []Warning `json:"warnings"`
}

// ValidateHoldings checks total weight, duplicate tickers and abnormal weights.
// It never rejects input; callers decide what to do with the warnings.
func ValidateHoldings(holdings []domain.Holding) HoldingsReport {
	r := HoldingsReport{Warnings: []Warning{}, DuplicateTickers: []string{}}

	seen := make(map[string]int, len(holdings))
	for _, h := range holdings {
		r.TotalWeight += h.Weight
		seen[h.Ticker]++
		if seen[h.Ticker] > 1 {
			r.DuplicateCount++
		}
		if h.Weight > MaxNormalWeight || h.Weight < 0 {
			r.AbnormalCount++
		}
	}
	for t, n := range seen {
		if n > 1 {
			r.DuplicateTickers = append(r.DuplicateTickers, t)
		}
	}
	sort.Strings(r.DuplicateTickers)

	inRange := r.TotalWeight >= MinTotalWeight && r.TotalWeight <= MaxTotalWeight
	if !inRange {
		r.Warnings = append(r.Warnings, Warning{
			Code:    WarnWeightSum,
			Message: fmt.Sprintf("Total weight is %.2f%% (expected ~100%%)", r.TotalWeight),
		})
	}
	if r.DuplicateCount > 0 {
		r.Warnings = append(r.Warnings, Warning{
			Code:    WarnDuplicateTicker,
			Message: fmt.Sprintf("Found %d duplicate tickers", r.DuplicateCount),
		})
	}
	if r.AbnormalCount > 0 {
		r.Warnings = append(r.Warnings, Warning{
			Code:    WarnAbnormalWeight,
			Message: fmt.Sprintf("Found %d holdings with abnormal weights", r.AbnormalCount),
		})
	}
	r.IsValid = inRange && r.DuplicateCount == 0
	return r
}
