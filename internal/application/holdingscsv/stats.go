package holdingscsv

import (
	"etf-analysis/internal/domain"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// LowWeightThreshold is the weight (in percent) at or below which a holding counts as low weight.
const LowWeightThreshold = 2.0

// Stats summarizes a holding list. Weights are pre-formatted at fixed precision.
type Stats struct {
	TotalHoldings  int    `json:"totalHoldings"`
	TotalWeight    string `json:"totalWeight"`
	AvgWeight      string `json:"avgWeight"`
	MaxWeight      string `json:"maxWeight"`
	MinWeight      string `json:"minWeight"`
	LowWeightCount int    `json:"lowWeightCount"`
}

// GetStats returns nil for an empty list.
func GetStats(holdings []domain.Holding) *Stats {
	if len(holdings) == 0 {
		return nil
	}
	weights := make(stats.Float64Data, len(holdings))
	low := 0
	for i, h := range holdings {
		weights[i] = h.Weight
		if h.Weight <= LowWeightThreshold {
			low++
		}
	}
	// non-empty input: the stats functions cannot fail.
	total, _ := stats.Sum(weights)
	mean, _ := stats.Mean(weights)
	max, _ := stats.Max(weights)
	min, _ := stats.Min(weights)

	return &Stats{
		TotalHoldings:  len(holdings),
		TotalWeight:    fixed(total, 2),
		AvgWeight:      fixed(mean, 4),
		MaxWeight:      fixed(max, 2),
		MinWeight:      fixed(min, 4),
		LowWeightCount: low,
	}
}

func fixed(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}
