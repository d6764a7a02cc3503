// Package compare computes set and weight differences between two holdings snapshots.
package compare

import (
	"math"
	"sort"

	"etf-analysis/internal/domain"
)

// WeightEpsilon is the smallest weight move (in percentage points) reported as a change.
const WeightEpsilon = 0.0001

// WeightChange is one ticker present in both snapshots whose weight moved.
type WeightChange struct {
	Ticker        string  `json:"ticker"`
	CompanyName   string  `json:"company_name"`
	BaseETF       string  `json:"base_etf"`
	BaseWeight    float64 `json:"base_weight"`
	TargetETF     string  `json:"target_etf"`
	TargetWeight  float64 `json:"target_weight"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}

type Summary struct {
	BaseCount    int `json:"base_count"`
	TargetCount  int `json:"target_count"`
	NewCount     int `json:"new_count"`
	RemovedCount int `json:"removed_count"`
	ChangedCount int `json:"changed_count"`
}

// Result is the structured diff of base against target.
type Result struct {
	Base    []domain.Holding `json:"base_data"`
	Target  []domain.Holding `json:"target_data"`
	Added   []domain.Holding `json:"new_holdings"`
	Removed []domain.Holding `json:"removed_holdings"`
	Changed []WeightChange   `json:"weight_changes"`
	Summary Summary          `json:"summary"`
}

// Diff compares two holding lists by ticker. Added keeps target order, Removed
// keeps base order, Changed is ordered by absolute change, largest first.
// When a ticker repeats within one side, its last occurrence is the one looked up.
func Diff(base, target []domain.Holding) Result {
	baseByTicker := indexByTicker(base)
	targetByTicker := indexByTicker(target)

	res := Result{
		Base:    nonNil(base),
		Target:  nonNil(target),
		Added:   []domain.Holding{},
		Removed: []domain.Holding{},
		Changed: []WeightChange{},
	}
	for _, h := range target {
		if _, ok := baseByTicker[h.Ticker]; !ok {
			res.Added = append(res.Added, h)
		}
	}
	for _, h := range base {
		if _, ok := targetByTicker[h.Ticker]; !ok {
			res.Removed = append(res.Removed, h)
		}
	}
	for _, t := range target {
		b, ok := baseByTicker[t.Ticker]
		if !ok {
			continue
		}
		delta := t.Weight - b.Weight
		if math.Abs(delta) <= WeightEpsilon {
			continue
		}
		pct := 0.0
		if b.Weight > 0 {
			pct = delta / b.Weight * 100
		}
		res.Changed = append(res.Changed, WeightChange{
			Ticker:        t.Ticker,
			CompanyName:   t.CompanyName,
			BaseETF:       b.ETFSymbol,
			BaseWeight:    b.Weight,
			TargetETF:     t.ETFSymbol,
			TargetWeight:  t.Weight,
			Change:        delta,
			ChangePercent: pct,
		})
	}
	sort.SliceStable(res.Changed, func(i, j int) bool {
		return math.Abs(res.Changed[i].Change) > math.Abs(res.Changed[j].Change)
	})

	res.Summary = Summary{
		BaseCount:    len(base),
		TargetCount:  len(target),
		NewCount:     len(res.Added),
		RemovedCount: len(res.Removed),
		ChangedCount: len(res.Changed),
	}
	return res
}

func indexByTicker(hs []domain.Holding) map[string]domain.Holding {
	m := make(map[string]domain.Holding, len(hs))
	for _, h := range hs {
		m[h.Ticker] = h
	}
	return m
}

func nonNil(hs []domain.Holding) []domain.Holding {
	if hs == nil {
		return []domain.Holding{}
	}
	return hs
}
