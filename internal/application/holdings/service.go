// Package holdings answers dashboard queries over stored holdings.
package holdings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"etf-analysis/internal/application/holdingscsv"
	"etf-analysis/internal/domain"
	"etf-analysis/internal/infrastructure/tables"
	"etf-analysis/internal/pkg/validation"
)

// Weight conditions accepted by Query.WeightCondition.
const (
	WeightAll     = "all"
	WeightGTE     = "gte"
	WeightLTE     = "lte"
	WeightBetween = "between"
	WeightOutside = "outside"
)

var (
	ErrInvalidWeightCondition = errors.New("weight_condition must be one of all, gte, lte, between, outside")
	ErrInvalidSortColumn      = errors.New("unsupported sort column")
)

var sortColumns = map[string]bool{
	"ticker": true, "company_name": true, "sector": true,
	"weight": true, "shares": true, "market_value": true,
}

// Query selects holdings for the dashboard.
type Query struct {
	ETFSymbol  string
	SnapshotID string
	// MaxWeight keeps holdings at or below this weight; 0 keeps all.
	MaxWeight float64

	Ticker  string // substring, case-insensitive
	Company string // substring, case-insensitive
	Sector  string // substring, case-insensitive

	WeightCondition string
	WeightValue1    *float64
	WeightValue2    *float64

	SortColumn string
	SortDesc   bool
}

// Validate checks the enumerated fields.
func (q Query) Validate() error {
	switch q.WeightCondition {
	case "", WeightAll, WeightGTE, WeightLTE, WeightBetween, WeightOutside:
	default:
		return ErrInvalidWeightCondition
	}
	if q.SortColumn != "" && !sortColumns[q.SortColumn] {
		return fmt.Errorf("%w: %s", ErrInvalidSortColumn, q.SortColumn)
	}
	return nil
}

// Dashboard is the filtered holding list plus its stats (nil when empty).
type Dashboard struct {
	Holdings []domain.Holding   `json:"holdings"`
	Stats    *holdingscsv.Stats `json:"stats"`
}

type Service struct {
	Holdings tables.Store[domain.Holding]
}

// LowWeightHoldings returns holdings at or below maxWeight (0 = all), lightest
// first. Without a snapshot id only the latest snapshot of each ETF is kept.
func (s *Service) LowWeightHoldings(ctx context.Context, maxWeight float64, etfSymbol, snapshotID string) ([]domain.Holding, error) {
	filters := map[string]interface{}{}
	if etf := validation.NormalizeSymbol(etfSymbol); etf != "" {
		filters["etf_symbol"] = etf
	}
	if snapshotID != "" {
		filters["snapshot_id"] = snapshotID
	}
	all, err := s.Holdings.All(ctx, tables.ListParams{Filters: filters, Sort: "-upload_date"})
	if err != nil {
		return nil, fmt.Errorf("load holdings: %w", err)
	}

	// The current snapshot is chosen before the cap so an ETF whose newest
	// snapshot has nothing under it does not fall back to an older one.
	var latest map[string]bool
	if snapshotID == "" {
		latest = LatestSnapshotIDs(all)
	}
	out := make([]domain.Holding, 0, len(all))
	for _, h := range all {
		if latest != nil && !latest[h.SnapshotID] {
			continue
		}
		if maxWeight == 0 || h.Weight <= maxWeight {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Weight < out[j].Weight })
	return out, nil
}

// Dashboard runs LowWeightHoldings then the column filters and sort.
func (s *Service) Dashboard(ctx context.Context, q Query) (*Dashboard, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	base, err := s.LowWeightHoldings(ctx, q.MaxWeight, q.ETFSymbol, q.SnapshotID)
	if err != nil {
		return nil, err
	}
	rows := FilterHoldings(base, q)
	if q.SortColumn != "" {
		SortHoldings(rows, q.SortColumn, q.SortDesc)
	}
	return &Dashboard{Holdings: rows, Stats: holdingscsv.GetStats(rows)}, nil
}

// LatestSnapshotIDs returns, per ETF, the snapshot id with the greatest upload date.
func LatestSnapshotIDs(hs []domain.Holding) map[string]bool {
	type pick struct {
		id   string
		date int64
	}
	byETF := map[string]pick{}
	for _, h := range hs {
		p, ok := byETF[h.ETFSymbol]
		if !ok || h.UploadDate > p.date {
			byETF[h.ETFSymbol] = pick{id: h.SnapshotID, date: h.UploadDate}
		}
	}
	out := make(map[string]bool, len(byETF))
	for _, p := range byETF {
		out[p.id] = true
	}
	return out
}

// FilterHoldings applies the ticker, company, sector and weight filters of q.
func FilterHoldings(hs []domain.Holding, q Query) []domain.Holding {
	ticker := strings.ToUpper(strings.TrimSpace(q.Ticker))
	company := strings.ToLower(strings.TrimSpace(q.Company))
	sector := strings.ToLower(strings.TrimSpace(q.Sector))

	out := make([]domain.Holding, 0, len(hs))
	for _, h := range hs {
		if ticker != "" && !strings.Contains(strings.ToUpper(h.Ticker), ticker) {
			continue
		}
		if company != "" && !strings.Contains(strings.ToLower(h.CompanyName), company) {
			continue
		}
		if sector != "" && (h.Sector == nil || !strings.Contains(strings.ToLower(*h.Sector), sector)) {
			continue
		}
		if !matchWeight(h.Weight, q) {
			continue
		}
		out = append(out, h)
	}
	return out
}

func matchWeight(w float64, q Query) bool {
	if q.WeightValue1 == nil {
		return true
	}
	v1 := *q.WeightValue1
	switch q.WeightCondition {
	case WeightGTE:
		return w >= v1
	case WeightLTE:
		return w <= v1
	case WeightBetween:
		if q.WeightValue2 == nil {
			return w >= v1
		}
		lo, hi := math.Min(v1, *q.WeightValue2), math.Max(v1, *q.WeightValue2)
		return w >= lo && w <= hi
	case WeightOutside:
		if q.WeightValue2 == nil {
			return true
		}
		lo, hi := math.Min(v1, *q.WeightValue2), math.Max(v1, *q.WeightValue2)
		return w < lo || w > hi
	}
	return true
}

// SortHoldings sorts in place. Numeric columns compare as numbers (missing = 0),
// text columns case-insensitively.
func SortHoldings(hs []domain.Holding, column string, desc bool) {
	less := func(a, b domain.Holding) bool {
		switch column {
		case "weight":
			return a.Weight < b.Weight
		case "shares":
			return deref(a.Shares) < deref(b.Shares)
		case "market_value":
			return deref(a.MarketValue) < deref(b.MarketValue)
		}
		return textOf(a, column) < textOf(b, column)
	}
	sort.SliceStable(hs, func(i, j int) bool {
		if desc {
			return less(hs[j], hs[i])
		}
		return less(hs[i], hs[j])
	})
}

func textOf(h domain.Holding, column string) string {
	switch column {
	case "ticker":
		return strings.ToLower(h.Ticker)
	case "company_name":
		return strings.ToLower(h.CompanyName)
	case "sector":
		if h.Sector != nil {
			return strings.ToLower(*h.Sector)
		}
	}
	return ""
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
