// Package stockdetails serves per-ticker metadata shown next to holdings.
package stockdetails

import (
	"context"
	"errors"
	"fmt"
	"time"

	"etf-analysis/internal/domain"
	"etf-analysis/internal/infrastructure/tables"
	"etf-analysis/internal/metrics"

	"github.com/rs/zerolog/log"
)

var (
	ErrTickerRequired = errors.New("ticker is required")
	ErrStockNotFound  = errors.New("stock details not found")
)

type Service struct {
	Details tables.Store[domain.StockDetail]
	Cache   *Cache
	// Now defaults to time.Now.
	Now func() time.Time
}

// Get returns the details of ticker, consulting the cache first. Misses
// (including unknown tickers) are cached.
func (s *Service) Get(ctx context.Context, ticker string) (*domain.StockDetail, error) {
	key := cacheKey(ticker)
	if key == "" {
		return nil, ErrTickerRequired
	}
	if d, cached := s.Cache.Get(key); cached {
		metrics.StockCacheLookups.WithLabelValues("hit").Inc()
		if d == nil {
			return nil, ErrStockNotFound
		}
		return d, nil
	}
	metrics.StockCacheLookups.WithLabelValues("miss").Inc()

	d, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}
	s.Cache.Add(key, d)
	if d == nil {
		return nil, ErrStockNotFound
	}
	return d, nil
}

// Save replaces the stored details of ticker, or creates them, and refreshes the
// cache. Fields left empty in in are cleared.
func (s *Service) Save(ctx context.Context, ticker string, in domain.StockDetail) (*domain.StockDetail, error) {
	key := cacheKey(ticker)
	if key == "" {
		return nil, ErrTickerRequired
	}
	in.Ticker = key
	in.LastUpdated = s.now().UnixMilli()

	existing, err := s.find(ctx, key)
	if err != nil {
		return nil, err
	}

	var saved *domain.StockDetail
	if existing != nil {
		in.ID = existing.ID
		if err := s.Details.Replace(ctx, existing.ID, &in); err != nil {
			return nil, fmt.Errorf("update stock details: %w", err)
		}
		saved, err = s.Details.Get(ctx, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("reload stock details: %w", err)
		}
	} else {
		if err := s.Details.Create(ctx, &in); err != nil {
			return nil, fmt.Errorf("create stock details: %w", err)
		}
		saved = &in
	}

	s.Cache.Add(key, saved)
	log.Info().Str("ticker", key).Bool("created", existing == nil).Msg("stock details saved")
	return saved, nil
}

func (s *Service) find(ctx context.Context, key string) (*domain.StockDetail, error) {
	page, err := s.Details.List(ctx, tables.ListParams{
		Limit:   1,
		Filters: map[string]interface{}{"ticker": key},
		Sort:    "-last_updated",
	})
	if err != nil {
		return nil, fmt.Errorf("find stock details: %w", err)
	}
	if len(page.Data) == 0 {
		return nil, nil
	}
	d := page.Data[0]
	return &d, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
