package snapshots

import (
	"context"
	"sync/atomic"

	"etf-analysis/internal/domain"
	"etf-analysis/internal/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of concurrent holding writes per batch.
const DefaultBatchSize = 50

// writeBatches persists rows in batches of BatchSize concurrent writes. A batch
// is fully awaited before the next one starts. Individual failures are logged
// and counted, never returned; the result is the number of rows written.
func (s *Service) writeBatches(ctx context.Context, rows []domain.Holding) int {
	size := s.BatchSize
	if size < 1 {
		size = DefaultBatchSize
	}

	var saved atomic.Int64
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))

		// plain Group: one failed write must not cancel its siblings
		var g errgroup.Group
		g.SetLimit(size)
		for i := start; i < end; i++ {
			h := &rows[i]
			g.Go(func() error {
				if s.Limiter != nil {
					if err := s.Limiter.Wait(ctx); err != nil {
						metrics.HoldingWriteFailuresTotal.Inc()
						log.Warn().Err(err).Str("ticker", h.Ticker).Msg("holding write not attempted")
						return nil
					}
				}
				if err := s.Holdings.Create(ctx, h); err != nil {
					metrics.HoldingWriteFailuresTotal.Inc()
					log.Warn().Err(err).Str("snapshot_id", h.SnapshotID).Str("ticker", h.Ticker).Msg("holding write failed")
					return nil
				}
				saved.Add(1)
				return nil
			})
		}
		_ = g.Wait()
	}

	n := int(saved.Load())
	metrics.HoldingsWrittenTotal.Add(float64(n))
	return n
}
