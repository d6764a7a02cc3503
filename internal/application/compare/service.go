package compare

import (
	"context"
	"errors"
	"fmt"

	"etf-analysis/internal/domain"
	"etf-analysis/internal/metrics"
)

var ErrSameSnapshot = errors.New("base and target snapshot must differ")

// SnapshotReader is the part of the snapshot store the compare service reads.
type SnapshotReader interface {
	GetHoldings(ctx context.Context, snapshotID string) ([]domain.Holding, error)
	PreviousSnapshotID(ctx context.Context, etfSymbol, snapshotID string) (current, previous string, err error)
}

type Service struct {
	Snapshots SnapshotReader
}

// CompareSnapshots diffs two stored snapshots. Unknown ids compare as empty
// snapshots; identical ids are rejected.
func (s *Service) CompareSnapshots(ctx context.Context, baseID, targetID string) (*Result, error) {
	if baseID != "" && baseID == targetID {
		return nil, ErrSameSnapshot
	}
	base, err := s.Snapshots.GetHoldings(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("load base snapshot: %w", err)
	}
	target, err := s.Snapshots.GetHoldings(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("load target snapshot: %w", err)
	}
	metrics.ComparesTotal.WithLabelValues("pair").Inc()
	res := Diff(base, target)
	return &res, nil
}

// PreviousComparison is a diff of one upload against the upload before it.
type PreviousComparison struct {
	ETFSymbol        string `json:"etf_symbol"`
	BaseSnapshotID   string `json:"base_snapshot_id"`
	TargetSnapshotID string `json:"target_snapshot_id"`
	*Result
}

// CompareWithPrevious diffs snapshotID (latest upload when empty) against the
// preceding successful upload of the same ETF.
func (s *Service) CompareWithPrevious(ctx context.Context, etfSymbol, snapshotID string) (*PreviousComparison, error) {
	current, previous, err := s.Snapshots.PreviousSnapshotID(ctx, etfSymbol, snapshotID)
	if err != nil {
		return nil, err
	}
	res, err := s.CompareSnapshots(ctx, previous, current)
	if err != nil {
		return nil, err
	}
	metrics.ComparesTotal.WithLabelValues("previous").Inc()
	return &PreviousComparison{
		ETFSymbol:        etfSymbol,
		BaseSnapshotID:   previous,
		TargetSnapshotID: current,
		Result:           res,
	}, nil
}
