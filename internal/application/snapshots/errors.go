package snapshots

import "errors"

var (
	ErrETFSymbolRequired  = errors.New("etf_symbol is required")
	ErrNoHoldings         = errors.New("no holdings to save")
	ErrNothingSaved       = errors.New("failed to save any holdings")
	ErrSnapshotNotFound   = errors.New("no snapshot found for ETF")
	ErrNoPreviousSnapshot = errors.New("no previous snapshot to compare with")
)
