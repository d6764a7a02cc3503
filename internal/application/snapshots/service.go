// Package snapshots persists parsed holdings as immutable, dated snapshots and
// keeps the upload audit log.
package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"etf-analysis/internal/domain"
	"etf-analysis/internal/infrastructure/tables"
	"etf-analysis/internal/metrics"
	"etf-analysis/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Service is the snapshot store.
type Service struct {
	Holdings tables.Store[domain.Holding]
	Uploads  tables.Store[domain.UploadRecord]

	BatchSize int
	// Limiter throttles individual holding writes when set.
	Limiter *rate.Limiter
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewService wires the store to the GORM tables.
func NewService(db *gorm.DB, batchSize int, writesPerSecond float64) *Service {
	s := &Service{
		Holdings:  tables.Holdings(db),
		Uploads:   tables.Uploads(db),
		BatchSize: batchSize,
	}
	if writesPerSecond > 0 {
		burst := batchSize
		if burst < 1 {
			burst = DefaultBatchSize
		}
		s.Limiter = rate.NewLimiter(rate.Limit(writesPerSecond), burst)
	}
	return s
}

// SaveResult is the outcome of CreateSnapshot.
type SaveResult struct {
	Success    bool                 `json:"success"`
	SnapshotID string               `json:"snapshot_id"`
	SavedCount int                  `json:"saved_count"`
	Total      int                  `json:"total"`
	Warnings   []validation.Warning `json:"warnings,omitempty"`
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateSnapshot stores holdings under a fresh snapshot id and records exactly
// one upload history entry. Partial failure is tolerated: the result reports
// how many rows were written. ErrNothingSaved is returned when none were.
func (s *Service) CreateSnapshot(ctx context.Context, etfSymbol string, holdings []domain.Holding, fileName string) (*SaveResult, error) {
	etf := validation.NormalizeSymbol(etfSymbol)
	if etf == "" {
		return nil, ErrETFSymbolRequired
	}

	now := s.now()
	rec := &domain.UploadRecord{
		ETFSymbol:     etf,
		UploadDate:    now.UnixMilli(),
		TotalHoldings: len(holdings),
		FileName:      fileName,
	}
	if len(holdings) == 0 {
		s.recordError(ctx, rec, ErrNoHoldings.Error())
		return nil, ErrNoHoldings
	}

	report := validation.ValidateHoldings(holdings)
	for _, w := range report.Warnings {
		metrics.ValidationWarningsTotal.WithLabelValues(string(w.Code)).Inc()
		log.Warn().Str("etf", etf).Str("code", string(w.Code)).Msg(w.Message)
	}
	if len(report.Warnings) > 0 {
		if b, err := json.Marshal(report.Warnings); err == nil {
			rec.Warnings = b
		}
	}

	snapshotID := NewSnapshotID(now)
	rows := make([]domain.Holding, len(holdings))
	for i, h := range holdings {
		h.ID = uuid.Nil
		h.ETFSymbol = etf
		h.SnapshotID = snapshotID
		h.UploadDate = rec.UploadDate
		h.Deleted = false
		rows[i] = h
	}

	start := time.Now()
	saved := s.writeBatches(ctx, rows)
	metrics.SnapshotSaveDuration.Observe(time.Since(start).Seconds())
	rec.SavedCount = saved

	if saved == 0 {
		s.recordError(ctx, rec, ErrNothingSaved.Error())
		return nil, ErrNothingSaved
	}

	rec.SnapshotID = snapshotID
	rec.Status = domain.UploadStatusSuccess
	rec.Notes = fmt.Sprintf("Saved %d holdings", saved)
	if saved < len(rows) {
		rec.Notes = fmt.Sprintf("Saved %d of %d holdings", saved, len(rows))
	}
	s.audit(ctx, rec)

	log.Info().
		Str("etf", etf).
		Str("snapshot_id", snapshotID).
		Int("saved", saved).
		Int("total", len(rows)).
		Msg("snapshot created")

	return &SaveResult{
		Success:    true,
		SnapshotID: snapshotID,
		SavedCount: saved,
		Total:      len(rows),
		Warnings:   report.Warnings,
	}, nil
}

// SaveHoldings is CreateSnapshot under the name the upload API uses.
func (s *Service) SaveHoldings(ctx context.Context, etfSymbol string, holdings []domain.Holding, fileName string) (*SaveResult, error) {
	return s.CreateSnapshot(ctx, etfSymbol, holdings, fileName)
}

// RecordFailure writes the error upload record for an attempt that failed
// before reaching the store (unreadable file, parse error).
func (s *Service) RecordFailure(ctx context.Context, etfSymbol, fileName string, cause error) {
	rec := &domain.UploadRecord{
		ETFSymbol:  validation.NormalizeSymbol(etfSymbol),
		UploadDate: s.now().UnixMilli(),
		FileName:   fileName,
	}
	s.recordError(ctx, rec, cause.Error())
}

func (s *Service) recordError(ctx context.Context, rec *domain.UploadRecord, notes string) {
	rec.Status = domain.UploadStatusError
	rec.SnapshotID = ""
	rec.Notes = notes
	s.audit(ctx, rec)
}

// audit is best effort: a failed history write is logged and swallowed.
func (s *Service) audit(ctx context.Context, rec *domain.UploadRecord) {
	metrics.UploadsTotal.WithLabelValues(rec.Status).Inc()
	if err := s.Uploads.Create(ctx, rec); err != nil {
		log.Error().Err(err).Str("etf", rec.ETFSymbol).Str("status", rec.Status).Msg("upload history write failed")
	}
}

// GetHoldings returns one snapshot, heaviest first. Unknown ids yield an empty list.
func (s *Service) GetHoldings(ctx context.Context, snapshotID string) ([]domain.Holding, error) {
	if snapshotID == "" {
		return []domain.Holding{}, nil
	}
	rows, err := s.Holdings.All(ctx, tables.ListParams{
		Filters: map[string]interface{}{"snapshot_id": snapshotID},
		Sort:    "-weight",
	})
	if err != nil {
		return nil, fmt.Errorf("get holdings: %w", err)
	}
	return nonNil(rows), nil
}

// GetHoldingsByETF returns every snapshot of an ETF, newest first, heaviest first within a snapshot.
func (s *Service) GetHoldingsByETF(ctx context.Context, etfSymbol string) ([]domain.Holding, error) {
	etf := validation.NormalizeSymbol(etfSymbol)
	if etf == "" {
		return nil, ErrETFSymbolRequired
	}
	rows, err := s.Holdings.All(ctx, tables.ListParams{
		Filters: map[string]interface{}{"etf_symbol": etf},
		Sort:    "-upload_date,-weight",
	})
	if err != nil {
		return nil, fmt.Errorf("get holdings by etf: %w", err)
	}
	return nonNil(rows), nil
}

// GetLatestSnapshotID returns the snapshot with the greatest upload date.
func (s *Service) GetLatestSnapshotID(ctx context.Context, etfSymbol string) (string, error) {
	etf := validation.NormalizeSymbol(etfSymbol)
	if etf == "" {
		return "", ErrETFSymbolRequired
	}
	page, err := s.Holdings.List(ctx, tables.ListParams{
		Limit:   1,
		Filters: map[string]interface{}{"etf_symbol": etf},
		Sort:    "-upload_date",
	})
	if err != nil {
		return "", fmt.Errorf("latest snapshot: %w", err)
	}
	if len(page.Data) == 0 {
		return "", ErrSnapshotNotFound
	}
	return page.Data[0].SnapshotID, nil
}

// ListSnapshots summarizes stored snapshots, newest first. An empty symbol lists every ETF.
func (s *Service) ListSnapshots(ctx context.Context, etfSymbol string) ([]domain.SnapshotSummary, error) {
	p := tables.ListParams{Sort: "-upload_date,snapshot_id"}
	if etf := validation.NormalizeSymbol(etfSymbol); etf != "" {
		p.Filters = map[string]interface{}{"etf_symbol": etf}
	}
	rows, err := s.Holdings.All(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	out := domain.SummarizeSnapshots(rows)
	if out == nil {
		out = []domain.SnapshotSummary{}
	}
	return out, nil
}

// UploadHistory returns upload records newest first, optionally for one ETF.
func (s *Service) UploadHistory(ctx context.Context, etfSymbol string) ([]domain.UploadRecord, error) {
	p := tables.ListParams{Sort: "-upload_date"}
	if etf := validation.NormalizeSymbol(etfSymbol); etf != "" {
		p.Filters = map[string]interface{}{"etf_symbol": etf}
	}
	rows, err := s.Uploads.All(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("upload history: %w", err)
	}
	if rows == nil {
		rows = []domain.UploadRecord{}
	}
	return rows, nil
}

// RecentSnapshotIDs returns up to n snapshot ids of successful uploads, newest first.
func (s *Service) RecentSnapshotIDs(ctx context.Context, etfSymbol string, n int) ([]string, error) {
	ids, err := s.snapshotHistory(ctx, etfSymbol)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(ids) > n {
		ids = ids[:n]
	}
	return ids, nil
}

// PreviousSnapshotID returns the successful upload that precedes snapshotID.
// With an empty snapshotID the latest upload is the reference point.
func (s *Service) PreviousSnapshotID(ctx context.Context, etfSymbol, snapshotID string) (current, previous string, err error) {
	ids, err := s.snapshotHistory(ctx, etfSymbol)
	if err != nil {
		return "", "", err
	}
	if len(ids) == 0 {
		return "", "", ErrSnapshotNotFound
	}
	i := 0
	if snapshotID != "" {
		i = indexOf(ids, snapshotID)
		if i < 0 {
			return "", "", ErrSnapshotNotFound
		}
	}
	if i+1 >= len(ids) {
		return ids[i], "", ErrNoPreviousSnapshot
	}
	return ids[i], ids[i+1], nil
}

func (s *Service) snapshotHistory(ctx context.Context, etfSymbol string) ([]string, error) {
	etf := validation.NormalizeSymbol(etfSymbol)
	if etf == "" {
		return nil, ErrETFSymbolRequired
	}
	rows, err := s.Uploads.All(ctx, tables.ListParams{
		Filters: map[string]interface{}{"etf_symbol": etf, "status": domain.UploadStatusSuccess},
		Sort:    "-upload_date",
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot history: %w", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.SnapshotID != "" && indexOf(ids, r.SnapshotID) < 0 {
			ids = append(ids, r.SnapshotID)
		}
	}
	return ids, nil
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func nonNil(rows []domain.Holding) []domain.Holding {
	if rows == nil {
		return []domain.Holding{}
	}
	return rows
}
