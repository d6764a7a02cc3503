package holdings

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	holdingsvc "etf-analysis/internal/application/holdings"
	"etf-analysis/internal/application/holdingscsv"
	"etf-analysis/internal/application/snapshots"
	"etf-analysis/internal/domain"
	"etf-analysis/internal/metrics"
	"etf-analysis/internal/pkg/response"
	"etf-analysis/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the holdings endpoints with their services.
type Handlers struct {
	Snapshots *snapshots.Service
	Holdings  *holdingsvc.Service
}

type parseResponse struct {
	Holdings   []domain.Holding          `json:"holdings"`
	Stats      *holdingscsv.Stats        `json:"stats"`
	Validation validation.HoldingsReport `json:"validation"`
	HeaderRow  int                       `json:"header_row"`
	Headers    []string                  `json:"headers"`
	Skipped    int                       `json:"skipped"`
}

// Parse POST /api/v1/holdings/parse
// Accepts a multipart "file" or the raw CSV as the request body. Nothing is stored.
func (h *Handlers) Parse(c *fiber.Ctx) error {
	text, _, err := readCSV(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	res, err := holdingscsv.ParseDetailed(text)
	if err != nil {
		return parseFailed(c, err)
	}
	return response.Success(c, fmt.Sprintf("Parsed %d holdings", len(res.Holdings)), parseResponse{
		Holdings:   res.Holdings,
		Stats:      holdingscsv.GetStats(res.Holdings),
		Validation: validation.ValidateHoldings(res.Holdings),
		HeaderRow:  res.HeaderRow,
		Headers:    res.Headers,
		Skipped:    res.Skipped,
	}, nil)
}

// Upload POST /api/v1/holdings/upload
// Multipart "file" plus form field "etf_symbol". Parses and stores a new snapshot.
func (h *Handlers) Upload(c *fiber.Ctx) error {
	etf := validation.NormalizeSymbol(c.FormValue("etf_symbol"))
	if etf == "" {
		return response.BadRequest(c, snapshots.ErrETFSymbolRequired.Error())
	}
	if !validation.IsValidSymbol(etf) {
		return response.BadRequest(c, "Invalid etf_symbol")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	raw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}

	parsed, err := holdingscsv.Parse(string(raw))
	if err != nil {
		h.Snapshots.RecordFailure(c.UserContext(), etf, fh.Filename, err)
		return parseFailed(c, err)
	}

	res, err := h.Snapshots.SaveHoldings(c.UserContext(), etf, parsed, fh.Filename)
	if err != nil {
		log.Error().Err(err).Str("etf", etf).Str("file", fh.Filename).Msg("upload: save failed")
		if errors.Is(err, snapshots.ErrNothingSaved) {
			return response.Error(c, err.Error(), fiber.StatusInternalServerError, nil)
		}
		return response.Error(c, "Failed to save holdings", fiber.StatusInternalServerError, nil)
	}

	msg := fmt.Sprintf("Saved %d holdings", res.SavedCount)
	if res.SavedCount < res.Total {
		msg = fmt.Sprintf("Saved %d of %d holdings", res.SavedCount, res.Total)
	}
	return response.SuccessCreated(c, msg, res, nil)
}

// Dashboard GET /api/v1/holdings
func (h *Handlers) Dashboard(c *fiber.Ctx) error {
	q, err := queryFromRequest(c)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}
	if err := q.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}
	d, err := h.Holdings.Dashboard(c.UserContext(), q)
	if err != nil {
		log.Error().Err(err).Msg("holdings: dashboard query failed")
		return response.Error(c, "Failed to load holdings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holdings fetched successfully", d, fiber.Map{"count": len(d.Holdings)})
}

func queryFromRequest(c *fiber.Ctx) (holdingsvc.Query, error) {
	q := holdingsvc.Query{
		ETFSymbol:       c.Query("etf_symbol"),
		SnapshotID:      c.Query("snapshot_id"),
		Ticker:          c.Query("ticker"),
		Company:         c.Query("company"),
		Sector:          c.Query("sector"),
		WeightCondition: strings.ToLower(c.Query("weight_condition")),
	}
	if q.SnapshotID != "" && !validation.IsValidSnapshotID(q.SnapshotID) {
		return q, errors.New("Invalid snapshot_id")
	}

	var err error
	if v := c.Query("max_weight"); v != "" {
		if q.MaxWeight, err = strconv.ParseFloat(v, 64); err != nil {
			return q, errors.New("max_weight must be a number")
		}
	}
	if q.WeightValue1, err = optionalFloat(c, "weight_value1"); err != nil {
		return q, err
	}
	if q.WeightValue2, err = optionalFloat(c, "weight_value2"); err != nil {
		return q, err
	}

	sortBy := c.Query("sort")
	if strings.HasPrefix(sortBy, "-") {
		q.SortDesc = true
		sortBy = sortBy[1:]
	}
	if strings.EqualFold(c.Query("order"), "desc") {
		q.SortDesc = true
	}
	q.SortColumn = sortBy
	return q, nil
}

func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", key)
	}
	return &f, nil
}

// readCSV returns the uploaded CSV text from a multipart "file" or the raw body.
func readCSV(c *fiber.Ctx) (text, fileName string, err error) {
	if fh, ferr := c.FormFile("file"); ferr == nil {
		f, err := fh.Open()
		if err != nil {
			return "", "", errors.New("Failed to read uploaded file")
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			return "", "", errors.New("Failed to read uploaded file")
		}
		return string(raw), fh.Filename, nil
	}
	body := c.Body()
	if len(body) == 0 {
		return "", "", errors.New("file is required")
	}
	return string(body), "", nil
}

// parseFailed maps a parser error to 400 with its message.
func parseFailed(c *fiber.Ctx, err error) error {
	metrics.ParseFailuresTotal.WithLabelValues(parseFailureReason(err)).Inc()
	log.Warn().Err(err).Msg("holdings: csv rejected")
	return response.BadRequest(c, err.Error())
}

func parseFailureReason(err error) string {
	switch {
	case errors.Is(err, holdingscsv.ErrEmptyFile):
		return "empty_file"
	case errors.Is(err, holdingscsv.ErrHeaderNotFound):
		return "header_not_found"
	case errors.Is(err, holdingscsv.ErrMissingColumns):
		return "missing_columns"
	case errors.Is(err, holdingscsv.ErrNoValidData):
		return "no_valid_data"
	}
	return "other"
}
