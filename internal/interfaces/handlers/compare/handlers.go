package compare

import (
	"errors"
	"fmt"

	comparesvc "etf-analysis/internal/application/compare"
	"etf-analysis/internal/application/snapshots"
	"etf-analysis/internal/metrics"
	"etf-analysis/internal/pkg/response"
	"etf-analysis/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *comparesvc.Service
}

func pairFromQuery(c *fiber.Ctx) (base, target string, err error) {
	base, target = c.Query("base"), c.Query("target")
	if base == "" || target == "" {
		return "", "", errors.New("base and target are required")
	}
	if !validation.IsValidSnapshotID(base) || !validation.IsValidSnapshotID(target) {
		return "", "", errors.New("Invalid snapshot id")
	}
	return base, target, nil
}

// compare runs the pair diff. On failure it returns the status and the message to send.
func (h *Handlers) compare(c *fiber.Ctx) (*comparesvc.Result, int, error) {
	base, target, err := pairFromQuery(c)
	if err != nil {
		return nil, fiber.StatusBadRequest, err
	}
	res, err := h.Service.CompareSnapshots(c.UserContext(), base, target)
	if errors.Is(err, comparesvc.ErrSameSnapshot) {
		return nil, fiber.StatusBadRequest, err
	}
	if err != nil {
		log.Error().Err(err).Str("base", base).Str("target", target).Msg("compare: failed")
		return nil, fiber.StatusInternalServerError, errors.New("Failed to compare snapshots")
	}
	return res, fiber.StatusOK, nil
}

// Pair GET /api/v1/compare?base=&target=
func (h *Handlers) Pair(c *fiber.Ctx) error {
	res, status, err := h.compare(c)
	if err != nil {
		return response.Error(c, err.Error(), status, nil)
	}
	return response.Success(c, "Comparison completed", res, nil)
}

// Previous GET /api/v1/compare/previous?etf_symbol=&snapshot_id=
func (h *Handlers) Previous(c *fiber.Ctx) error {
	etf, id := c.Query("etf_symbol"), c.Query("snapshot_id")
	if id != "" && !validation.IsValidSnapshotID(id) {
		return response.BadRequest(c, "Invalid snapshot id")
	}
	res, err := h.Service.CompareWithPrevious(c.UserContext(), etf, id)
	switch {
	case errors.Is(err, snapshots.ErrETFSymbolRequired):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, snapshots.ErrSnapshotNotFound), errors.Is(err, snapshots.ErrNoPreviousSnapshot):
		return response.NotFound(c, err.Error())
	case err != nil:
		log.Error().Err(err).Str("etf", etf).Str("snapshot_id", id).Msg("compare: previous failed")
		return response.Error(c, "Failed to compare snapshots", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Comparison completed", res, nil)
}

// Export GET /api/v1/compare/export?base=&target= streams the diff as CSV.
func (h *Handlers) Export(c *fiber.Ctx) error {
	res, status, err := h.compare(c)
	if err != nil {
		return response.Error(c, err.Error(), status, nil)
	}
	metrics.ComparesTotal.WithLabelValues("export").Inc()
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="compare_%s_%s.csv"`, c.Query("base"), c.Query("target")))
	if err := res.WriteCSV(c.Response().BodyWriter()); err != nil {
		log.Error().Err(err).Msg("compare: csv export failed")
		return response.Error(c, "Failed to export comparison", fiber.StatusInternalServerError, nil)
	}
	return nil
}
