package snapshots

import (
	"errors"

	snapshotsvc "etf-analysis/internal/application/snapshots"
	"etf-analysis/internal/pkg/response"
	"etf-analysis/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *snapshotsvc.Service
}

// List GET /api/v1/snapshots?etf_symbol=
func (h *Handlers) List(c *fiber.Ctx) error {
	etf := c.Query("etf_symbol")
	list, err := h.Service.ListSnapshots(c.UserContext(), etf)
	if err != nil {
		log.Error().Err(err).Str("etf", etf).Msg("snapshots: list failed")
		return response.Error(c, "Failed to list snapshots", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Snapshots fetched successfully", list, fiber.Map{"count": len(list)})
}

// Latest GET /api/v1/snapshots/latest?etf_symbol=
func (h *Handlers) Latest(c *fiber.Ctx) error {
	etf := c.Query("etf_symbol")
	id, err := h.Service.GetLatestSnapshotID(c.UserContext(), etf)
	switch {
	case errors.Is(err, snapshotsvc.ErrETFSymbolRequired):
		return response.BadRequest(c, err.Error())
	case errors.Is(err, snapshotsvc.ErrSnapshotNotFound):
		return response.NotFound(c, err.Error())
	case err != nil:
		log.Error().Err(err).Str("etf", etf).Msg("snapshots: latest lookup failed")
		return response.Error(c, "Failed to fetch latest snapshot", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Latest snapshot fetched successfully", fiber.Map{
		"etf_symbol":  validation.NormalizeSymbol(etf),
		"snapshot_id": id,
	}, nil)
}

// Holdings GET /api/v1/snapshots/:id/holdings
func (h *Handlers) Holdings(c *fiber.Ctx) error {
	id := c.Params("id")
	if !validation.IsValidSnapshotID(id) {
		return response.BadRequest(c, "Invalid snapshot id")
	}
	rows, err := h.Service.GetHoldings(c.UserContext(), id)
	if err != nil {
		log.Error().Err(err).Str("snapshot_id", id).Msg("snapshots: holdings lookup failed")
		return response.Error(c, "Failed to fetch holdings", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Holdings fetched successfully", rows, fiber.Map{"count": len(rows)})
}

// History GET /api/v1/uploads/history?etf_symbol=
func (h *Handlers) History(c *fiber.Ctx) error {
	etf := c.Query("etf_symbol")
	rows, err := h.Service.UploadHistory(c.UserContext(), etf)
	if err != nil {
		log.Error().Err(err).Str("etf", etf).Msg("uploads: history failed")
		return response.Error(c, "Failed to fetch upload history", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Upload history fetched successfully", rows, fiber.Map{"count": len(rows)})
}
