package stocks

import (
	"errors"

	"etf-analysis/internal/application/stockdetails"
	"etf-analysis/internal/domain"
	"etf-analysis/internal/pkg/response"
	"etf-analysis/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *stockdetails.Service
}

type saveRequest struct {
	CompanyName   string `json:"company_name"`
	Sector        string `json:"sector"`
	Industry      string `json:"industry"`
	MarketCap     string `json:"market_cap"`
	PERatio       string `json:"pe_ratio"`
	DividendYield string `json:"dividend_yield"`
	Description   string `json:"description"`
}

func tickerParam(c *fiber.Ctx) (string, bool) {
	t := validation.NormalizeSymbol(c.Params("ticker"))
	return t, validation.IsValidSymbol(t)
}

// Get GET /api/v1/stocks/:ticker
func (h *Handlers) Get(c *fiber.Ctx) error {
	ticker, ok := tickerParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid ticker")
	}
	d, err := h.Service.Get(c.UserContext(), ticker)
	switch {
	case errors.Is(err, stockdetails.ErrStockNotFound):
		return response.NotFound(c, err.Error())
	case err != nil:
		log.Error().Err(err).Str("ticker", ticker).Msg("stocks: lookup failed")
		return response.Error(c, "Failed to fetch stock details", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stock details fetched successfully", d, nil)
}

// Save PUT /api/v1/stocks/:ticker
func (h *Handlers) Save(c *fiber.Ctx) error {
	ticker, ok := tickerParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid ticker")
	}
	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	d, err := h.Service.Save(c.UserContext(), ticker, domain.StockDetail{
		CompanyName:   req.CompanyName,
		Sector:        req.Sector,
		Industry:      req.Industry,
		MarketCap:     req.MarketCap,
		PERatio:       req.PERatio,
		DividendYield: req.DividendYield,
		Description:   req.Description,
	})
	if err != nil {
		log.Error().Err(err).Str("ticker", ticker).Msg("stocks: save failed")
		return response.Error(c, "Failed to save stock details", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Stock details saved successfully", d, nil)
}
