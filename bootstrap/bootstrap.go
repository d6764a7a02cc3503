// Package bootstrap exposes app construction outside internal/ for the serverless entry point.
package bootstrap

import (
	"etf-analysis/internal/config"
	"etf-analysis/internal/interfaces/router"
	"etf-analysis/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// New loads config and builds the Fiber app.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg)
	app, _, _, err := router.CreateApp(cfg)
	return app, err
}
