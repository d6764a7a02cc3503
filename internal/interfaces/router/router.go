package router

import (
	"fmt"
	"net/http"

	comparesvc "etf-analysis/internal/application/compare"
	holdsvc "etf-analysis/internal/application/holdings"
	snapsvc "etf-analysis/internal/application/snapshots"
	"etf-analysis/internal/application/stockdetails"
	"etf-analysis/internal/config"
	"etf-analysis/internal/infrastructure/database"
	"etf-analysis/internal/infrastructure/tables"
	comparehandler "etf-analysis/internal/interfaces/handlers/compare"
	healthhandler "etf-analysis/internal/interfaces/handlers/health"
	holdhandler "etf-analysis/internal/interfaces/handlers/holdings"
	snaphandler "etf-analysis/internal/interfaces/handlers/snapshots"
	stockhandler "etf-analysis/internal/interfaces/handlers/stocks"
	"etf-analysis/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with every route registered. Without
// DATABASE_URL or SQLITE_PATH the store is an in-memory SQLite database;
// without REDIS_URL request stats are not recorded.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if db == nil {
		log.Warn().Msg("no DATABASE_URL or SQLITE_PATH, holdings are kept in memory")
		if db, err = database.OpenSQLite(":memory:"); err != nil {
			return nil, nil, nil, fmt.Errorf("open in-memory store: %w", err)
		}
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opt)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
		BodyLimit:               cfg.MaxUploadMB * 1024 * 1024,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(cfg.CORSOrigin))
	app.Use(middleware.Metrics())
	app.Use(middleware.HealthMarker(rdb))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	snapshots := snapsvc.NewService(db, cfg.BatchSize, cfg.StoreWritesPerSecond)
	cache, err := stockdetails.NewCache(cfg.StockCacheSize)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("stock cache: %w", err)
	}

	if !cfg.UploadAuthEnabled() && (cfg.UploadUser != "" || cfg.UploadPass != "") {
		log.Warn().Msg("UPLOAD_USER and UPLOAD_PASS must be set together, write routes will reject every request")
	}
	api := app.Group("/api/v1", middleware.UploadAuth(middleware.UploadAuthConfig{
		User: cfg.UploadUser,
		Pass: cfg.UploadPass,
	}))

	// Holdings
	holdh := &holdhandler.Handlers{
		Snapshots: snapshots,
		Holdings:  &holdsvc.Service{Holdings: snapshots.Holdings},
	}
	api.Post("/holdings/parse", holdh.Parse)
	api.Post("/holdings/upload", holdh.Upload)
	api.Get("/holdings", holdh.Dashboard)

	// Snapshots and upload history
	sh := &snaphandler.Handlers{Service: snapshots}
	api.Get("/snapshots", sh.List)
	api.Get("/snapshots/latest", sh.Latest)
	api.Get("/snapshots/:id/holdings", sh.Holdings)
	api.Get("/uploads/history", sh.History)

	// Compare
	ch := &comparehandler.Handlers{Service: &comparesvc.Service{Snapshots: snapshots}}
	api.Get("/compare", ch.Pair)
	api.Get("/compare/previous", ch.Previous)
	api.Get("/compare/export", ch.Export)

	// Stock details
	stk := &stockhandler.Handlers{Service: &stockdetails.Service{
		Details: tables.StockDetails(db),
		Cache:   cache,
	}}
	api.Get("/stocks/:ticker", stk.Get)
	api.Put("/stocks/:ticker", stk.Save)

	return app, db, rdb, nil
}

// Handler adapts the app for net/http callers (serverless entry point).
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
