package database

import (
	"etf-analysis/internal/config"
	"etf-analysis/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from a Postgres DSN.
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind connection poolers such as PgBouncer.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// OpenSQLite opens a local SQLite store (":memory:" in tests). SQLite serializes
// writers, so the pool is pinned to one connection; this also keeps an
// in-memory database alive for the lifetime of the handle.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Connect picks Postgres when DATABASE_URL is set, else the SQLite file at
// SQLITE_PATH. It returns a nil DB when neither is configured.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	switch {
	case cfg.DatabaseURL != "":
		return Open(cfg.DatabaseURL)
	case cfg.SQLitePath != "":
		log.Info().Str("path", cfg.SQLitePath).Msg("DATABASE_URL not set, using SQLite store")
		return OpenSQLite(cfg.SQLitePath)
	}
	return nil, nil
}

// AutoMigrate creates or updates the etf_holdings, upload_history and stock_details tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Holding{}, &domain.UploadRecord{}, &domain.StockDetail{})
}
