package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env            string
	Port           string
	DatabaseURL    string
	SQLitePath     string // local store used when DATABASE_URL is empty
	RedisURL       string
	UploadUser     string
	UploadPass     string // plain text or a bcrypt hash ($2a$/$2b$...)
	CORSOrigin     string // comma-separated; "*" or empty allows any origin
	HealthAdminKey string
	LogLevel       string

	BatchSize            int     // concurrent holding writes per batch
	StoreWritesPerSecond float64 // 0 disables write throttling
	StockCacheSize       int
	MaxUploadMB          int
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BATCH_SIZE", 50)
	v.SetDefault("STORE_WRITES_PER_SECOND", 0)
	v.SetDefault("STOCK_CACHE_SIZE", 1024)
	v.SetDefault("MAX_UPLOAD_MB", 10)

	cfg := &Config{
		Env:                  v.GetString("APP_ENV"),
		Port:                 v.GetString("PORT"),
		DatabaseURL:          v.GetString("DATABASE_URL"),
		SQLitePath:           v.GetString("SQLITE_PATH"),
		RedisURL:             v.GetString("REDIS_URL"),
		UploadUser:           v.GetString("UPLOAD_USER"),
		UploadPass:           v.GetString("UPLOAD_PASS"),
		CORSOrigin:           v.GetString("CORS_ORIGIN"),
		HealthAdminKey:       v.GetString("HEALTH_ADMIN_KEY"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		BatchSize:            v.GetInt("BATCH_SIZE"),
		StoreWritesPerSecond: v.GetFloat64("STORE_WRITES_PER_SECOND"),
		StockCacheSize:       v.GetInt("STOCK_CACHE_SIZE"),
		MaxUploadMB:          v.GetInt("MAX_UPLOAD_MB"),
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 50
	}
	if cfg.StockCacheSize < 1 {
		cfg.StockCacheSize = 1024
	}
	if cfg.MaxUploadMB < 1 {
		cfg.MaxUploadMB = 10
	}
	return cfg, nil
}

// IsProduction reports APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UploadAuthEnabled reports whether write routes require Basic auth.
func (c *Config) UploadAuthEnabled() bool {
	return c.UploadUser != "" && c.UploadPass != ""
}
