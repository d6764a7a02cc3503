package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockDetail is auxiliary per-ticker metadata shown next to holdings (stock_details table).
type StockDetail struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Ticker        string    `gorm:"column:ticker;type:varchar(32);not null;index" json:"ticker"`
	CompanyName   string    `gorm:"column:company_name" json:"company_name"`
	Sector        string    `gorm:"column:sector" json:"sector"`
	Industry      string    `gorm:"column:industry" json:"industry"`
	MarketCap     string    `gorm:"column:market_cap" json:"market_cap"`
	PERatio       string    `gorm:"column:pe_ratio" json:"pe_ratio"`
	DividendYield string    `gorm:"column:dividend_yield" json:"dividend_yield"`
	Description   string    `gorm:"column:description" json:"description"`
	LastUpdated   int64     `gorm:"column:last_updated" json:"last_updated"`
	CreatedAt     int64     `gorm:"column:created_at;autoCreateTime:milli" json:"created_at"`
	UpdatedAt     int64     `gorm:"column:updated_at;autoUpdateTime:milli" json:"updated_at"`
	Deleted       bool      `gorm:"column:deleted;not null;default:false" json:"-"`
}

func (StockDetail) TableName() string {
	return "stock_details"
}

func (s *StockDetail) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
