package domain

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holding is one constituent of one ETF snapshot (etf_holdings table).
// Rows are written once per snapshot and never updated in place.
type Holding struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ETFSymbol   string    `gorm:"column:etf_symbol;type:varchar(16);not null;index" json:"etf_symbol"`
	SnapshotID  string    `gorm:"column:snapshot_id;type:varchar(64);not null;index" json:"snapshot_id"`
	UploadDate  int64     `gorm:"column:upload_date;not null;index" json:"upload_date"`
	Ticker      string    `gorm:"column:ticker;type:varchar(32);not null" json:"ticker"`
	CompanyName string    `gorm:"column:company_name" json:"company_name"`
	Weight      float64   `gorm:"column:weight;not null" json:"weight"`
	Shares      *float64  `gorm:"column:shares" json:"shares"`
	MarketValue *float64  `gorm:"column:market_value" json:"market_value"`
	Sector      *string   `gorm:"column:sector" json:"sector"`
	CreatedAt   int64     `gorm:"column:created_at;autoCreateTime:milli" json:"created_at"`
	UpdatedAt   int64     `gorm:"column:updated_at;autoUpdateTime:milli" json:"updated_at"`
	Deleted     bool      `gorm:"column:deleted;not null;default:false" json:"-"`
}

func (Holding) TableName() string {
	return "etf_holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
