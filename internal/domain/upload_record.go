package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	UploadStatusSuccess = "success"
	UploadStatusError   = "error"
)

// UploadRecord is the append-only audit entry written once per ingestion attempt (upload_history table).
type UploadRecord struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ETFSymbol     string         `gorm:"column:etf_symbol;type:varchar(16);not null;index" json:"etf_symbol"`
	UploadDate    int64          `gorm:"column:upload_date;not null;index" json:"upload_date"`
	SnapshotID    string         `gorm:"column:snapshot_id;type:varchar(64)" json:"snapshot_id"`
	TotalHoldings int            `gorm:"column:total_holdings;not null;default:0" json:"total_holdings"`
	SavedCount    int            `gorm:"column:saved_count;not null;default:0" json:"saved_count"`
	FileName      string         `gorm:"column:file_name" json:"file_name"`
	Status        string         `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Notes         string         `gorm:"column:notes" json:"notes"`
	Warnings      datatypes.JSON `gorm:"column:warnings" json:"warnings"`
	CreatedAt     int64          `gorm:"column:created_at;autoCreateTime:milli" json:"created_at"`
	UpdatedAt     int64          `gorm:"column:updated_at;autoUpdateTime:milli" json:"updated_at"`
	Deleted       bool           `gorm:"column:deleted;not null;default:false" json:"-"`
}

func (UploadRecord) TableName() string {
	return "upload_history"
}

func (u *UploadRecord) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
