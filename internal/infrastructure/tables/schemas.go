package tables

import (
	"etf-analysis/internal/domain"

	"gorm.io/gorm"
)

// Holdings returns the etf_holdings table.
func Holdings(db *gorm.DB) *Table[domain.Holding] {
	return New[domain.Holding](db, Schema{
		SearchColumns: []string{"ticker", "company_name"},
		SortColumns:   []string{"ticker", "company_name", "weight", "shares", "market_value", "sector", "upload_date", "snapshot_id", "etf_symbol", "created_at"},
		FilterColumns: []string{"etf_symbol", "snapshot_id", "ticker", "sector"},
		DefaultSort:   "-weight",
	})
}

// Uploads returns the upload_history table.
func Uploads(db *gorm.DB) *Table[domain.UploadRecord] {
	return New[domain.UploadRecord](db, Schema{
		SearchColumns: []string{"etf_symbol", "file_name"},
		SortColumns:   []string{"upload_date", "etf_symbol", "status", "created_at"},
		FilterColumns: []string{"etf_symbol", "status", "snapshot_id"},
		DefaultSort:   "-upload_date",
	})
}

// StockDetails returns the stock_details table.
func StockDetails(db *gorm.DB) *Table[domain.StockDetail] {
	return New[domain.StockDetail](db, Schema{
		SearchColumns: []string{"ticker", "company_name"},
		SortColumns:   []string{"ticker", "last_updated", "created_at"},
		FilterColumns: []string{"ticker"},
		DefaultSort:   "ticker",
	})
}
