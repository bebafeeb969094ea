package model

import "time"

// InventoryLog is one record of the append-only stock ledger. It carries both
// the pre-state (InitialStock) and post-state (FinalCount) so stock history is
// reconstructible without trusting the catalog snapshot. Entries and Exits are
// non-negative and at most one of them is non-zero for a single stock-setting
// operation.
type InventoryLog struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	SupplyID     uint      `json:"supply_id" gorm:"not null;index:idx_supply_date"`
	UserID       uint      `json:"user_id" gorm:"index"`
	Date         time.Time `json:"date" gorm:"not null;index:idx_supply_date"`
	InitialStock float64   `json:"initial_stock"`
	Entries      float64   `json:"entries" gorm:"default:0"`
	Exits        float64   `json:"exits" gorm:"default:0"`
	FinalCount   float64   `json:"final_count"`
	Comments     string    `json:"comments" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
}
