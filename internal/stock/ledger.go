// Package stock maintains the append-only inventory ledger and the materialized
// current_stock snapshot on the supply catalog. The ledger is the source of
// truth for auditing; the snapshot exists for fast reads and is only ever
// updated in the same transaction as the ledger record that explains it.
package stock

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pantry-service/internal/model"
)

// ErrAuditLogFailed marks a stock movement whose ledger record could not be
// written. The snapshot is rolled back with it, so the two never drift apart
// silently, but callers must surface this distinctly from validation errors.
var ErrAuditLogFailed = errors.New("stock movement audit log failed")

// Ledger applies stock movements against the catalog.
type Ledger struct {
	db *gorm.DB
}

// NewLedger returns a Ledger bound to the given database handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// ApplyMovement sets a supply's stock to an absolute value, recording the
// movement in the ledger. The pre-state is read inside the transaction, so the
// record always reflects the latest persisted stock. entries and exits are
// derived from the signed delta: exactly one of them is non-zero unless the
// stock is unchanged.
func (l *Ledger) ApplyMovement(supplyID uint, newStock float64, actorID uint, comment string) (*model.InventoryLog, error) {
	return l.applyAt(l.db, supplyID, newStock, time.Now(), actorID, comment)
}

// AddStock applies a relative movement, intended for purchase receiving.
func (l *Ledger) AddStock(supplyID uint, delta float64, actorID uint, comment string) (*model.InventoryLog, error) {
	var record *model.InventoryLog
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var supply model.Supply
		if err := tx.First(&supply, supplyID).Error; err != nil {
			return fmt.Errorf("load supply %d: %w", supplyID, err)
		}
		var err error
		record, err = l.applyAt(tx, supplyID, supply.CurrentStock+delta, time.Now(), actorID, comment)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// applyAt writes the ledger record and the snapshot update as one logical
// transaction on the given handle (opening a new transaction when the handle
// is not already inside one).
func (l *Ledger) applyAt(db *gorm.DB, supplyID uint, newStock float64, date time.Time, actorID uint, comment string) (*model.InventoryLog, error) {
	var record model.InventoryLog
	err := db.Transaction(func(tx *gorm.DB) error {
		var supply model.Supply
		if err := tx.First(&supply, supplyID).Error; err != nil {
			return fmt.Errorf("load supply %d: %w", supplyID, err)
		}

		initial := supply.CurrentStock
		record = model.InventoryLog{
			SupplyID:     supplyID,
			UserID:       actorID,
			Date:         date,
			InitialStock: initial,
			Entries:      max(newStock-initial, 0),
			Exits:        max(initial-newStock, 0),
			FinalCount:   newStock,
			Comments:     comment,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrAuditLogFailed, err)
		}
		if err := tx.Model(&model.Supply{}).Where("id = ?", supplyID).
			Update("current_stock", newStock).Error; err != nil {
			return fmt.Errorf("update stock snapshot of supply %d: %w", supplyID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// History returns a supply's ledger records, newest first.
func (l *Ledger) History(supplyID uint) ([]model.InventoryLog, error) {
	var logs []model.InventoryLog
	err := l.db.Where("supply_id = ?", supplyID).Order("date DESC, id DESC").Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("load ledger of supply %d: %w", supplyID, err)
	}
	return logs, nil
}
