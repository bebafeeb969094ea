package model

import "time"

// ReplenishmentSettings is the process-wide singleton holding the planner and
// counting thresholds. It is loaded once per planning or counting operation and
// passed by value; callers never cache it across operations.
type ReplenishmentSettings struct {
	ID uint `json:"id" gorm:"primarykey"`

	// Target stock for the production shortlist is min_stock * BufferMultiplier.
	BufferMultiplier float64 `json:"buffer_multiplier" gorm:"default:2"`

	// Target stock for the purchase shortlist is min_stock * PurchaseTargetMultiplier.
	// Kept separate from BufferMultiplier: the two views historically used
	// different buffer policies.
	PurchaseTargetMultiplier float64 `json:"purchase_target_multiplier" gorm:"default:2"`

	// Fallback threshold for supplies with no min_stock of their own.
	DefaultMinStock float64 `json:"default_min_stock" gorm:"default:1"`

	// Absolute stock delta (in the supply's base unit) above which a count
	// submission is soft-blocked pending explicit confirmation.
	DiscrepancyThreshold float64 `json:"discrepancy_threshold" gorm:"default:20"`

	// Comma-separated weekday names per ABC class, e.g. "Monday,Thursday".
	// An empty schedule means the class is counted every day.
	ClassASchedule string `json:"class_a_schedule" gorm:"type:varchar(100)"`
	ClassBSchedule string `json:"class_b_schedule" gorm:"type:varchar(100)"`
	ClassCSchedule string `json:"class_c_schedule" gorm:"type:varchar(100)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
