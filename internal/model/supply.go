package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Unit is the closed set of base units a supply's stock and cost are denominated in.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitLiter    Unit = "lt"
	UnitPiece    Unit = "pz"
	UnitGram     Unit = "gr"
	UnitMillilit Unit = "ml"
)

// Valid reports whether u is one of the supported base units.
func (u Unit) Valid() bool {
	switch u {
	case UnitKilogram, UnitLiter, UnitPiece, UnitGram, UnitMillilit:
		return true
	}
	return false
}

// AcquisitionMode selects how a supply's unit cost is derived.
type AcquisitionMode string

const (
	AcquisitionPurchase   AcquisitionMode = "purchase"
	AcquisitionProduction AcquisitionMode = "production"
)

// CountingMode governs what granularity of partial counts the UI accepts.
// The engine's arithmetic is unaffected by it.
type CountingMode string

const (
	CountingInteger  CountingMode = "integer"
	CountingFraction CountingMode = "fraction"
	CountingFuzzy    CountingMode = "fuzzy"
)

// ABCClass is the counting cadence tier of a supply.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// Supply represents a raw ingredient or an internally produced item.
// CostPerUnit is materialized, never authored directly: it is recomputed from
// package economics (purchase mode) or from BOM children costs (production mode).
// CurrentStock is the materialized snapshot of the inventory ledger.
type Supply struct {
	ID       uint   `json:"id" gorm:"primarykey"`
	Name     string `json:"name" gorm:"type:varchar(255);not null"`
	Category string `json:"category" gorm:"type:varchar(100)"`
	Unit     Unit   `json:"unit" gorm:"type:varchar(5);not null"`

	AcquisitionMode AcquisitionMode `json:"acquisition_mode" gorm:"type:varchar(20);not null;default:'purchase'"`

	// Purchase-mode fields.
	PackageCost        decimal.Decimal `json:"package_cost" gorm:"type:decimal(20,4);default:0"`
	QuantityPerPackage float64         `json:"quantity_per_package" gorm:"default:0"`
	PurchaseUnit       string          `json:"purchase_unit" gorm:"type:varchar(50);comment:'display label for the package presentation'"`
	Provider           string          `json:"provider" gorm:"type:varchar(255)"`
	Brand              string          `json:"brand" gorm:"type:varchar(255)"`
	ShrinkagePercent   float64         `json:"shrinkage_percent" gorm:"default:0"`

	// Production-mode fields.
	YieldQuantity float64 `json:"yield_quantity" gorm:"default:0"`

	CostPerUnit decimal.Decimal `json:"cost_per_unit" gorm:"type:decimal(20,4);default:0"`

	CurrentStock  float64  `json:"current_stock" gorm:"default:0"`
	MinStock      float64  `json:"min_stock" gorm:"default:0"`
	AverageWeight *float64 `json:"average_weight,omitempty" gorm:"comment:'grams per piece, enables piece/weight conversion'"`

	CountingMode      CountingMode `json:"counting_mode" gorm:"type:varchar(10);default:'integer'"`
	ABCClassification ABCClass     `json:"abc_classification" gorm:"type:varchar(1);default:'C'"`
	LastPriceCheck    *time.Time   `json:"last_price_check,omitempty"`
	AssignedUserID    uint         `json:"assigned_user_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// SupplyIngredient is a bill-of-materials edge: one production run of the parent
// consumes Quantity of the child, denominated in the child's unit.
type SupplyIngredient struct {
	ID             uint    `json:"id" gorm:"primarykey"`
	ParentSupplyID uint    `json:"parent_supply_id" gorm:"not null;index;uniqueIndex:idx_parent_child"`
	ChildSupplyID  uint    `json:"child_supply_id" gorm:"not null;index;uniqueIndex:idx_parent_child"`
	Quantity       float64 `json:"quantity" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
