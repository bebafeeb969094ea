package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"pantry-service/internal/costing"
	"pantry-service/internal/model"
	"pantry-service/pkg/database"
	"pantry-service/pkg/logger"
	"pantry-service/prometheus"
)

// SupplyRequest defines the structure for supply creation/update requests
type SupplyRequest struct {
	Name            string                `json:"name"`
	Category        string                `json:"category"`
	Unit            model.Unit            `json:"unit"`
	AcquisitionMode model.AcquisitionMode `json:"acquisition_mode"`

	PackageCost        decimal.Decimal `json:"package_cost"`
	QuantityPerPackage float64         `json:"quantity_per_package"`
	PurchaseUnit       string          `json:"purchase_unit"`
	Provider           string          `json:"provider"`
	Brand              string          `json:"brand"`
	ShrinkagePercent   float64         `json:"shrinkage_percent"`

	YieldQuantity float64 `json:"yield_quantity"`

	MinStock          float64            `json:"min_stock"`
	AverageWeight     *float64           `json:"average_weight,omitempty"`
	CountingMode      model.CountingMode `json:"counting_mode"`
	ABCClassification model.ABCClass     `json:"abc_classification"`
	AssignedUserID    uint               `json:"assigned_user_id"`
}

// validate returns field-level validation messages, empty when the request is
// acceptable. Nothing is written when any field is rejected.
func (r *SupplyRequest) validate() map[string]string {
	fields := map[string]string{}
	if r.Name == "" {
		fields["name"] = "name is required"
	}
	if !r.Unit.Valid() {
		fields["unit"] = "unit must be one of kg, lt, pz, gr, ml"
	}
	switch r.AcquisitionMode {
	case model.AcquisitionPurchase:
		if r.QuantityPerPackage < 0 {
			fields["quantity_per_package"] = "quantity per package must not be negative"
		}
		if r.PackageCost.IsNegative() {
			fields["package_cost"] = "package cost must not be negative"
		}
	case model.AcquisitionProduction:
		if r.YieldQuantity < 0 {
			fields["yield_quantity"] = "yield quantity must not be negative"
		}
	default:
		fields["acquisition_mode"] = "acquisition mode must be purchase or production"
	}
	if r.ShrinkagePercent < 0 || r.ShrinkagePercent > 100 {
		fields["shrinkage_percent"] = "shrinkage percent must be between 0 and 100"
	}
	if r.AverageWeight != nil && *r.AverageWeight <= 0 {
		fields["average_weight"] = "average weight must be positive"
	}
	return fields
}

func (r *SupplyRequest) apply(supply *model.Supply) {
	supply.Name = r.Name
	supply.Category = r.Category
	supply.Unit = r.Unit
	supply.AcquisitionMode = r.AcquisitionMode
	supply.PackageCost = r.PackageCost
	supply.QuantityPerPackage = r.QuantityPerPackage
	supply.PurchaseUnit = r.PurchaseUnit
	supply.Provider = r.Provider
	supply.Brand = r.Brand
	supply.ShrinkagePercent = r.ShrinkagePercent
	supply.YieldQuantity = r.YieldQuantity
	supply.MinStock = r.MinStock
	supply.AverageWeight = r.AverageWeight
	if r.CountingMode != "" {
		supply.CountingMode = r.CountingMode
	}
	if r.ABCClassification != "" {
		supply.ABCClassification = r.ABCClassification
	}
	supply.AssignedUserID = r.AssignedUserID
}

// ListSupplies handles retrieving all supplies with optional filtering
func ListSupplies(c echo.Context) error {
	log := logger.FromContext(c)

	db := database.GetDB()
	var supplies []model.Supply

	query := db

	// Filter by category if specified
	category := c.QueryParam("category")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	// Filter by acquisition mode if specified
	mode := c.QueryParam("acquisition_mode")
	if mode != "" {
		query = query.Where("acquisition_mode = ?", mode)
	}

	// Filter by assigned user if specified
	assignedUser := c.QueryParam("assigned_user_id")
	if assignedUser != "" {
		query = query.Where("assigned_user_id = ?", assignedUser)
	}

	result := query.Order("name").Find(&supplies)
	if result.Error != nil {
		log.Error("Failed to list supplies", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve supplies",
		})
	}

	log.Info("Supplies retrieved", zap.Int("count", len(supplies)))
	return c.JSON(http.StatusOK, supplies)
}

// GetSupply handles retrieving a single supply by ID
func GetSupply(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var supply model.Supply
	result := database.GetDB().First(&supply, id)
	if result.Error != nil {
		log.Error("Supply not found",
			zap.String("supply_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supply not found",
		})
	}

	return c.JSON(http.StatusOK, supply)
}

// CreateSupply handles creating a new supply. The supply starts with zero
// stock and its unit cost is materialized immediately.
func CreateSupply(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new supply")

	var req SupplyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if fields := req.validate(); len(fields) > 0 {
		log.Warn("Supply validation failed", zap.Any("fields", fields))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	db := database.GetDB()
	supply := model.Supply{CurrentStock: 0}
	req.apply(&supply)

	result := db.Create(&supply)
	if result.Error != nil {
		log.Error("Failed to create supply",
			zap.String("name", req.Name),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create supply",
		})
	}

	if err := costing.NewEngine(db).Recompute(supply.ID); err != nil {
		log.Error("Failed to materialize supply cost",
			zap.Uint("supply_id", supply.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Supply created but cost materialization failed",
		})
	}
	prometheus.CostRecomputationsCounter.Inc()
	prometheus.RecordSupplyOperation("create")

	db.First(&supply, supply.ID)
	log.Info("Supply created",
		zap.Uint("supply_id", supply.ID),
		zap.String("name", supply.Name),
		zap.String("unit", string(supply.Unit)))
	return c.JSON(http.StatusCreated, supply)
}

// UpdateSupply handles updating an existing supply. Any mutation that could
// affect the unit cost retriggers recomputation, which propagates to every
// supply that uses this one as an ingredient.
func UpdateSupply(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Updating supply", zap.String("supply_id", id))

	var req SupplyRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data",
			zap.String("supply_id", id),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	if fields := req.validate(); len(fields) > 0 {
		log.Warn("Supply validation failed", zap.Any("fields", fields))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	db := database.GetDB()
	var supply model.Supply
	result := db.First(&supply, id)
	if result.Error != nil {
		log.Error("Supply not found for update",
			zap.String("supply_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supply not found",
		})
	}

	req.apply(&supply)

	result = db.Save(&supply)
	if result.Error != nil {
		log.Error("Failed to update supply",
			zap.String("supply_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update supply",
		})
	}

	if err := costing.NewEngine(db).Recompute(supply.ID); err != nil {
		log.Error("Failed to rematerialize supply cost",
			zap.Uint("supply_id", supply.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Supply updated but cost materialization failed",
		})
	}
	prometheus.CostRecomputationsCounter.Inc()
	prometheus.RecordSupplyOperation("update")

	db.First(&supply, supply.ID)
	log.Info("Supply updated",
		zap.Uint("supply_id", supply.ID),
		zap.String("name", supply.Name))
	return c.JSON(http.StatusOK, supply)
}

// DeleteSupply handles deleting a supply. A supply still referenced as a BOM
// ingredient is refused with a specific "in use" response. Otherwise the
// supply, its ledger history and its outgoing BOM edges are purged together in
// one transaction (the ledger has a foreign key on the supply).
func DeleteSupply(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")
	log.Info("Deleting supply", zap.String("supply_id", id))

	supplyID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid supply id",
		})
	}

	db := database.GetDB()

	var supply model.Supply
	if err := db.First(&supply, supplyID).Error; err != nil {
		log.Warn("Supply not found for deletion", zap.String("supply_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supply not found",
		})
	}

	var refs int64
	db.Model(&model.SupplyIngredient{}).Where("child_supply_id = ?", supplyID).Count(&refs)
	if refs > 0 {
		log.Warn("Supply is in use as an ingredient",
			zap.String("supply_id", id),
			zap.Int64("references", refs))
		return c.JSON(http.StatusConflict, echo.Map{
			"error":      "Supply is in use as an ingredient of other supplies",
			"references": refs,
		})
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("supply_id = ?", supplyID).Delete(&model.InventoryLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("parent_supply_id = ?", supplyID).Delete(&model.SupplyIngredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Supply{}, supplyID).Error
	})
	if err != nil {
		log.Error("Failed to delete supply",
			zap.String("supply_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete supply",
		})
	}

	prometheus.RecordSupplyOperation("delete")
	log.Info("Supply deleted", zap.String("supply_id", id), zap.String("name", supply.Name))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Supply deleted successfully",
	})
}

// TouchPriceCheck marks a supply's price as verified now.
func TouchPriceCheck(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	now := time.Now()
	result := database.GetDB().Model(&model.Supply{}).Where("id = ?", id).
		Update("last_price_check", now)
	if result.Error != nil {
		log.Error("Failed to record price check",
			zap.String("supply_id", id),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to record price check",
		})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Supply not found",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"last_price_check": now})
}
