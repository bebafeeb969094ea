package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pantry-service/internal/model"
	"pantry-service/pkg/database"
	"pantry-service/pkg/logger"
)

// SettingsRequest updates the replenishment settings singleton.
type SettingsRequest struct {
	BufferMultiplier         float64 `json:"buffer_multiplier"`
	PurchaseTargetMultiplier float64 `json:"purchase_target_multiplier"`
	DefaultMinStock          float64 `json:"default_min_stock"`
	DiscrepancyThreshold     float64 `json:"discrepancy_threshold"`
	ClassASchedule           string  `json:"class_a_schedule"`
	ClassBSchedule           string  `json:"class_b_schedule"`
	ClassCSchedule           string  `json:"class_c_schedule"`
}

func (r *SettingsRequest) validate() map[string]string {
	fields := map[string]string{}
	if r.BufferMultiplier <= 0 {
		fields["buffer_multiplier"] = "buffer multiplier must be positive"
	}
	if r.PurchaseTargetMultiplier <= 0 {
		fields["purchase_target_multiplier"] = "purchase target multiplier must be positive"
	}
	if r.DefaultMinStock < 0 {
		fields["default_min_stock"] = "default min stock must not be negative"
	}
	if r.DiscrepancyThreshold < 0 {
		fields["discrepancy_threshold"] = "discrepancy threshold must not be negative"
	}
	return fields
}

// GetSettings returns the replenishment settings singleton.
func GetSettings(c echo.Context) error {
	log := logger.FromContext(c)

	var settings model.ReplenishmentSettings
	if err := database.GetDB().First(&settings).Error; err != nil {
		log.Error("Failed to load replenishment settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load settings",
		})
	}

	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings replaces the replenishment settings singleton. Planner and
// counting operations load the row fresh on every call, so changes take effect
// on the next operation.
func UpdateSettings(c echo.Context) error {
	log := logger.FromContext(c)

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if fields := req.validate(); len(fields) > 0 {
		log.Warn("Settings validation failed", zap.Any("fields", fields))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": fields,
		})
	}

	db := database.GetDB()
	var settings model.ReplenishmentSettings
	if err := db.First(&settings).Error; err != nil {
		log.Error("Failed to load replenishment settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load settings",
		})
	}

	settings.BufferMultiplier = req.BufferMultiplier
	settings.PurchaseTargetMultiplier = req.PurchaseTargetMultiplier
	settings.DefaultMinStock = req.DefaultMinStock
	settings.DiscrepancyThreshold = req.DiscrepancyThreshold
	settings.ClassASchedule = req.ClassASchedule
	settings.ClassBSchedule = req.ClassBSchedule
	settings.ClassCSchedule = req.ClassCSchedule

	if err := db.Save(&settings).Error; err != nil {
		log.Error("Failed to update replenishment settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update settings",
		})
	}

	log.Info("Replenishment settings updated",
		zap.Float64("buffer_multiplier", settings.BufferMultiplier),
		zap.Float64("purchase_target_multiplier", settings.PurchaseTargetMultiplier))
	return c.JSON(http.StatusOK, settings)
}
