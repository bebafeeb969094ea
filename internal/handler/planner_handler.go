package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pantry-service/internal/model"
	"pantry-service/internal/planner"
	"pantry-service/internal/stock"
	"pantry-service/pkg/database"
	"pantry-service/pkg/logger"
)

// GetPurchaseShortlist returns the supplies to buy: everything at or below its
// minimum stock, with target and missing quantities. Pure derivation over the
// catalog snapshot, nothing is mutated.
func GetPurchaseShortlist(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var settings model.ReplenishmentSettings
	if err := db.First(&settings).Error; err != nil {
		log.Error("Failed to load replenishment settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load settings",
		})
	}

	var supplies []model.Supply
	if err := db.Order("name").Find(&supplies).Error; err != nil {
		log.Error("Failed to load supplies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve supplies",
		})
	}

	items := planner.PurchaseShortlist(supplies, settings)
	log.Info("Purchase shortlist derived", zap.Int("items", len(items)))
	return c.JSON(http.StatusOK, items)
}

// GetProductionShortlist returns the production supplies to make today:
// everything below its buffered target that has not already been produced
// today.
func GetProductionShortlist(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var settings model.ReplenishmentSettings
	if err := db.First(&settings).Error; err != nil {
		log.Error("Failed to load replenishment settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load settings",
		})
	}

	var supplies []model.Supply
	if err := db.Order("name").Find(&supplies).Error; err != nil {
		log.Error("Failed to load supplies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve supplies",
		})
	}

	producedToday, err := stock.NewCounter(db).ProducedToday(time.Now())
	if err != nil {
		log.Error("Failed to load same-day production", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve production state",
		})
	}

	items := planner.ProductionShortlist(supplies, settings, producedToday)
	log.Info("Production shortlist derived", zap.Int("items", len(items)))
	return c.JSON(http.StatusOK, items)
}
