package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pantry-service/internal/costing"
	"pantry-service/internal/model"
	"pantry-service/pkg/database"
	"pantry-service/pkg/logger"
	"pantry-service/prometheus"
)

// IngredientRequest defines a BOM edge create/update request. Quantity is
// denominated in the child supply's unit.
type IngredientRequest struct {
	ChildSupplyID uint    `json:"child_supply_id"`
	Quantity      float64 `json:"quantity"`
}

// ListIngredients returns the BOM edges of a production supply.
func ListIngredients(c echo.Context) error {
	log := logger.FromContext(c)
	parentID := c.Param("id")

	var edges []model.SupplyIngredient
	result := database.GetDB().Where("parent_supply_id = ?", parentID).Find(&edges)
	if result.Error != nil {
		log.Error("Failed to list ingredients",
			zap.String("parent_supply_id", parentID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve ingredients",
		})
	}

	return c.JSON(http.StatusOK, edges)
}

// AddIngredient inserts a BOM edge under the acyclicity guard and retriggers
// cost propagation for the parent chain.
func AddIngredient(c echo.Context) error {
	log := logger.FromContext(c)
	parentID := c.Param("id")

	var req IngredientRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": echo.Map{"quantity": "quantity must be positive"},
		})
	}

	db := database.GetDB()

	var parent model.Supply
	if err := db.First(&parent, parentID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Parent supply not found"})
	}
	var child model.Supply
	if err := db.First(&child, req.ChildSupplyID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Child supply not found"})
	}

	engine := costing.NewEngine(db)
	cyclic, err := engine.WouldCreateCycle(parent.ID, child.ID)
	if err != nil {
		log.Error("Cycle check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to verify recipe graph",
		})
	}
	if cyclic {
		log.Warn("Rejected cyclic ingredient edge",
			zap.Uint("parent_supply_id", parent.ID),
			zap.Uint("child_supply_id", child.ID))
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "Adding this ingredient would make the recipe include itself",
		})
	}

	edge := model.SupplyIngredient{
		ParentSupplyID: parent.ID,
		ChildSupplyID:  child.ID,
		Quantity:       req.Quantity,
	}
	if err := db.Create(&edge).Error; err != nil {
		log.Error("Failed to create ingredient edge",
			zap.Uint("parent_supply_id", parent.ID),
			zap.Uint("child_supply_id", child.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to add ingredient",
		})
	}

	if err := engine.Recompute(parent.ID); err != nil {
		log.Error("Cost propagation failed",
			zap.Uint("parent_supply_id", parent.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Ingredient added but cost propagation failed",
		})
	}
	prometheus.CostRecomputationsCounter.Inc()

	log.Info("Ingredient added",
		zap.Uint("parent_supply_id", parent.ID),
		zap.Uint("child_supply_id", child.ID),
		zap.Float64("quantity", req.Quantity))
	return c.JSON(http.StatusCreated, edge)
}

// UpdateIngredient changes the quantity of an existing BOM edge and retriggers
// cost propagation.
func UpdateIngredient(c echo.Context) error {
	log := logger.FromContext(c)
	parentID := c.Param("id")
	edgeID := c.Param("edgeId")

	var req IngredientRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": echo.Map{"quantity": "quantity must be positive"},
		})
	}

	db := database.GetDB()
	var edge model.SupplyIngredient
	if err := db.Where("id = ? AND parent_supply_id = ?", edgeID, parentID).First(&edge).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Ingredient not found"})
	}

	edge.Quantity = req.Quantity
	if err := db.Save(&edge).Error; err != nil {
		log.Error("Failed to update ingredient edge",
			zap.Uint("edge_id", edge.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update ingredient",
		})
	}

	if err := costing.NewEngine(db).Recompute(edge.ParentSupplyID); err != nil {
		log.Error("Cost propagation failed",
			zap.Uint("parent_supply_id", edge.ParentSupplyID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Ingredient updated but cost propagation failed",
		})
	}
	prometheus.CostRecomputationsCounter.Inc()

	log.Info("Ingredient updated",
		zap.Uint("edge_id", edge.ID),
		zap.Float64("quantity", edge.Quantity))
	return c.JSON(http.StatusOK, edge)
}

// DeleteIngredient removes a BOM edge and retriggers cost propagation.
func DeleteIngredient(c echo.Context) error {
	log := logger.FromContext(c)
	parentID := c.Param("id")
	edgeID := c.Param("edgeId")

	db := database.GetDB()
	var edge model.SupplyIngredient
	if err := db.Where("id = ? AND parent_supply_id = ?", edgeID, parentID).First(&edge).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Ingredient not found"})
	}

	if err := db.Delete(&edge).Error; err != nil {
		log.Error("Failed to delete ingredient edge",
			zap.Uint("edge_id", edge.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete ingredient",
		})
	}

	if err := costing.NewEngine(db).Recompute(edge.ParentSupplyID); err != nil {
		log.Error("Cost propagation failed",
			zap.Uint("parent_supply_id", edge.ParentSupplyID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Ingredient deleted but cost propagation failed",
		})
	}
	prometheus.CostRecomputationsCounter.Inc()

	log.Info("Ingredient deleted", zap.Uint("edge_id", edge.ID))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Ingredient deleted successfully",
	})
}
