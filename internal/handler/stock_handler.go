package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pantry-service/internal/middleware"
	"pantry-service/internal/model"
	"pantry-service/internal/stock"
	"pantry-service/pkg/database"
	"pantry-service/pkg/logger"
	"pantry-service/prometheus"
)

// StockMovementRequest sets a supply's stock to an absolute value.
type StockMovementRequest struct {
	NewStock float64 `json:"new_stock"`
	Comment  string  `json:"comment"`
}

// ReceiveRequest records received purchase stock. Quantity is in the supply's
// base unit; Packages, when set, adds whole packages on top at the supply's
// quantity per package.
type ReceiveRequest struct {
	Quantity     float64 `json:"quantity"`
	Packages     float64 `json:"packages"`
	Comment      string  `json:"comment"`
	PriceChecked bool    `json:"price_checked"`
}

// ApplyStockMovement handles setting a supply's stock to an observed absolute
// value. The ledger record and the snapshot update commit together; an audit
// log failure is reported distinctly so the operator knows to reconcile.
func ApplyStockMovement(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req StockMovementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.NewStock < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": echo.Map{"new_stock": "stock must not be negative"},
		})
	}

	supplyID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supply id"})
	}
	actorID, _ := middleware.GetUserIDFromContext(c)

	ledger := stock.NewLedger(database.GetDB())
	record, err := ledger.ApplyMovement(uint(supplyID), req.NewStock, actorID, req.Comment)
	if err != nil {
		if errors.Is(err, stock.ErrAuditLogFailed) {
			log.Error("Stock movement audit log failed",
				zap.String("supply_id", id),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Stock not updated: audit log could not be written",
			})
		}
		log.Error("Failed to apply stock movement",
			zap.String("supply_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to apply stock movement",
		})
	}

	recordStockMetrics("movement", record)
	log.Info("Stock movement applied",
		zap.String("supply_id", id),
		zap.Float64("initial_stock", record.InitialStock),
		zap.Float64("final_count", record.FinalCount))
	return c.JSON(http.StatusOK, record)
}

// ReceivePurchase handles purchase receiving as a relative stock addition.
func ReceivePurchase(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req ReceiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if req.Quantity < 0 || req.Packages < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": echo.Map{"quantity": "received quantity must not be negative"},
		})
	}

	supplyID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supply id"})
	}

	db := database.GetDB()
	var supply model.Supply
	if err := db.First(&supply, supplyID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Supply not found"})
	}

	delta := req.Quantity + req.Packages*supply.QuantityPerPackage
	if delta <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": echo.Map{"quantity": "nothing to receive"},
		})
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	comment := req.Comment
	if comment == "" {
		comment = "purchase received"
	}

	record, err := stock.NewLedger(db).AddStock(uint(supplyID), delta, actorID, comment)
	if err != nil {
		if errors.Is(err, stock.ErrAuditLogFailed) {
			log.Error("Purchase receiving audit log failed",
				zap.String("supply_id", id),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Stock not updated: audit log could not be written",
			})
		}
		log.Error("Failed to receive purchase",
			zap.String("supply_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to receive purchase",
		})
	}

	if req.PriceChecked {
		db.Model(&model.Supply{}).Where("id = ?", supplyID).
			Update("last_price_check", record.Date)
	}

	recordStockMetrics("receive", record)
	log.Info("Purchase received",
		zap.String("supply_id", id),
		zap.Float64("delta", delta),
		zap.Float64("final_count", record.FinalCount))
	return c.JSON(http.StatusOK, record)
}

// GetStockHistory returns a supply's ledger records, newest first.
func GetStockHistory(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	supplyID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid supply id"})
	}

	logs, err := stock.NewLedger(database.GetDB()).History(uint(supplyID))
	if err != nil {
		log.Error("Failed to load stock history",
			zap.String("supply_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve stock history",
		})
	}

	return c.JSON(http.StatusOK, logs)
}

func recordStockMetrics(kind string, record *model.InventoryLog) {
	var supply model.Supply
	if err := database.GetDB().First(&supply, record.SupplyID).Error; err != nil {
		return
	}
	prometheus.RecordStockMovement(kind,
		strconv.FormatUint(uint64(supply.ID), 10),
		supply.Name,
		string(supply.Unit),
		record.FinalCount)
}
