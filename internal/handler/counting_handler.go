package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pantry-service/internal/middleware"
	"pantry-service/internal/model"
	"pantry-service/internal/stock"
	"pantry-service/pkg/database"
	"pantry-service/pkg/logger"
	"pantry-service/prometheus"
)

// CountRequest submits a batch of physical observations. Supply ids covered by
// the count but not actually observed are sent with a null observation and
// keep their current stock. Force commits the batch despite discrepancy
// warnings.
type CountRequest struct {
	Date         string                        `json:"date"`
	Observations map[string]*stock.Observation `json:"observations"`
	Force        bool                          `json:"force"`
}

// SubmitCount commits a count batch, all or nothing. Large deltas soft-block
// the whole batch with the offending supply ids until resubmitted with force.
func SubmitCount(c echo.Context) error {
	log := logger.FromContext(c)

	var req CountRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}
	if len(req.Observations) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "Validation failed",
			"fields": echo.Map{"observations": "at least one supply must be covered"},
		})
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "Validation failed",
				"fields": echo.Map{"date": "date must be formatted YYYY-MM-DD"},
			})
		}
		date = parsed
	}

	observations := make(map[uint]*stock.Observation, len(req.Observations))
	for key, obs := range req.Observations {
		supplyID, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error":  "Validation failed",
				"fields": echo.Map{"observations": "supply ids must be numeric, got " + key},
			})
		}
		observations[uint(supplyID)] = obs
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	counter := stock.NewCounter(database.GetDB())

	result, err := counter.SubmitCount(observations, date, actorID, req.Force)
	if err != nil {
		var discrepancy *stock.DiscrepancyError
		if errors.As(err, &discrepancy) {
			prometheus.CountDiscrepanciesCounter.Inc()
			log.Warn("Count batch soft-blocked by discrepancies",
				zap.Uints("supply_ids", discrepancy.SupplyIDs),
				zap.Float64("threshold", discrepancy.Threshold))
			return c.JSON(http.StatusConflict, echo.Map{
				"error":      "Count deltas look suspicious, resubmit with force to confirm",
				"supply_ids": discrepancy.SupplyIDs,
				"threshold":  discrepancy.Threshold,
			})
		}
		if errors.Is(err, stock.ErrAuditLogFailed) {
			log.Error("Count batch audit log failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Count not committed: audit log could not be written",
			})
		}
		log.Error("Failed to submit count batch", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to submit count",
		})
	}

	for i := range result.Records {
		recordStockMetrics("count", &result.Records[i])
	}
	log.Info("Count batch committed",
		zap.Int("records", len(result.Records)),
		zap.Bool("forced", req.Force))
	return c.JSON(http.StatusOK, result)
}

// ListStaleSupplies returns supplies not counted for two days or more. Whether
// a count may be submitted without covering them is the caller's policy.
func ListStaleSupplies(c echo.Context) error {
	log := logger.FromContext(c)

	stale, err := stock.NewCounter(database.GetDB()).StaleSupplies(time.Now())
	if err != nil {
		log.Error("Failed to list stale supplies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve stale supplies",
		})
	}

	return c.JSON(http.StatusOK, stale)
}

// ListDueForCounting returns the supplies whose ABC class is scheduled for
// counting today.
func ListDueForCounting(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.GetDB()

	var settings model.ReplenishmentSettings
	if err := db.First(&settings).Error; err != nil {
		log.Error("Failed to load replenishment settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to load settings",
		})
	}

	due, err := stock.NewCounter(db).DueForCounting(time.Now(), settings)
	if err != nil {
		log.Error("Failed to list supplies due for counting", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve due supplies",
		})
	}

	return c.JSON(http.StatusOK, due)
}
