package stock

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"pantry-service/internal/model"
	"pantry-service/internal/units"
)

// staleAfterDays is the age at which an uncounted supply is considered stale.
const staleAfterDays = 2

// Observation is one physically observed quantity. The unit may differ from
// the supply's base unit as long as a conversion exists, including the smart
// piece/weight path for supplies with an average unit weight.
type Observation struct {
	Value float64    `json:"value"`
	Unit  model.Unit `json:"unit"`
}

// DiscrepancyError soft-blocks a count batch whose deltas look suspicious.
// Nothing is written; the caller must resubmit with force to commit anyway.
type DiscrepancyError struct {
	SupplyIDs []uint
	Threshold float64
}

func (e *DiscrepancyError) Error() string {
	return fmt.Sprintf("count deltas exceed threshold %v for %d supplies", e.Threshold, len(e.SupplyIDs))
}

// CountResult reports a committed count batch.
type CountResult struct {
	Records []model.InventoryLog `json:"records"`
}

// Counter reconciles physical count batches against the catalog.
type Counter struct {
	db     *gorm.DB
	ledger *Ledger
}

// NewCounter returns a Counter bound to the given database handle.
func NewCounter(db *gorm.DB) *Counter {
	return &Counter{db: db, ledger: NewLedger(db)}
}

// SubmitCount commits a batch of observations as ledger records, all or
// nothing. Map entries with a nil observation mean "covered but not observed":
// the supply keeps its current stock and still gets a no-change record.
//
// Before anything is written, every observed delta is checked against the
// discrepancy threshold from the replenishment settings; if any exceeds it and
// force is false, the whole batch aborts with a DiscrepancyError listing the
// offending supplies.
func (c *Counter) SubmitCount(observations map[uint]*Observation, date time.Time, actorID uint, force bool) (*CountResult, error) {
	var settings model.ReplenishmentSettings
	if err := c.db.First(&settings).Error; err != nil {
		return nil, fmt.Errorf("load replenishment settings: %w", err)
	}

	ids := make([]uint, 0, len(observations))
	for id := range observations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	targets := make(map[uint]float64, len(ids))
	var suspicious []uint
	for _, id := range ids {
		var supply model.Supply
		if err := c.db.First(&supply, id).Error; err != nil {
			return nil, fmt.Errorf("load supply %d: %w", id, err)
		}

		obs := observations[id]
		if obs == nil {
			targets[id] = supply.CurrentStock
			continue
		}
		value, err := convertObservation(&supply, obs)
		if err != nil {
			return nil, fmt.Errorf("supply %d: %w", id, err)
		}
		targets[id] = value

		if math.Abs(value-supply.CurrentStock) > settings.DiscrepancyThreshold {
			suspicious = append(suspicious, id)
		}
	}

	if len(suspicious) > 0 && !force {
		return nil, &DiscrepancyError{SupplyIDs: suspicious, Threshold: settings.DiscrepancyThreshold}
	}

	result := &CountResult{}
	err := c.db.Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			record, err := c.ledger.applyAt(tx, id, targets[id], date, actorID, "stock count")
			if err != nil {
				return err
			}
			result.Records = append(result.Records, *record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// convertObservation translates an observed value into the supply's base unit.
// Observations crossing the piece boundary use the supply's average unit
// weight; the weight-to-pieces direction floors and is lossy.
func convertObservation(supply *model.Supply, obs *Observation) (float64, error) {
	if obs.Unit == supply.Unit {
		return obs.Value, nil
	}

	// Weight observed for a piece-counted supply.
	if supply.Unit == model.UnitPiece {
		if supply.AverageWeight == nil {
			return 0, fmt.Errorf("supply has no average weight for piece/weight conversion")
		}
		grams, err := units.Convert(obs.Value, obs.Unit, model.UnitGram)
		if err != nil {
			return 0, err
		}
		return units.PiecesFromWeight(grams, *supply.AverageWeight)
	}

	// Pieces observed for a weight- or volume-counted supply.
	if obs.Unit == model.UnitPiece {
		if supply.AverageWeight == nil {
			return 0, fmt.Errorf("supply has no average weight for piece/weight conversion")
		}
		return units.StockFromPieces(obs.Value, *supply.AverageWeight, supply.Unit)
	}

	return units.Convert(obs.Value, obs.Unit, supply.Unit)
}

// DaysSinceLastCount returns the whole days elapsed since the supply's most
// recent ledger record, and false when it has never been counted.
func (c *Counter) DaysSinceLastCount(supplyID uint, now time.Time) (int, bool, error) {
	var last model.InventoryLog
	err := c.db.Where("supply_id = ?", supplyID).Order("date DESC").First(&last).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("load last count of supply %d: %w", supplyID, err)
	}
	return int(now.Sub(last.Date).Hours() / 24), true, nil
}

// StaleSupplies lists supplies not counted for staleAfterDays or more,
// including those never counted. Enforcing that a count batch covers them is a
// caller-side policy; this is only the signal.
func (c *Counter) StaleSupplies(now time.Time) ([]model.Supply, error) {
	var supplies []model.Supply
	if err := c.db.Find(&supplies).Error; err != nil {
		return nil, fmt.Errorf("load supplies: %w", err)
	}

	var stale []model.Supply
	for _, s := range supplies {
		days, counted, err := c.DaysSinceLastCount(s.ID, now)
		if err != nil {
			return nil, err
		}
		if !counted || days >= staleAfterDays {
			stale = append(stale, s)
		}
	}
	return stale, nil
}

// DueForCounting lists supplies whose ABC class is scheduled to be counted on
// the given date. An empty schedule for a class means it is counted every day.
func (c *Counter) DueForCounting(date time.Time, settings model.ReplenishmentSettings) ([]model.Supply, error) {
	var supplies []model.Supply
	if err := c.db.Find(&supplies).Error; err != nil {
		return nil, fmt.Errorf("load supplies: %w", err)
	}

	weekday := date.Weekday().String()
	schedules := map[model.ABCClass]string{
		model.ClassA: settings.ClassASchedule,
		model.ClassB: settings.ClassBSchedule,
		model.ClassC: settings.ClassCSchedule,
	}

	var due []model.Supply
	for _, s := range supplies {
		if scheduledOn(schedules[s.ABCClassification], weekday) {
			due = append(due, s)
		}
	}
	return due, nil
}

func scheduledOn(schedule, weekday string) bool {
	if strings.TrimSpace(schedule) == "" {
		return true
	}
	for _, day := range strings.Split(schedule, ",") {
		if strings.EqualFold(strings.TrimSpace(day), weekday) {
			return true
		}
	}
	return false
}

// ProducedToday returns the ids of supplies with a ledger record on the given
// day showing stock entering, i.e. already produced or received that day.
func (c *Counter) ProducedToday(date time.Time) (map[uint]bool, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var logs []model.InventoryLog
	err := c.db.Where("date >= ? AND date < ? AND entries > 0", dayStart, dayEnd).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("load same-day ledger records: %w", err)
	}

	produced := make(map[uint]bool, len(logs))
	for _, log := range logs {
		produced[log.SupplyID] = true
	}
	return produced, nil
}
