package stock

import (
	"errors"
	"testing"
	"time"

	"pantry-service/internal/model"
)

func TestSubmitCount_CommitsBatch(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)

	cheese := createSupply(t, db, model.Supply{
		Name:         "Mozzarella",
		Unit:         model.UnitKilogram,
		CurrentStock: 12,
	})
	oil := createSupply(t, db, model.Supply{
		Name:         "Olive oil",
		Unit:         model.UnitLiter,
		CurrentStock: 3,
	})

	result, err := counter.SubmitCount(map[uint]*Observation{
		cheese.ID: {Value: 5, Unit: model.UnitKilogram},
		oil.ID:    {Value: 2500, Unit: model.UnitMillilit},
	}, time.Now(), 1, false)
	if err != nil {
		t.Fatalf("SubmitCount: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}

	if got := currentStock(t, db, cheese.ID); got != 5 {
		t.Fatalf("expected cheese stock 5, got %v", got)
	}
	// 2500ml observed for a liter-denominated supply.
	if got := currentStock(t, db, oil.ID); got != 2.5 {
		t.Fatalf("expected oil stock 2.5, got %v", got)
	}
}

func TestSubmitCount_NilObservationKeepsStock(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)

	s := createSupply(t, db, model.Supply{
		Name:         "Yeast",
		Unit:         model.UnitGram,
		CurrentStock: 140,
	})

	result, err := counter.SubmitCount(map[uint]*Observation{
		s.ID: nil,
	}, time.Now(), 1, false)
	if err != nil {
		t.Fatalf("SubmitCount: %v", err)
	}
	record := result.Records[0]
	if record.InitialStock != 140 || record.FinalCount != 140 {
		t.Fatalf("expected no-change record at 140, got initial %v final %v",
			record.InitialStock, record.FinalCount)
	}
	if record.Entries != 0 || record.Exits != 0 {
		t.Fatalf("expected zero entries and exits, got %v/%v", record.Entries, record.Exits)
	}
}

func TestSubmitCount_SmartPieceConversion(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)

	avg := 20.0
	s := createSupply(t, db, model.Supply{
		Name:          "Meatballs",
		Unit:          model.UnitPiece,
		CurrentStock:  10,
		AverageWeight: &avg,
	})

	// 95g observed at 20g/piece floors to 4 pieces.
	_, err := counter.SubmitCount(map[uint]*Observation{
		s.ID: {Value: 95, Unit: model.UnitGram},
	}, time.Now(), 1, false)
	if err != nil {
		t.Fatalf("SubmitCount: %v", err)
	}
	if got := currentStock(t, db, s.ID); got != 4 {
		t.Fatalf("expected 4 pieces, got %v", got)
	}
}

func TestSubmitCount_PiecesForWeightSupply(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)

	avg := 250.0
	s := createSupply(t, db, model.Supply{
		Name:          "Butter",
		Unit:          model.UnitKilogram,
		CurrentStock:  2,
		AverageWeight: &avg,
	})

	// 4 packs of 250g observed for a kg supply.
	_, err := counter.SubmitCount(map[uint]*Observation{
		s.ID: {Value: 4, Unit: model.UnitPiece},
	}, time.Now(), 1, false)
	if err != nil {
		t.Fatalf("SubmitCount: %v", err)
	}
	if got := currentStock(t, db, s.ID); got != 1 {
		t.Fatalf("expected 1 kg, got %v", got)
	}
}

func TestSubmitCount_DiscrepancySoftBlock(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)

	ok := createSupply(t, db, model.Supply{
		Name:         "Salt",
		Unit:         model.UnitKilogram,
		CurrentStock: 5,
	})
	suspicious := createSupply(t, db, model.Supply{
		Name:         "Flour",
		Unit:         model.UnitKilogram,
		CurrentStock: 100,
	})

	observations := map[uint]*Observation{
		ok.ID:         {Value: 4, Unit: model.UnitKilogram},
		suspicious.ID: {Value: 10, Unit: model.UnitKilogram},
	}

	// Threshold is 20; the 90kg swing blocks the whole batch.
	_, err := counter.SubmitCount(observations, time.Now(), 1, false)
	var discrepancy *DiscrepancyError
	if !errors.As(err, &discrepancy) {
		t.Fatalf("expected DiscrepancyError, got %v", err)
	}
	if len(discrepancy.SupplyIDs) != 1 || discrepancy.SupplyIDs[0] != suspicious.ID {
		t.Fatalf("expected offending supply %d, got %v", suspicious.ID, discrepancy.SupplyIDs)
	}

	// Nothing was written: all-or-nothing.
	if got := currentStock(t, db, ok.ID); got != 5 {
		t.Fatalf("expected salt untouched at 5, got %v", got)
	}
	var count int64
	db.Model(&model.InventoryLog{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no ledger records, got %d", count)
	}

	// Force commits the identical batch.
	result, err := counter.SubmitCount(observations, time.Now(), 1, true)
	if err != nil {
		t.Fatalf("SubmitCount with force: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result.Records))
	}
	if got := currentStock(t, db, suspicious.ID); got != 10 {
		t.Fatalf("expected flour stock 10, got %v", got)
	}
}

func TestDaysSinceLastCount(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)
	ledger := NewLedger(db)

	s := createSupply(t, db, model.Supply{Name: "Capers", Unit: model.UnitGram})

	now := time.Now()
	if _, counted, err := counter.DaysSinceLastCount(s.ID, now); err != nil || counted {
		t.Fatalf("expected never counted, got counted=%v err=%v", counted, err)
	}

	threeDaysAgo := now.AddDate(0, 0, -3)
	if _, err := ledger.applyAt(db, s.ID, 50, threeDaysAgo, 1, ""); err != nil {
		t.Fatalf("applyAt: %v", err)
	}

	days, counted, err := counter.DaysSinceLastCount(s.ID, now)
	if err != nil {
		t.Fatalf("DaysSinceLastCount: %v", err)
	}
	if !counted || days != 3 {
		t.Fatalf("expected 3 days since last count, got %d (counted=%v)", days, counted)
	}
}

func TestStaleSupplies(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)
	ledger := NewLedger(db)

	fresh := createSupply(t, db, model.Supply{Name: "Fresh", Unit: model.UnitKilogram})
	stale := createSupply(t, db, model.Supply{Name: "Stale", Unit: model.UnitKilogram})
	never := createSupply(t, db, model.Supply{Name: "Never", Unit: model.UnitKilogram})

	now := time.Now()
	if _, err := ledger.applyAt(db, fresh.ID, 1, now.AddDate(0, 0, -1), 1, ""); err != nil {
		t.Fatalf("applyAt(fresh): %v", err)
	}
	if _, err := ledger.applyAt(db, stale.ID, 1, now.AddDate(0, 0, -4), 1, ""); err != nil {
		t.Fatalf("applyAt(stale): %v", err)
	}

	got, err := counter.StaleSupplies(now)
	if err != nil {
		t.Fatalf("StaleSupplies: %v", err)
	}
	ids := map[uint]bool{}
	for _, s := range got {
		ids[s.ID] = true
	}
	if ids[fresh.ID] {
		t.Fatal("fresh supply reported as stale")
	}
	if !ids[stale.ID] || !ids[never.ID] {
		t.Fatalf("expected stale and never-counted supplies, got %v", ids)
	}
}

func TestDueForCounting_Schedules(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)

	a := createSupply(t, db, model.Supply{Name: "A item", Unit: model.UnitKilogram, ABCClassification: model.ClassA})
	b := createSupply(t, db, model.Supply{Name: "B item", Unit: model.UnitKilogram, ABCClassification: model.ClassB})

	// 2026-08-24 is a Monday.
	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	settings := model.ReplenishmentSettings{
		ClassASchedule: "", // every day
		ClassBSchedule: "Tuesday,Friday",
	}

	due, err := counter.DueForCounting(monday, settings)
	if err != nil {
		t.Fatalf("DueForCounting: %v", err)
	}
	ids := map[uint]bool{}
	for _, s := range due {
		ids[s.ID] = true
	}
	if !ids[a.ID] {
		t.Fatal("class A with empty schedule should be due every day")
	}
	if ids[b.ID] {
		t.Fatal("class B should not be due on Monday")
	}
}

func TestProducedToday(t *testing.T) {
	db := testDB(t)
	counter := NewCounter(db)
	ledger := NewLedger(db)

	made := createSupply(t, db, model.Supply{Name: "Dough", Unit: model.UnitKilogram, AcquisitionMode: model.AcquisitionProduction})
	used := createSupply(t, db, model.Supply{Name: "Sauce", Unit: model.UnitLiter, AcquisitionMode: model.AcquisitionProduction, CurrentStock: 5})

	now := time.Now()
	// Stock entering today marks the supply as produced.
	if _, err := ledger.applyAt(db, made.ID, 8, now, 1, ""); err != nil {
		t.Fatalf("applyAt(made): %v", err)
	}
	// Stock leaving does not.
	if _, err := ledger.applyAt(db, used.ID, 2, now, 1, ""); err != nil {
		t.Fatalf("applyAt(used): %v", err)
	}

	produced, err := counter.ProducedToday(now)
	if err != nil {
		t.Fatalf("ProducedToday: %v", err)
	}
	if !produced[made.ID] {
		t.Fatal("expected supply with entries today to be marked produced")
	}
	if produced[used.ID] {
		t.Fatal("supply with only exits today must not be marked produced")
	}
}
