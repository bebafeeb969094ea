package planner

import (
	"testing"

	"pantry-service/internal/model"
)

var settings = model.ReplenishmentSettings{
	BufferMultiplier:         2,
	PurchaseTargetMultiplier: 2,
	DefaultMinStock:          1,
}

func TestPurchaseShortlist(t *testing.T) {
	supplies := []model.Supply{
		{ID: 1, Name: "Flour", MinStock: 10, CurrentStock: 3},   // below min
		{ID: 2, Name: "Salt", MinStock: 5, CurrentStock: 5},     // exactly at min
		{ID: 3, Name: "Oil", MinStock: 5, CurrentStock: 20},     // plenty
		{ID: 4, Name: "Capers", MinStock: 0, CurrentStock: 0.5}, // falls back to default min
	}

	items := PurchaseShortlist(supplies, settings)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	byID := map[uint]PurchaseItem{}
	for _, item := range items {
		byID[item.Supply.ID] = item
	}

	flour := byID[1]
	if flour.TargetStock != 20 || flour.Missing != 17 {
		t.Fatalf("flour: expected target 20 missing 17, got %v and %v", flour.TargetStock, flour.Missing)
	}
	if _, ok := byID[2]; !ok {
		t.Fatal("supply exactly at min stock must be listed")
	}
	if _, ok := byID[3]; ok {
		t.Fatal("well-stocked supply must not be listed")
	}
	capers := byID[4]
	if capers.MinStock != 1 {
		t.Fatalf("capers: expected default min stock 1, got %v", capers.MinStock)
	}
}

func TestProductionShortlist(t *testing.T) {
	supplies := []model.Supply{
		{ID: 1, Name: "Dough", AcquisitionMode: model.AcquisitionProduction, MinStock: 5, CurrentStock: 4},
		{ID: 2, Name: "Sauce", AcquisitionMode: model.AcquisitionProduction, MinStock: 5, CurrentStock: 12},
		{ID: 3, Name: "Stock", AcquisitionMode: model.AcquisitionProduction, MinStock: 5, CurrentStock: 1},
		{ID: 4, Name: "Flour", AcquisitionMode: model.AcquisitionPurchase, MinStock: 5, CurrentStock: 0},
	}
	producedToday := map[uint]bool{3: true}

	items := ProductionShortlist(supplies, settings, producedToday)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	dough := items[0]
	if dough.Supply.ID != 1 {
		t.Fatalf("expected dough, got supply %d", dough.Supply.ID)
	}
	if dough.TargetStock != 10 || dough.Missing != 6 {
		t.Fatalf("dough: expected target 10 missing 6, got %v and %v", dough.TargetStock, dough.Missing)
	}
}

func TestShortlists_PureDerivation(t *testing.T) {
	supplies := []model.Supply{
		{ID: 1, Name: "Dough", AcquisitionMode: model.AcquisitionProduction, MinStock: 5, CurrentStock: 4},
		{ID: 2, Name: "Flour", AcquisitionMode: model.AcquisitionPurchase, MinStock: 10, CurrentStock: 3},
	}

	first := PurchaseShortlist(supplies, settings)
	second := PurchaseShortlist(supplies, settings)
	if len(first) != len(second) {
		t.Fatalf("purchase shortlist not stable: %d then %d items", len(first), len(second))
	}

	prodFirst := ProductionShortlist(supplies, settings, nil)
	prodSecond := ProductionShortlist(supplies, settings, nil)
	if len(prodFirst) != len(prodSecond) {
		t.Fatalf("production shortlist not stable: %d then %d items", len(prodFirst), len(prodSecond))
	}
	for i := range first {
		if first[i].Missing != second[i].Missing {
			t.Fatalf("purchase shortlist mutated between runs at item %d", i)
		}
	}
}
