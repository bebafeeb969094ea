// Package planner derives purchase and production checklists from a loaded
// supply catalog snapshot. It never mutates anything: re-running over the same
// snapshot always yields the same lists. Settings are passed in by value so
// runs are deterministic and testable in isolation.
package planner

import "pantry-service/internal/model"

// PurchaseItem is one line of the purchase shortlist.
type PurchaseItem struct {
	Supply      model.Supply `json:"supply"`
	MinStock    float64      `json:"min_stock"`
	TargetStock float64      `json:"target_stock"`
	Missing     float64      `json:"missing"`
}

// ProductionItem is one line of the production shortlist.
type ProductionItem struct {
	Supply      model.Supply `json:"supply"`
	TargetStock float64      `json:"target_stock"`
	Missing     float64      `json:"missing"`
}

// PurchaseShortlist lists supplies whose stock has reached their minimum
// threshold, with the settings default standing in for an unset min_stock.
// The target is min_stock times the purchase target multiplier.
func PurchaseShortlist(supplies []model.Supply, settings model.ReplenishmentSettings) []PurchaseItem {
	items := []PurchaseItem{}
	for _, s := range supplies {
		minStock := s.MinStock
		if minStock <= 0 {
			minStock = settings.DefaultMinStock
		}
		if s.CurrentStock > minStock {
			continue
		}
		target := minStock * settings.PurchaseTargetMultiplier
		items = append(items, PurchaseItem{
			Supply:      s,
			MinStock:    minStock,
			TargetStock: target,
			Missing:     target - s.CurrentStock,
		})
	}
	return items
}

// ProductionShortlist lists production supplies whose stock has fallen below
// min_stock times the buffer multiplier, skipping anything already produced
// today (a same-day ledger record with entries > 0).
func ProductionShortlist(supplies []model.Supply, settings model.ReplenishmentSettings, producedToday map[uint]bool) []ProductionItem {
	items := []ProductionItem{}
	for _, s := range supplies {
		if s.AcquisitionMode != model.AcquisitionProduction {
			continue
		}
		if producedToday[s.ID] {
			continue
		}
		target := s.MinStock * settings.BufferMultiplier
		if s.CurrentStock >= target {
			continue
		}
		items = append(items, ProductionItem{
			Supply:      s,
			TargetStock: target,
			Missing:     target - s.CurrentStock,
		})
	}
	return items
}
