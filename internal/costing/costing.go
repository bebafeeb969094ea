// Package costing materializes the cost_per_unit of every supply. Purchase
// supplies derive cost from package economics; production supplies derive cost
// recursively from their bill-of-materials children. Recomputation always
// starts from the persisted edge set, so it is idempotent and order-independent
// with respect to concurrent edge edits.
package costing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"pantry-service/internal/model"
)

// Engine recomputes and propagates supply unit costs.
type Engine struct {
	db *gorm.DB
}

// NewEngine returns an Engine bound to the given database handle.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// UnitCost computes the unit cost of a supply from current state without
// persisting anything. Guards: a non-positive quantity per package or yield
// yields a zero cost, never a division error.
func (e *Engine) UnitCost(supply *model.Supply) (decimal.Decimal, error) {
	if supply.AcquisitionMode == model.AcquisitionPurchase {
		if supply.QuantityPerPackage <= 0 {
			return decimal.Zero, nil
		}
		return supply.PackageCost.Div(decimal.NewFromFloat(supply.QuantityPerPackage)), nil
	}

	if supply.YieldQuantity <= 0 {
		return decimal.Zero, nil
	}

	var edges []model.SupplyIngredient
	if err := e.db.Where("parent_supply_id = ?", supply.ID).Find(&edges).Error; err != nil {
		return decimal.Zero, fmt.Errorf("load ingredients of supply %d: %w", supply.ID, err)
	}

	total := decimal.Zero
	for _, edge := range edges {
		var child model.Supply
		if err := e.db.First(&child, edge.ChildSupplyID).Error; err != nil {
			return decimal.Zero, fmt.Errorf("load ingredient supply %d: %w", edge.ChildSupplyID, err)
		}
		// Children contribute their currently materialized cost; they are not
		// recomputed in the same pass.
		total = total.Add(child.CostPerUnit.Mul(decimal.NewFromFloat(edge.Quantity)))
	}
	return total.Div(decimal.NewFromFloat(supply.YieldQuantity)), nil
}

// Recompute rematerializes the cost of one supply and then propagates the
// change transitively up every parent chain, in topological order, so that a
// leaf cost change is reflected by every ancestor without manual re-triggering.
func (e *Engine) Recompute(supplyID uint) error {
	order, err := e.ancestorsTopological(supplyID)
	if err != nil {
		return err
	}
	for _, id := range order {
		var supply model.Supply
		if err := e.db.First(&supply, id).Error; err != nil {
			return fmt.Errorf("load supply %d: %w", id, err)
		}
		cost, err := e.UnitCost(&supply)
		if err != nil {
			return err
		}
		if err := e.db.Model(&model.Supply{}).Where("id = ?", id).
			Update("cost_per_unit", cost).Error; err != nil {
			return fmt.Errorf("store cost of supply %d: %w", id, err)
		}
	}
	return nil
}

// WouldCreateCycle reports whether inserting the edge parent->child would make
// the BOM graph cyclic, i.e. whether parent is already reachable from child
// through existing edges. Self-edges are always cycles.
func (e *Engine) WouldCreateCycle(parentID, childID uint) (bool, error) {
	if parentID == childID {
		return true, nil
	}
	visited := map[uint]bool{}
	frontier := []uint{childID}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		var edges []model.SupplyIngredient
		if err := e.db.Where("parent_supply_id = ?", id).Find(&edges).Error; err != nil {
			return false, fmt.Errorf("load ingredients of supply %d: %w", id, err)
		}
		for _, edge := range edges {
			if edge.ChildSupplyID == parentID {
				return true, nil
			}
			frontier = append(frontier, edge.ChildSupplyID)
		}
	}
	return false, nil
}

// ancestorsTopological returns supplyID followed by every supply that directly
// or transitively lists it as an ingredient, ordered so that each supply comes
// after all of its affected children. The BOM graph is acyclic (enforced at
// edge insertion), so the ordering always resolves.
func (e *Engine) ancestorsTopological(supplyID uint) ([]uint, error) {
	// Collect the affected set by walking the reverse adjacency (child->parents).
	affected := map[uint]bool{supplyID: true}
	frontier := []uint{supplyID}
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]

		var edges []model.SupplyIngredient
		if err := e.db.Where("child_supply_id = ?", id).Find(&edges).Error; err != nil {
			return nil, fmt.Errorf("load parents of supply %d: %w", id, err)
		}
		for _, edge := range edges {
			if !affected[edge.ParentSupplyID] {
				affected[edge.ParentSupplyID] = true
				frontier = append(frontier, edge.ParentSupplyID)
			}
		}
	}

	// Count, for each affected supply, how many of its children are also
	// affected; those children must be recomputed first.
	pending := map[uint]int{}
	parentsOf := map[uint][]uint{}
	for id := range affected {
		var edges []model.SupplyIngredient
		if err := e.db.Where("parent_supply_id = ?", id).Find(&edges).Error; err != nil {
			return nil, fmt.Errorf("load ingredients of supply %d: %w", id, err)
		}
		for _, edge := range edges {
			if affected[edge.ChildSupplyID] {
				pending[id]++
				parentsOf[edge.ChildSupplyID] = append(parentsOf[edge.ChildSupplyID], id)
			}
		}
	}

	order := make([]uint, 0, len(affected))
	ready := []uint{}
	for id := range affected {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, parent := range parentsOf[id] {
			pending[parent]--
			if pending[parent] == 0 {
				ready = append(ready, parent)
			}
		}
	}
	if len(order) != len(affected) {
		return nil, fmt.Errorf("BOM graph around supply %d contains a cycle", supplyID)
	}
	return order, nil
}
