// Package units converts observed quantities between the base units a supply's
// stock is denominated in (kg, gr, lt, ml, pz) and between piece counts and
// their weight equivalent via a per-supply average unit weight.
package units

import (
	"fmt"
	"math"

	"pantry-service/internal/model"
)

// ConversionError reports an unsupported unit pair. Unsupported pairs fail
// loudly instead of degrading to identity, which would silently mis-report
// stock whenever the units differ.
type ConversionError struct {
	From model.Unit
	To   model.Unit
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("no conversion from %q to %q", e.From, e.To)
}

// Convert converts quantity from one base unit to another. Equal units are the
// identity; g<->kg and ml<->lt convert exactly by a factor of 1000; any other
// pair returns a ConversionError. Sub-unit to super-unit goes through division
// so the factor stays exact.
func Convert(quantity float64, from, to model.Unit) (float64, error) {
	if from == to {
		return quantity, nil
	}
	switch {
	case from == model.UnitGram && to == model.UnitKilogram,
		from == model.UnitMillilit && to == model.UnitLiter:
		return quantity / 1000, nil
	case from == model.UnitKilogram && to == model.UnitGram,
		from == model.UnitLiter && to == model.UnitMillilit:
		return quantity * 1000, nil
	}
	return 0, &ConversionError{From: from, To: to}
}

// PiecesFromWeight converts an observed weight in grams to a piece count for a
// piece-denominated supply. The division floors, so this direction is lossy:
// 95g at 20g/piece counts as 4 pieces, not 4.75.
func PiecesFromWeight(grams, averageWeight float64) (float64, error) {
	if averageWeight <= 0 {
		return 0, fmt.Errorf("average weight must be positive, got %v", averageWeight)
	}
	return math.Floor(grams / averageWeight), nil
}

// StockFromPieces converts an observed piece count to the stock units of a
// mass- or volume-denominated supply: pieces times averageWeight gives grams,
// scaled down by 1000 for kg and lt base units.
func StockFromPieces(pieces, averageWeight float64, base model.Unit) (float64, error) {
	if averageWeight <= 0 {
		return 0, fmt.Errorf("average weight must be positive, got %v", averageWeight)
	}
	grams := pieces * averageWeight
	switch base {
	case model.UnitGram, model.UnitMillilit:
		return grams, nil
	case model.UnitKilogram, model.UnitLiter:
		return grams / 1000, nil
	}
	return 0, &ConversionError{From: model.UnitPiece, To: base}
}
