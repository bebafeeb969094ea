package units

import (
	"errors"
	"testing"

	"pantry-service/internal/model"
)

func TestConvert_SupportedPairs(t *testing.T) {
	cases := []struct {
		qty      float64
		from     model.Unit
		to       model.Unit
		expected float64
	}{
		{2500, model.UnitGram, model.UnitKilogram, 2.5},
		{2.5, model.UnitKilogram, model.UnitGram, 2500},
		{750, model.UnitMillilit, model.UnitLiter, 0.75},
		{0.75, model.UnitLiter, model.UnitMillilit, 750},
		{42, model.UnitKilogram, model.UnitKilogram, 42},
		{7, model.UnitPiece, model.UnitPiece, 7},
	}
	for _, tc := range cases {
		got, err := Convert(tc.qty, tc.from, tc.to)
		if err != nil {
			t.Fatalf("Convert(%v, %q, %q) error: %v", tc.qty, tc.from, tc.to, err)
		}
		if got != tc.expected {
			t.Fatalf("Convert(%v, %q, %q) expected %v, got %v", tc.qty, tc.from, tc.to, tc.expected, got)
		}
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	pairs := []struct {
		a, b model.Unit
	}{
		{model.UnitGram, model.UnitKilogram},
		{model.UnitMillilit, model.UnitLiter},
	}
	for _, p := range pairs {
		forward, err := Convert(1234, p.a, p.b)
		if err != nil {
			t.Fatalf("Convert(%q, %q) error: %v", p.a, p.b, err)
		}
		back, err := Convert(forward, p.b, p.a)
		if err != nil {
			t.Fatalf("Convert(%q, %q) error: %v", p.b, p.a, err)
		}
		if back != 1234 {
			t.Fatalf("round trip %q<->%q expected 1234, got %v", p.a, p.b, back)
		}
	}
}

func TestConvert_UnsupportedPairFailsLoudly(t *testing.T) {
	cases := []struct {
		from, to model.Unit
	}{
		{model.UnitGram, model.UnitLiter},
		{model.UnitKilogram, model.UnitMillilit},
		{model.UnitPiece, model.UnitKilogram},
		{model.UnitLiter, model.UnitGram},
	}
	for _, tc := range cases {
		_, err := Convert(1, tc.from, tc.to)
		if err == nil {
			t.Fatalf("Convert(%q, %q) expected error, got none", tc.from, tc.to)
		}
		var convErr *ConversionError
		if !errors.As(err, &convErr) {
			t.Fatalf("Convert(%q, %q) expected ConversionError, got %T", tc.from, tc.to, err)
		}
	}
}

func TestPiecesFromWeight_Floors(t *testing.T) {
	cases := []struct {
		grams, avgWeight, expected float64
	}{
		{95, 20, 4},
		{100, 20, 5},
		{19.9, 20, 0},
		{60, 20, 3},
	}
	for _, tc := range cases {
		got, err := PiecesFromWeight(tc.grams, tc.avgWeight)
		if err != nil {
			t.Fatalf("PiecesFromWeight(%v, %v) error: %v", tc.grams, tc.avgWeight, err)
		}
		if got != tc.expected {
			t.Fatalf("PiecesFromWeight(%v, %v) expected %v, got %v", tc.grams, tc.avgWeight, tc.expected, got)
		}
	}

	if _, err := PiecesFromWeight(100, 0); err == nil {
		t.Fatal("PiecesFromWeight with zero average weight expected error")
	}
}

func TestStockFromPieces(t *testing.T) {
	cases := []struct {
		pieces, avgWeight float64
		base              model.Unit
		expected          float64
	}{
		{4, 250, model.UnitGram, 1000},
		{4, 250, model.UnitKilogram, 1},
		{10, 330, model.UnitMillilit, 3300},
		{10, 330, model.UnitLiter, 3.3},
	}
	for _, tc := range cases {
		got, err := StockFromPieces(tc.pieces, tc.avgWeight, tc.base)
		if err != nil {
			t.Fatalf("StockFromPieces(%v, %v, %q) error: %v", tc.pieces, tc.avgWeight, tc.base, err)
		}
		if got != tc.expected {
			t.Fatalf("StockFromPieces(%v, %v, %q) expected %v, got %v", tc.pieces, tc.avgWeight, tc.base, tc.expected, got)
		}
	}

	if _, err := StockFromPieces(4, 250, model.UnitPiece); err == nil {
		t.Fatal("StockFromPieces to pz expected error")
	}
}
