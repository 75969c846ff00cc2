package formula

import (
	"errors"
	"math"
	"testing"

	"github.com/hammamikhairi/proofbox/internal/domain"
)

func TestComputeSimple(t *testing.T) {
	tests := []struct {
		name      string
		total     float64
		hydration float64
		salt      float64
		levain    float64
		want      domain.Weights
	}{
		{
			// 900 / 1.772 = 507.9 -> 508; the rest derive from 508.
			name:  "900g country loaf",
			total: 900, hydration: 75, salt: 2.2, levain: 20,
			want: domain.Weights{Flour: 508, Water: 381, Salt: 11, Levain: 102},
		},
		{
			name:  "tampa country levain",
			total: 942, hydration: 78, salt: 2.1, levain: 23.4,
			want: domain.Weights{Flour: 523, Water: 408, Salt: 11, Levain: 122},
		},
		{
			name:  "zero percentages",
			total: 500, hydration: 0, salt: 0, levain: 0,
			want: domain.Weights{Flour: 500, Water: 0, Salt: 0, Levain: 0},
		},
		{
			name:  "degenerate rounds toward zero",
			total: 1, hydration: 75, salt: 2, levain: 20,
			want: domain.Weights{Flour: 1, Water: 1, Salt: 0, Levain: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeSimple(tt.total, tt.hydration, tt.salt, tt.levain)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Flour + water + salt must reconstruct the total within rounding
// tolerance (three independent roundings, so +/-3g).
func TestComputeSimpleMassBalance(t *testing.T) {
	cases := []struct {
		total, hydration, salt float64
	}{
		{900, 75, 2.2},
		{942, 78, 2.1},
		{1200, 82, 2.0},
		{650, 68, 1.8},
		{333, 71.5, 2.3},
	}

	for _, c := range cases {
		w, err := ComputeSimple(c.total, c.hydration, c.salt, 20)
		if err != nil {
			t.Fatalf("compute(%v): %v", c, err)
		}
		if w.Flour < 0 || w.Water < 0 || w.Salt < 0 || w.Levain < 0 {
			t.Fatalf("negative weight in %+v", w)
		}
		sum := float64(w.Flour + w.Water + w.Salt)
		if math.Abs(sum-c.total) > 3 {
			t.Fatalf("total %.0fg reconstructed as %.0fg (drift > 3g)", c.total, sum)
		}
	}
}

func TestComputeFull(t *testing.T) {
	// 1000g at 70% hydration, 2% salt, 20% inoculation, 100% levain
	// hydration. totalFlour = 1000/1.72 = 581.40, levain = 200,
	// levainFlour = 100, levainWater = 100.
	w, err := ComputeFull(1000, 70, 2, 20, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.Levain != 200 {
		t.Fatalf("levain weight: got %d, want 200", w.Levain)
	}
	if w.Flour != 481 { // 581.40 - 100 = 481.40
		t.Fatalf("final flour: got %d, want 481", w.Flour)
	}
	if w.Water != 307 { // 406.98 - 100 = 306.98
		t.Fatalf("final water: got %d, want 307", w.Water)
	}
	if w.Salt != 12 { // 581.40 * 0.02 = 11.63
		t.Fatalf("salt: got %d, want 12", w.Salt)
	}
}

func TestComputeFullStiffLevain(t *testing.T) {
	// 50% levain hydration: levainFlour = 150/1.5 = 100, water = 50.
	w, err := ComputeFull(900, 75, 2, 16.67, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Levain != 150 {
		t.Fatalf("levain: got %d, want 150", w.Levain)
	}
	// totalFlour = 900/1.77 = 508.47; final flour = 408.44.
	if w.Flour != 408 {
		t.Fatalf("final flour: got %d, want 408", w.Flour)
	}
	// totalWater = 381.36; final water = 331.29.
	if w.Water != 331 {
		t.Fatalf("final water: got %d, want 331", w.Water)
	}
}

func TestComputeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name                          string
		total, hydration, salt, levain float64
	}{
		{"zero total", 0, 75, 2, 20},
		{"negative total", -100, 75, 2, 20},
		{"negative hydration", 900, -5, 2, 20},
		{"negative salt", 900, 75, -1, 20},
		{"negative levain", 900, 75, 2, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeSimple(tt.total, tt.hydration, tt.salt, tt.levain)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestForFormulaDispatch(t *testing.T) {
	simple := &domain.Formula{TotalDoughG: 900, HydrationPct: 75, SaltPct: 2.2, LevainPct: 20}
	got, err := ForFormula(simple)
	if err != nil {
		t.Fatalf("simple: %v", err)
	}
	if got.Flour != 508 {
		t.Fatalf("simple model not used: flour=%d", got.Flour)
	}

	lh := 100.0
	full := &domain.Formula{TotalDoughG: 1000, HydrationPct: 70, SaltPct: 2, LevainPct: 20, LevainHydrationPct: &lh}
	got, err = ForFormula(full)
	if err != nil {
		t.Fatalf("full: %v", err)
	}
	if got.Flour != 481 {
		t.Fatalf("full model not used: flour=%d", got.Flour)
	}

	_, err = ForFormula(&domain.Formula{TotalDoughG: -1})
	if !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected errors.As to find ValidationError in %v", err)
	}
}
