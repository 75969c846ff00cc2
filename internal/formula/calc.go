// Package formula provides the baker's-percentage weight calculator and
// formula source implementations.
package formula

import (
	"math"

	"github.com/hammamikhairi/proofbox/internal/domain"
)

// ComputeSimple converts percentages to gram weights under the
// simplified two-component model. The levain figure is informational:
// it is carved out of the flour/water split, not added on top, so it is
// not subtracted from flour or water.
//
//	flour  = round(total / (1 + hydration/100 + salt/100))
//	water  = round(flour * hydration/100)
//	salt   = round(flour * salt/100)
//	levain = round(flour * levain/100)
func ComputeSimple(totalDoughG, hydrationPct, saltPct, levainPct float64) (domain.Weights, error) {
	if err := checkInputs(totalDoughG, hydrationPct, saltPct, levainPct); err != nil {
		return domain.Weights{}, err
	}

	// Flour is rounded first; the other weights derive from the rounded
	// figure, matching how the amounts read off a scale.
	flour := float64(grams(totalDoughG / (1 + hydrationPct/100 + saltPct/100)))
	return domain.Weights{
		Flour:  int(flour),
		Water:  grams(flour * hydrationPct / 100),
		Salt:   grams(flour * saltPct / 100),
		Levain: grams(flour * levainPct / 100),
	}, nil
}

// ComputeFull converts percentages to gram weights under the full model,
// where the levain is a tracked pre-ferment contributing its own flour
// and water. Flour and Water in the result are the final-mix amounts
// with the levain's contribution subtracted; intermediates stay
// unrounded until the end.
func ComputeFull(totalDoughG, hydrationPct, saltPct, inoculationPct, levainHydrationPct float64) (domain.Weights, error) {
	if err := checkInputs(totalDoughG, hydrationPct, saltPct, inoculationPct); err != nil {
		return domain.Weights{}, err
	}
	if levainHydrationPct < 0 {
		return domain.Weights{}, domain.Invalidf("levain hydration must not be negative, got %.1f", levainHydrationPct)
	}

	hydration := hydrationPct / 100
	salt := saltPct / 100
	inoculation := inoculationPct / 100
	levainHydration := levainHydrationPct / 100

	totalFlour := totalDoughG / (1 + hydration + salt)
	levainWeight := totalDoughG * inoculation
	levainFlour := levainWeight / (1 + levainHydration)
	levainWater := levainFlour * levainHydration

	finalFlour := totalFlour - levainFlour
	finalWater := totalFlour*hydration - levainWater

	return domain.Weights{
		Flour:  grams(finalFlour),
		Water:  grams(finalWater),
		Salt:   grams(totalFlour * salt),
		Levain: grams(levainWeight),
	}, nil
}

// ForFormula dispatches on the formula's model: nil LevainHydrationPct
// means simplified, non-nil means full. This is the only place the
// choice is made, so one record can never mix models.
func ForFormula(f *domain.Formula) (domain.Weights, error) {
	if f.LevainHydrationPct == nil {
		return ComputeSimple(f.TotalDoughG, f.HydrationPct, f.SaltPct, f.LevainPct)
	}
	return ComputeFull(f.TotalDoughG, f.HydrationPct, f.SaltPct, f.LevainPct, *f.LevainHydrationPct)
}

func checkInputs(totalDoughG, hydrationPct, saltPct, levainPct float64) error {
	if totalDoughG <= 0 {
		return domain.Invalidf("total dough weight must be positive, got %.1fg", totalDoughG)
	}
	if hydrationPct < 0 || saltPct < 0 || levainPct < 0 {
		return domain.Invalidf("percentages must not be negative")
	}
	return nil
}

// grams rounds to the nearest whole gram, clamping tiny negative values
// (possible under the full model with extreme inoculation) to zero.
func grams(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Round(v))
}
