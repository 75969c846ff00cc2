package formula

import "github.com/hammamikhairi/proofbox/internal/domain"

// Defaults returns the built-in formula set seeded on first run. Tuned
// for hot-climate baking: reduced levain percentages and shorter bulk
// times than the classic country-loaf ratios.
func Defaults() []*domain.Formula {
	return []*domain.Formula{
		{
			ID:           "tampa-country-levain",
			Name:         "Tampa Country Levain 78%",
			Complexity:   "Advanced",
			TotalDoughG:  942,
			HydrationPct: 78,
			SaltPct:      2.1,
			LevainPct:    23.4,
			FlourComposition: map[string]float64{
				"bread flour": 80,
				"whole wheat": 15,
				"rye":         5,
			},
			Notes:   "Optimized for Tampa heat - reduced levain percentage, shorter bulk time",
			Version: 1,
		},
		{
			ID:           "high-extraction-tampa",
			Name:         "High-Extraction Tampa Sourdough",
			Complexity:   "Expert",
			TotalDoughG:  1200,
			HydrationPct: 82,
			SaltPct:      2.0,
			LevainPct:    20,
			FlourComposition: map[string]float64{
				"high extraction": 40,
				"bread flour":     45,
				"whole wheat":     10,
				"rye":             5,
			},
			Notes:   "For experienced bakers - handle carefully in humidity",
			Version: 1,
		},
	}
}
