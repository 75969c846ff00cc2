// Package domain defines the core types and interfaces for the bake tracker.
// All other packages depend on domain; domain depends on nothing.
package domain

// Formula is a named dough recipe expressed in baker's percentages:
// every ingredient is a percent of total flour weight (flour = 100%).
type Formula struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Complexity   string  `json:"complexity,omitempty"` // "Beginner", "Advanced", "Expert", ""
	TotalDoughG  float64 `json:"totalDoughG"`
	HydrationPct float64 `json:"hydrationPercent"`
	SaltPct      float64 `json:"saltPercent"`
	LevainPct    float64 `json:"levainPercent"`

	// LevainHydrationPct selects the calculation model for this formula.
	// nil means the simplified model: levain is informational, carved out
	// of the flour/water split. Non-nil means the full model: the levain
	// is a tracked pre-ferment whose flour and water are subtracted from
	// the final mix. A formula never switches models.
	LevainHydrationPct *float64 `json:"levainHydrationPercent,omitempty"`

	// FlourComposition maps flour type to percent of total flour.
	// Percentages may miss 100 by a point or two from rounding.
	FlourComposition map[string]float64 `json:"flourComposition,omitempty"`

	Notes   string `json:"notes,omitempty"`
	Version int    `json:"version,omitempty"`
}

// FormulaSummary is a lightweight view of a formula for listing.
type FormulaSummary struct {
	ID           string
	Name         string
	Complexity   string
	TotalDoughG  float64
	HydrationPct float64
}

// Weights is the gram breakdown derived from a formula. Under the full
// model Flour and Water are the final-mix amounts with the levain's
// contribution already subtracted.
type Weights struct {
	Flour  int `json:"flour"`
	Water  int `json:"water"`
	Salt   int `json:"salt"`
	Levain int `json:"levain"`
}
