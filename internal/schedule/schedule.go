// Package schedule projects fermentation timing from a target bake time
// and the current ambient temperature.
package schedule

import "time"

// Base stage durations before temperature adjustment.
const (
	BaseBulk  = 4*time.Hour + 30*time.Minute
	BaseProof = 3 * time.Hour
)

// TempAdjustment returns the multiplicative timing factor for the given
// ambient temperature in °F. A discrete lookup, not a curve; edge
// values belong to the higher (faster) bracket.
func TempAdjustment(ambientF float64) float64 {
	switch {
	case ambientF >= 82:
		return 0.75 // 25% faster
	case ambientF >= 78:
		return 0.85 // 15% faster
	case ambientF >= 74:
		return 1.0
	default:
		return 1.15 // 15% slower for cooler kitchens
	}
}

// Plan is a back-calculated stage schedule for one bake.
type Plan struct {
	Adjustment float64
	Bulk       time.Duration
	Proof      time.Duration
	StartBulk  time.Time
	StartProof time.Time // also the end of bulk
	BakeAt     time.Time
}

// Project back-calculates recommended stage boundaries so that the
// final proof ends exactly at the target bake time.
func Project(target time.Time, ambientF float64) Plan {
	adj := TempAdjustment(ambientF)
	bulk := time.Duration(float64(BaseBulk) * adj)
	proof := time.Duration(float64(BaseProof) * adj)

	startProof := target.Add(-proof)
	return Plan{
		Adjustment: adj,
		Bulk:       bulk,
		Proof:      proof,
		StartBulk:  startProof.Add(-bulk),
		StartProof: startProof,
		BakeAt:     target,
	}
}

// Total is the combined adjusted bulk and proof duration.
func (p Plan) Total() time.Duration { return p.Bulk + p.Proof }
