package domain

import (
	"fmt"
	"time"
)

// LevainStatus tracks a starter build from plan to use.
type LevainStatus int

const (
	LevainPlanned LevainStatus = iota
	LevainBuilding
	LevainReady
	LevainUsed
)

// String returns a human-readable levain status.
func (s LevainStatus) String() string {
	switch s {
	case LevainPlanned:
		return "planned"
	case LevainBuilding:
		return "building"
	case LevainReady:
		return "ready"
	case LevainUsed:
		return "used"
	default:
		return "unknown"
	}
}

// ParseLevainStatus is the inverse of LevainStatus.String.
func ParseLevainStatus(s string) (LevainStatus, error) {
	switch s {
	case "planned":
		return LevainPlanned, nil
	case "building":
		return LevainBuilding, nil
	case "ready":
		return LevainReady, nil
	case "used":
		return LevainUsed, nil
	default:
		return 0, fmt.Errorf("unknown levain status %q", s)
	}
}

// LevainBuild is a planned or completed starter build feeding one bake.
type LevainBuild struct {
	ID             string       `json:"id"`
	BakeID         string       `json:"bakeId,omitempty"` // at most one bake
	Status         LevainStatus `json:"-"`
	StartedAt      time.Time    `json:"startedAt"`
	ReadyAt        *time.Time   `json:"readyAt,omitempty"`
	HydrationPct   float64      `json:"hydrationPercent"`
	InoculationPct float64      `json:"inoculationPercent"`
	FlourMix       string       `json:"flourMix,omitempty"`
	Temp           float64      `json:"temp,omitempty"` // °F
	ReadySignals   []string     `json:"readySignals,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}
