package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// BakeStatus tracks the lifecycle of a bake.
type BakeStatus int

const (
	BakeActive BakeStatus = iota
	BakeCompleted
	BakeAbandoned
)

// String returns a human-readable bake status.
func (s BakeStatus) String() string {
	switch s {
	case BakeActive:
		return "active"
	case BakeCompleted:
		return "completed"
	case BakeAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status as its string form, matching the
// persisted schema ("active", "completed", "abandoned").
func (s BakeStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the string form.
func (s *BakeStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseBakeStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseBakeStatus is the inverse of BakeStatus.String.
func ParseBakeStatus(s string) (BakeStatus, error) {
	switch s {
	case "active":
		return BakeActive, nil
	case "completed":
		return BakeCompleted, nil
	case "abandoned":
		return BakeAbandoned, nil
	default:
		return 0, fmt.Errorf("unknown bake status %q", s)
	}
}

// Stage is a fermentation stage of an active bake. Stages advance in a
// fixed order; advancing out of StageBaking completes the bake.
type Stage int

const (
	StageBulkFermentation Stage = iota
	StagePreShape
	StageFinalProof
	StageBaking
)

// String returns the display name of a stage.
func (s Stage) String() string {
	switch s {
	case StageBulkFermentation:
		return "Bulk Fermentation"
	case StagePreShape:
		return "Pre-shape"
	case StageFinalProof:
		return "Final Proof"
	case StageBaking:
		return "Baking"
	default:
		return "unknown"
	}
}

// Next returns the following stage. ok is false for StageBaking, the
// terminal stage.
func (s Stage) Next() (Stage, bool) {
	if s >= StageBaking {
		return s, false
	}
	return s + 1, true
}

// MarshalJSON encodes the stage as its display name.
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes the display name.
func (s *Stage) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStage(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseStage is the inverse of Stage.String.
func ParseStage(s string) (Stage, error) {
	switch s {
	case "Bulk Fermentation":
		return StageBulkFermentation, nil
	case "Pre-shape":
		return StagePreShape, nil
	case "Final Proof":
		return StageFinalProof, nil
	case "Baking":
		return StageBaking, nil
	default:
		return 0, fmt.Errorf("unknown stage %q", s)
	}
}

// Environment is the ambient snapshot captured when a bake starts.
type Environment struct {
	AmbientTemp float64 `json:"ambientTemp"` // °F
	Humidity    float64 `json:"humidity"`    // percent
	ACStatus    string  `json:"acStatus,omitempty"`
}

// EnvironmentLog is a timestamped reading attached to a bake.
// Logs are append-only; they are never edited or removed.
type EnvironmentLog struct {
	Timestamp   time.Time `json:"timestamp"`
	DoughTemp   float64   `json:"doughTemp"`
	AmbientTemp float64   `json:"ambientTemp"`
	Humidity    float64   `json:"humidity"`
	RisePct     int       `json:"risePercentage,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

// Bake is one fermentation-to-oven session. At most one bake is active
// at any time; completed and abandoned bakes live in history and are
// immutable.
type Bake struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	FormulaID   string     `json:"formulaId"`
	FormulaName string     `json:"formulaName,omitempty"`
	Weights     Weights    `json:"weights"` // computed snapshot, kept for display
	Status      BakeStatus `json:"status"`
	Stage       Stage      `json:"currentStage"`

	StartTime   time.Time   `json:"startTime"`
	TargetTime  time.Time   `json:"targetTime"`
	Environment Environment `json:"environment"`

	Logs []EnvironmentLog `json:"logs"`

	EndTime *time.Time `json:"endTime,omitempty"` // set iff status is terminal
	Rating  *int       `json:"rating,omitempty"`  // 1..5; nil when never rated
	Issues  []string   `json:"issues,omitempty"`
	Notes   string     `json:"notes,omitempty"`

	// Pause accounting. PausedFor accumulates finished pause intervals;
	// PausedAt marks an open one. Elapsed subtracts both, so resuming
	// continues from the frozen value instead of doubling the offset.
	PausedAt  *time.Time    `json:"pausedAt,omitempty"`
	PausedFor time.Duration `json:"pausedForNs,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy. Stores hand out clones so background
// readers never alias the lifecycle's mutable bake.
func (b *Bake) Clone() *Bake {
	if b == nil {
		return nil
	}
	c := *b
	c.Logs = append([]EnvironmentLog(nil), b.Logs...)
	c.Issues = append([]string(nil), b.Issues...)
	if b.EndTime != nil {
		t := *b.EndTime
		c.EndTime = &t
	}
	if b.Rating != nil {
		r := *b.Rating
		c.Rating = &r
	}
	if b.PausedAt != nil {
		t := *b.PausedAt
		c.PausedAt = &t
	}
	return &c
}

// Paused reports whether the elapsed timer is currently suspended.
func (b *Bake) Paused() bool { return b.PausedAt != nil }

// Elapsed returns the fermentation clock at the given instant: wall time
// since the start minus every paused interval. Pure read, never negative.
func (b *Bake) Elapsed(now time.Time) time.Duration {
	e := now.Sub(b.StartTime) - b.PausedFor
	if b.PausedAt != nil {
		e -= now.Sub(*b.PausedAt)
	}
	if e < 0 {
		e = 0
	}
	return e
}
