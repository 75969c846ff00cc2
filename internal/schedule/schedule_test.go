package schedule

import (
	"testing"
	"time"
)

func TestTempAdjustmentBrackets(t *testing.T) {
	tests := []struct {
		temp float64
		want float64
	}{
		{90, 0.75},
		{83, 0.75},
		{82, 0.75}, // edge belongs to the faster bracket
		{81.9, 0.85},
		{78, 0.85},
		{77.9, 1.0},
		{74, 1.0},
		{73.9, 1.15},
		{60, 1.15},
	}

	for _, tt := range tests {
		if got := TempAdjustment(tt.temp); got != tt.want {
			t.Errorf("TempAdjustment(%.1f) = %.2f, want %.2f", tt.temp, got, tt.want)
		}
	}
}

func TestProjectHotKitchen(t *testing.T) {
	// 83°F -> 0.75x: bulk 3.375h, proof 2.25h, total 5.625h.
	target := time.Date(2025, 7, 12, 18, 0, 0, 0, time.UTC)
	p := Project(target, 83)

	if p.Adjustment != 0.75 {
		t.Fatalf("adjustment: got %.2f, want 0.75", p.Adjustment)
	}
	if want := 3*time.Hour + 22*time.Minute + 30*time.Second; p.Bulk != want {
		t.Fatalf("bulk: got %s, want %s", p.Bulk, want)
	}
	if want := 2*time.Hour + 15*time.Minute; p.Proof != want {
		t.Fatalf("proof: got %s, want %s", p.Proof, want)
	}
	if want := 5*time.Hour + 37*time.Minute + 30*time.Second; p.Total() != want {
		t.Fatalf("total: got %s, want %s", p.Total(), want)
	}

	if !p.BakeAt.Equal(target) {
		t.Fatalf("bake at: got %s", p.BakeAt)
	}
	if !p.StartProof.Equal(target.Add(-p.Proof)) {
		t.Fatalf("start proof: got %s", p.StartProof)
	}
	if !p.StartBulk.Equal(target.Add(-p.Total())) {
		t.Fatalf("start bulk: got %s", p.StartBulk)
	}
}

func TestProjectNormalKitchen(t *testing.T) {
	target := time.Date(2025, 1, 10, 19, 30, 0, 0, time.UTC)
	p := Project(target, 75)

	if p.Bulk != BaseBulk || p.Proof != BaseProof {
		t.Fatalf("1.0x plan should use base durations, got bulk=%s proof=%s", p.Bulk, p.Proof)
	}
	if !p.StartBulk.Equal(target.Add(-(BaseBulk + BaseProof))) {
		t.Fatalf("start bulk: got %s", p.StartBulk)
	}
}
