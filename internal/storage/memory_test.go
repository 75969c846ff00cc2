package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

func newMemory(t *testing.T) *MemoryStore {
	t.Helper()
	return NewMemoryStore(logger.New(logger.LevelOff, io.Discard))
}

func sampleBake(id string) *domain.Bake {
	return &domain.Bake{
		ID:        id,
		Name:      "weekend loaf",
		FormulaID: "tampa-country-levain",
		Weights:   domain.Weights{Flour: 523, Water: 408, Salt: 11, Levain: 122},
		Status:    domain.BakeActive,
		Stage:     domain.StageBulkFermentation,
		StartTime: time.Date(2026, 7, 12, 8, 0, 0, 0, time.UTC),
		Logs: []domain.EnvironmentLog{
			{DoughTemp: 77, RisePct: 25},
		},
	}
}

func TestMemoryActiveBakeRoundTrip(t *testing.T) {
	s := newMemory(t)
	ctx := context.Background()

	got, err := s.ActiveBake(ctx)
	if err != nil || got != nil {
		t.Fatalf("empty slot: bake=%v err=%v", got, err)
	}

	b := sampleBake("b1")
	if err := s.SaveActive(ctx, b); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}
	got, err = s.ActiveBake(ctx)
	if err != nil || got == nil || got.ID != "b1" {
		t.Fatalf("ActiveBake: bake=%v err=%v", got, err)
	}

	if err := s.ClearActive(ctx); err != nil {
		t.Fatalf("ClearActive: %v", err)
	}
	if got, _ := s.ActiveBake(ctx); got != nil {
		t.Fatalf("slot not cleared: %v", got)
	}
}

// Mutating a bake after saving it, or a loaded copy, must not leak into
// the store's snapshot.
func TestMemoryClonesOnSaveAndLoad(t *testing.T) {
	s := newMemory(t)
	ctx := context.Background()

	b := sampleBake("b1")
	if err := s.SaveActive(ctx, b); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}
	b.Stage = domain.StageBaking
	b.Logs = append(b.Logs, domain.EnvironmentLog{DoughTemp: 80})

	got, _ := s.ActiveBake(ctx)
	if got.Stage != domain.StageBulkFermentation || len(got.Logs) != 1 {
		t.Fatalf("caller mutation leaked into store: %+v", got)
	}

	got.Logs[0].DoughTemp = 99
	again, _ := s.ActiveBake(ctx)
	if again.Logs[0].DoughTemp != 77 {
		t.Fatal("loaded copy aliases the stored bake")
	}
}

func TestMemoryHistoryReplacesByID(t *testing.T) {
	s := newMemory(t)
	ctx := context.Background()

	first := sampleBake("b1")
	first.Status = domain.BakeCompleted
	if err := s.AppendHistory(ctx, first); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := s.AppendHistory(ctx, sampleBake("b2")); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	// Re-archiving the same ID replaces, never duplicates.
	updated := sampleBake("b1")
	updated.Status = domain.BakeAbandoned
	if err := s.AppendHistory(ctx, updated); err != nil {
		t.Fatalf("AppendHistory replace: %v", err)
	}

	history, err := s.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].ID != "b1" || history[0].Status != domain.BakeAbandoned {
		t.Fatalf("entry not replaced: %+v", history[0])
	}
}

func TestMemorySettingsDefaultsUntilSaved(t *testing.T) {
	s := newMemory(t)
	ctx := context.Background()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *domain.DefaultSettings() {
		t.Fatalf("unsaved settings = %+v, want defaults", got)
	}

	got.Theme = "dark"
	got.DefaultAmbientTemp = 80
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, _ := s.Load(ctx)
	if reloaded.Theme != "dark" || reloaded.DefaultAmbientTemp != 80 {
		t.Fatalf("settings not persisted: %+v", reloaded)
	}
}

func TestMemoryLevain(t *testing.T) {
	s := newMemory(t)
	ctx := context.Background()

	if _, err := s.Levain(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing levain: got %v, want ErrNotFound", err)
	}

	lb := &domain.LevainBuild{
		ID:             "lv1",
		BakeID:         "b1",
		Status:         domain.LevainReady,
		HydrationPct:   100,
		InoculationPct: 20,
		FlourMix:       "50/50 bread and whole wheat",
	}
	if err := s.SaveLevain(ctx, lb); err != nil {
		t.Fatalf("SaveLevain: %v", err)
	}

	got, err := s.LevainForBake(ctx, "b1")
	if err != nil || got.ID != "lv1" {
		t.Fatalf("LevainForBake: lb=%v err=%v", got, err)
	}
	if _, err := s.LevainForBake(ctx, "other"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unattached bake: got %v, want ErrNotFound", err)
	}
}
