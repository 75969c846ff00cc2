package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/formula"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:", logger.New(logger.LevelOff, io.Discard))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteBakeRoundTrip(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	if b, err := s.ActiveBake(ctx); b != nil || err != nil {
		t.Fatalf("empty db: bake=%v err=%v", b, err)
	}

	start := time.Date(2026, 7, 12, 8, 0, 0, 0, time.UTC)
	paused := start.Add(2 * time.Hour)
	b := sampleBake("b1")
	b.TargetTime = start.Add(10 * time.Hour)
	b.Environment = domain.Environment{AmbientTemp: 83, Humidity: 72, ACStatus: "on"}
	b.PausedAt = &paused
	b.PausedFor = 15 * time.Minute
	b.Issues = []string{"sticky dough"}
	b.UpdatedAt = paused

	if err := s.SaveActive(ctx, b); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}

	got, err := s.ActiveBake(ctx)
	if err != nil {
		t.Fatalf("ActiveBake: %v", err)
	}
	if got.ID != "b1" || got.Stage != domain.StageBulkFermentation {
		t.Fatalf("got %+v", got)
	}
	if !got.StartTime.Equal(b.StartTime) || !got.TargetTime.Equal(b.TargetTime) {
		t.Fatalf("times: %v / %v", got.StartTime, got.TargetTime)
	}
	if got.PausedAt == nil || !got.PausedAt.Equal(paused) || got.PausedFor != 15*time.Minute {
		t.Fatalf("pause state: at=%v for=%v", got.PausedAt, got.PausedFor)
	}
	if got.Environment != b.Environment {
		t.Fatalf("environment = %+v", got.Environment)
	}
	if len(got.Logs) != 1 || got.Logs[0].DoughTemp != 77 {
		t.Fatalf("logs = %+v", got.Logs)
	}
	if got.Rating != nil {
		t.Fatalf("unset rating came back as %v", *got.Rating)
	}
}

func TestSQLiteArchiveAndClear(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	b := sampleBake("b1")
	if err := s.SaveActive(ctx, b); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}

	end := b.StartTime.Add(9 * time.Hour)
	rating := 4
	b.Status = domain.BakeCompleted
	b.Stage = domain.StageBaking
	b.EndTime = &end
	b.Rating = &rating
	if err := s.AppendHistory(ctx, b); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if err := s.ClearActive(ctx); err != nil {
		t.Fatalf("ClearActive: %v", err)
	}

	// The archive upsert replaced the active row, so clearing must not
	// touch the completed record.
	if got, _ := s.ActiveBake(ctx); got != nil {
		t.Fatalf("active after archive: %+v", got)
	}
	history, err := s.History(ctx)
	if err != nil || len(history) != 1 {
		t.Fatalf("history: %v err=%v", history, err)
	}
	got := history[0]
	if got.Status != domain.BakeCompleted || got.Rating == nil || *got.Rating != 4 {
		t.Fatalf("archived bake: %+v", got)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Fatalf("end time: %v", got.EndTime)
	}
}

func TestSQLiteFormulas(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	if err := s.Seed(ctx, formula.Defaults()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// Seeding again is a no-op, not an error.
	if err := s.Seed(ctx, formula.Defaults()); err != nil {
		t.Fatalf("re-Seed: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}

	f, err := s.Get(ctx, "tampa-country-levain")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if f.TotalDoughG != 942 || f.HydrationPct != 78 {
		t.Fatalf("formula = %+v", f)
	}
	if f.LevainHydrationPct != nil {
		t.Fatal("simplified formula gained a levain hydration")
	}
	if len(f.FlourComposition) == 0 {
		t.Fatal("flour composition lost")
	}

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing formula: got %v, want ErrNotFound", err)
	}

	lh := 100.0
	custom := &domain.Formula{
		ID:                 "my-custom",
		Name:               "my custom",
		TotalDoughG:        1000,
		HydrationPct:       70,
		SaltPct:            2,
		LevainPct:          20,
		LevainHydrationPct: &lh,
	}
	if err := s.Add(ctx, custom); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(ctx, custom); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate add: got %v, want ErrAlreadyExists", err)
	}
	got, err := s.Get(ctx, "my-custom")
	if err != nil {
		t.Fatalf("Get custom: %v", err)
	}
	if got.LevainHydrationPct == nil || *got.LevainHydrationPct != 100 {
		t.Fatalf("levain hydration = %v", got.LevainHydrationPct)
	}
	if got.Version != 1 {
		t.Fatalf("version = %d, want default 1", got.Version)
	}
}

func TestSQLiteSettings(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *domain.DefaultSettings() {
		t.Fatalf("fresh db settings = %+v, want defaults", got)
	}

	got.Theme = "dark"
	got.EnableFoldReminders = false
	if err := s.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	reloaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Theme != "dark" || reloaded.EnableFoldReminders {
		t.Fatalf("settings not persisted: %+v", reloaded)
	}
}

func TestSQLiteReset(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()
	defaults := formula.Defaults()

	if err := s.Seed(ctx, defaults); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	custom := &domain.Formula{ID: "my-loaf", Name: "My Loaf", TotalDoughG: 800, HydrationPct: 70, SaltPct: 2, LevainPct: 18}
	if err := s.Add(ctx, custom); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.SaveActive(ctx, sampleBake("b1")); err != nil {
		t.Fatalf("SaveActive: %v", err)
	}
	done := sampleBake("b2")
	done.Status = domain.BakeCompleted
	if err := s.AppendHistory(ctx, done); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	set, _ := s.Load(ctx)
	set.Theme = "dark"
	if err := s.Save(ctx, set); err != nil {
		t.Fatalf("Save settings: %v", err)
	}
	if err := s.SaveLevain(ctx, &domain.LevainBuild{ID: "lv1", HydrationPct: 100, InoculationPct: 20}); err != nil {
		t.Fatalf("SaveLevain: %v", err)
	}

	if err := s.Reset(ctx, defaults); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List after reset: %v", err)
	}
	if len(list) != len(defaults) {
		t.Fatalf("formulas after reset = %d, want the %d defaults", len(list), len(defaults))
	}
	if _, err := s.Get(ctx, "my-loaf"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("custom formula survived reset: %v", err)
	}
	if b, err := s.ActiveBake(ctx); b != nil || err != nil {
		t.Fatalf("active bake after reset: bake=%v err=%v", b, err)
	}
	history, err := s.History(ctx)
	if err != nil || len(history) != 0 {
		t.Fatalf("history after reset: %d entries, err=%v", len(history), err)
	}
	reloaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load after reset: %v", err)
	}
	if *reloaded != *domain.DefaultSettings() {
		t.Fatalf("settings after reset = %+v, want defaults", reloaded)
	}
	if _, err := s.Levain(ctx, "lv1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("levain survived reset: %v", err)
	}
}

func TestSQLiteLevain(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	ready := time.Date(2026, 7, 12, 7, 0, 0, 0, time.UTC)
	lb := &domain.LevainBuild{
		ID:             "lv1",
		BakeID:         "b1",
		Status:         domain.LevainReady,
		StartedAt:      ready.Add(-8 * time.Hour),
		ReadyAt:        &ready,
		HydrationPct:   100,
		InoculationPct: 20,
		ReadySignals:   []string{"domed surface", "floats in water"},
	}
	if err := s.SaveLevain(ctx, lb); err != nil {
		t.Fatalf("SaveLevain: %v", err)
	}

	got, err := s.LevainForBake(ctx, "b1")
	if err != nil {
		t.Fatalf("LevainForBake: %v", err)
	}
	if got.Status != domain.LevainReady || len(got.ReadySignals) != 2 {
		t.Fatalf("levain = %+v", got)
	}
	if _, err := s.Levain(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing levain: got %v, want ErrNotFound", err)
	}
}
