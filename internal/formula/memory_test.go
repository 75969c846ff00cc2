package formula

import (
	"context"
	"errors"
	"testing"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

func setupSource(t *testing.T) (*MemorySource, context.Context) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	return NewMemorySource(log), context.Background()
}

func TestMemorySourceSeeded(t *testing.T) {
	src, ctx := setupSource(t)

	list, err := src.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 seeded formulas, got %d", len(list))
	}
	// Sorted by name: "High-Extraction..." before "Tampa...".
	if list[0].Name != "High-Extraction Tampa Sourdough" {
		t.Fatalf("unexpected sort order: %q first", list[0].Name)
	}

	f, err := src.Get(ctx, "tampa-country-levain")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if f.HydrationPct != 78 || f.SaltPct != 2.1 {
		t.Fatalf("seed values wrong: %+v", f)
	}
	if f.LevainHydrationPct != nil {
		t.Fatal("seeded formulas use the simplified model")
	}
}

func TestMemorySourceGetUnknown(t *testing.T) {
	src, ctx := setupSource(t)

	_, err := src.Get(ctx, "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemorySourceAdd(t *testing.T) {
	src, ctx := setupSource(t)

	f := &domain.Formula{
		ID: "custom-1", Name: "Weekend Loaf",
		TotalDoughG: 800, HydrationPct: 72, SaltPct: 2, LevainPct: 18,
	}
	if err := src.Add(ctx, f); err != nil {
		t.Fatalf("add: %v", err)
	}
	if f.Version != 1 {
		t.Fatalf("expected version 1, got %d", f.Version)
	}

	if err := src.Add(ctx, f); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	got, err := src.Get(ctx, "custom-1")
	if err != nil {
		t.Fatalf("get after add: %v", err)
	}
	if got.Name != "Weekend Loaf" {
		t.Fatalf("got %q", got.Name)
	}
}
