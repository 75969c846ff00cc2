package formula

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// Compile-time interface check.
var _ domain.FormulaSource = (*MemorySource)(nil)

// MemorySource holds formulas in memory. Safe for concurrent use.
type MemorySource struct {
	mu       sync.RWMutex
	formulas map[string]*domain.Formula
	log      *logger.Logger
}

// NewMemorySource creates a formula source preloaded with the built-in
// default formulas.
func NewMemorySource(log *logger.Logger) *MemorySource {
	src := &MemorySource{
		formulas: make(map[string]*domain.Formula),
		log:      log,
	}
	for _, f := range Defaults() {
		src.formulas[f.ID] = f
	}
	return src
}

// List returns summaries of all formulas, sorted by name.
func (s *MemorySource) List(ctx context.Context) ([]domain.FormulaSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("listing formulas, count=%d", len(s.formulas))

	out := make([]domain.FormulaSummary, 0, len(s.formulas))
	for _, f := range s.formulas {
		out = append(out, domain.FormulaSummary{
			ID:           f.ID,
			Name:         f.Name,
			Complexity:   f.Complexity,
			TotalDoughG:  f.TotalDoughG,
			HydrationPct: f.HydrationPct,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a formula by ID.
func (s *MemorySource) Get(ctx context.Context, id string) (*domain.Formula, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.formulas[id]
	if !ok {
		s.log.Debug("formula not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return f, nil
}

// Add stores a new formula. The ID must be fresh: existing formulas are
// immutable once referenced by a bake, so an edit mints a new ID.
func (s *MemorySource) Add(ctx context.Context, f *domain.Formula) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.formulas[f.ID]; ok {
		return domain.ErrAlreadyExists
	}
	if f.Version == 0 {
		f.Version = 1
	}
	s.formulas[f.ID] = f
	s.log.Info("formula added: %s (%q)", f.ID, f.Name)
	return nil
}
