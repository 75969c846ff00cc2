// Package storage provides bake, settings, and levain persistence
// implementations.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.BakeStore     = (*MemoryStore)(nil)
	_ domain.SettingsStore = (*MemoryStore)(nil)
	_ domain.LevainStore   = (*MemoryStore)(nil)
)

// MemoryStore keeps everything in process memory. Safe for concurrent
// access. Bakes are cloned on the way in and out so callers and
// background readers never share a mutable record.
type MemoryStore struct {
	mu       sync.RWMutex
	active   *domain.Bake
	history  []*domain.Bake
	settings *domain.Settings
	levains  map[string]*domain.LevainBuild
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		levains: make(map[string]*domain.LevainBuild),
		log:     log,
	}
}

// ActiveBake returns the in-progress bake, or nil when there is none.
func (s *MemoryStore) ActiveBake(ctx context.Context) (*domain.Bake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.active == nil {
		return nil, nil
	}
	return s.active.Clone(), nil
}

// SaveActive persists the active bake. Overwrites the previous snapshot.
func (s *MemoryStore) SaveActive(ctx context.Context, b *domain.Bake) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving active bake %s (stage=%s, logs=%d)", b.ID, b.Stage, len(b.Logs))
	s.active = b.Clone()
	return nil
}

// ClearActive empties the active slot. Clearing an empty slot is a no-op.
func (s *MemoryStore) ClearActive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = nil
	return nil
}

// History returns all archived bakes, most recent last.
func (s *MemoryStore) History(ctx context.Context) ([]*domain.Bake, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Bake, len(s.history))
	for i, b := range s.history {
		out[i] = b.Clone()
	}
	return out, nil
}

// AppendHistory archives a finished bake. An existing entry with the
// same ID is replaced rather than duplicated.
func (s *MemoryStore) AppendHistory(ctx context.Context, b *domain.Bake) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, prev := range s.history {
		if prev.ID == b.ID {
			s.history[i] = b.Clone()
			return nil
		}
	}
	s.log.Debug("archiving bake %s (status=%s)", b.ID, b.Status)
	s.history = append(s.history, b.Clone())
	return nil
}

// Load returns the saved settings, or defaults when none were saved.
func (s *MemoryStore) Load(ctx context.Context) (*domain.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings == nil {
		return domain.DefaultSettings(), nil
	}
	cp := *s.settings
	return &cp, nil
}

// Save persists settings.
func (s *MemoryStore) Save(ctx context.Context, set *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *set
	s.settings = &cp
	return nil
}

// SaveLevain persists a starter build. Overwrites if it already exists.
func (s *MemoryStore) SaveLevain(ctx context.Context, lb *domain.LevainBuild) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *lb
	s.levains[lb.ID] = &cp
	return nil
}

// Levain retrieves a starter build by ID.
func (s *MemoryStore) Levain(ctx context.Context, id string) (*domain.LevainBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lb, ok := s.levains[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *lb
	return &cp, nil
}

// LevainForBake retrieves the starter build attached to a bake.
func (s *MemoryStore) LevainForBake(ctx context.Context, bakeID string) (*domain.LevainBuild, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, lb := range s.levains {
		if lb.BakeID == bakeID {
			cp := *lb
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}
