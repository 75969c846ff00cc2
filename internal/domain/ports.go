package domain

import "context"

// FormulaSource provides dough formulas. Implementations can be
// in-memory (seeded defaults) or SQLite-backed. Formulas are immutable
// once a bake references them; an edit mints a new ID instead.
type FormulaSource interface {
	List(ctx context.Context) ([]FormulaSummary, error)
	Get(ctx context.Context, id string) (*Formula, error)
	Add(ctx context.Context, f *Formula) error
}

// BakeStore persists the single active bake and the bake history.
// ActiveBake returns nil (no error) when nothing is in progress.
// History is append-only; entries are never rewritten.
type BakeStore interface {
	ActiveBake(ctx context.Context) (*Bake, error)
	SaveActive(ctx context.Context, b *Bake) error
	ClearActive(ctx context.Context) error
	History(ctx context.Context) ([]*Bake, error)
	AppendHistory(ctx context.Context, b *Bake) error
}

// SettingsStore persists configuration. Load returns defaults when
// nothing has been saved yet; fields missing on disk keep their
// default values.
type SettingsStore interface {
	Load(ctx context.Context) (*Settings, error)
	Save(ctx context.Context, s *Settings) error
}

// LevainStore persists starter builds.
type LevainStore interface {
	SaveLevain(ctx context.Context, lb *LevainBuild) error
	Levain(ctx context.Context, id string) (*LevainBuild, error)
	LevainForBake(ctx context.Context, bakeID string) (*LevainBuild, error)
}

// Notifier delivers reminders to the user. Fire-and-forget:
// implementations no-op silently when notifications are disabled in
// settings or the output channel is unavailable.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
