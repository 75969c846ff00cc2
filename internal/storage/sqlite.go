package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.BakeStore     = (*SQLiteStore)(nil)
	_ domain.SettingsStore = (*SQLiteStore)(nil)
	_ domain.LevainStore   = (*SQLiteStore)(nil)
	_ domain.FormulaSource = (*SQLiteStore)(nil)
)

// SQLiteStore persists bakes, formulas, settings, and levain builds in
// a single SQLite file. database/sql serializes access, so no extra
// locking is needed here.
type SQLiteStore struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (or creates) the database at path and applies the schema.
// Pragmas go through Exec so they work with any database/sql driver.
func Open(path string, log *logger.Logger) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("storage: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: schema: %w", err)
	}

	log.Info("database open at %s", path)
	return &SQLiteStore{db: db, log: log}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Reset wipes every collection and re-seeds the given formulas,
// returning the database to its first-run state. The wipe runs in one
// transaction so a failure leaves the data untouched.
func (s *SQLiteStore) Reset(ctx context.Context, seeds []*domain.Formula) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting reset: %w", err)
	}
	for _, table := range []string{"bakes", "levain_builds", "settings", "formulas"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			tx.Rollback()
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reset: %w", err)
	}
	s.log.Info("storage reset to first-run state")
	return s.Seed(ctx, seeds)
}

// ── Bakes ────────────────────────────────────────────────────────

const bakeColumns = `id, name, formula_id, formula_name, weights, status, stage,
	start_time, target_time, environment, logs, end_time, rating, issues, notes,
	paused_at, paused_for_ns, updated_at`

// ActiveBake returns the single in-progress bake, or nil when none.
func (s *SQLiteStore) ActiveBake(ctx context.Context) (*domain.Bake, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bakeColumns+` FROM bakes WHERE status = ? LIMIT 1`,
		domain.BakeActive.String())
	b, err := scanBake(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// SaveActive upserts the active bake snapshot.
func (s *SQLiteStore) SaveActive(ctx context.Context, b *domain.Bake) error {
	return s.upsertBake(ctx, b)
}

// ClearActive deletes any bake still marked active. Finished bakes are
// archived through AppendHistory first, so nothing of record is lost.
func (s *SQLiteStore) ClearActive(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM bakes WHERE status = ?`, domain.BakeActive.String())
	return err
}

// History returns finished bakes, oldest first.
func (s *SQLiteStore) History(ctx context.Context) ([]*domain.Bake, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bakeColumns+` FROM bakes WHERE status != ? ORDER BY start_time`,
		domain.BakeActive.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Bake
	for rows.Next() {
		b, err := scanBake(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// AppendHistory archives a finished bake. The upsert makes archiving
// idempotent for a given bake ID.
func (s *SQLiteStore) AppendHistory(ctx context.Context, b *domain.Bake) error {
	return s.upsertBake(ctx, b)
}

func (s *SQLiteStore) upsertBake(ctx context.Context, b *domain.Bake) error {
	weights, err := json.Marshal(b.Weights)
	if err != nil {
		return fmt.Errorf("encoding weights: %w", err)
	}
	env, err := json.Marshal(b.Environment)
	if err != nil {
		return fmt.Errorf("encoding environment: %w", err)
	}
	logs, err := json.Marshal(orEmpty(b.Logs))
	if err != nil {
		return fmt.Errorf("encoding logs: %w", err)
	}
	issues, err := json.Marshal(orEmpty(b.Issues))
	if err != nil {
		return fmt.Errorf("encoding issues: %w", err)
	}

	updated := b.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bakes (`+bakeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.FormulaID, b.FormulaName, string(weights),
		b.Status.String(), b.Stage.String(),
		b.StartTime.UnixMilli(), b.TargetTime.UnixMilli(),
		string(env), string(logs),
		msOrNil(b.EndTime), intOrNil(b.Rating), string(issues), b.Notes,
		msOrNil(b.PausedAt), int64(b.PausedFor), updated.UnixMilli(),
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBake(row rowScanner) (*domain.Bake, error) {
	var (
		b                         domain.Bake
		status, stage             string
		weights, env, logs, issue string
		start, target, updated    int64
		end, paused, rating       sql.NullInt64
	)
	err := row.Scan(&b.ID, &b.Name, &b.FormulaID, &b.FormulaName, &weights,
		&status, &stage, &start, &target, &env, &logs,
		&end, &rating, &issue, &b.Notes, &paused, &b.PausedFor, &updated)
	if err != nil {
		return nil, err
	}

	if b.Status, err = domain.ParseBakeStatus(status); err != nil {
		return nil, err
	}
	if b.Stage, err = domain.ParseStage(stage); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(weights), &b.Weights); err != nil {
		return nil, fmt.Errorf("decoding weights: %w", err)
	}
	if err := json.Unmarshal([]byte(env), &b.Environment); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	if err := json.Unmarshal([]byte(logs), &b.Logs); err != nil {
		return nil, fmt.Errorf("decoding logs: %w", err)
	}
	if err := json.Unmarshal([]byte(issue), &b.Issues); err != nil {
		return nil, fmt.Errorf("decoding issues: %w", err)
	}

	b.StartTime = time.UnixMilli(start)
	b.TargetTime = time.UnixMilli(target)
	if end.Valid {
		t := time.UnixMilli(end.Int64)
		b.EndTime = &t
	}
	if paused.Valid {
		t := time.UnixMilli(paused.Int64)
		b.PausedAt = &t
	}
	if rating.Valid {
		r := int(rating.Int64)
		b.Rating = &r
	}
	b.UpdatedAt = time.UnixMilli(updated)
	return &b, nil
}

// ── Formulas ─────────────────────────────────────────────────────

// List returns formula summaries sorted by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.FormulaSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, complexity, total_dough_g, hydration_pct
		FROM formulas ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.FormulaSummary
	for rows.Next() {
		var f domain.FormulaSummary
		if err := rows.Scan(&f.ID, &f.Name, &f.Complexity, &f.TotalDoughG, &f.HydrationPct); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Get retrieves a formula by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Formula, error) {
	var (
		f       domain.Formula
		levainH sql.NullFloat64
		mix     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, complexity, total_dough_g, hydration_pct, salt_pct,
		levain_pct, levain_hydration_pct, flour_composition, notes, version
		FROM formulas WHERE id = ?`, id).
		Scan(&f.ID, &f.Name, &f.Complexity, &f.TotalDoughG, &f.HydrationPct,
			&f.SaltPct, &f.LevainPct, &levainH, &mix, &f.Notes, &f.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if levainH.Valid {
		f.LevainHydrationPct = &levainH.Float64
	}
	if err := json.Unmarshal([]byte(mix), &f.FlourComposition); err != nil {
		return nil, fmt.Errorf("decoding flour composition: %w", err)
	}
	return &f, nil
}

// Add stores a new formula. Fails if the ID is taken.
func (s *SQLiteStore) Add(ctx context.Context, f *domain.Formula) error {
	if existing, err := s.Get(ctx, f.ID); err == nil && existing != nil {
		return domain.ErrAlreadyExists
	}

	mix, err := json.Marshal(orEmptyMap(f.FlourComposition))
	if err != nil {
		return fmt.Errorf("encoding flour composition: %w", err)
	}
	version := f.Version
	if version == 0 {
		version = 1
	}

	var levainH any
	if f.LevainHydrationPct != nil {
		levainH = *f.LevainHydrationPct
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO formulas (id, name, complexity, total_dough_g, hydration_pct,
		salt_pct, levain_pct, levain_hydration_pct, flour_composition, notes, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Name, f.Complexity, f.TotalDoughG, f.HydrationPct,
		f.SaltPct, f.LevainPct, levainH, string(mix), f.Notes, version,
	)
	return err
}

// Seed inserts formulas that are not already present. Called once at
// startup with the built-in defaults.
func (s *SQLiteStore) Seed(ctx context.Context, formulas []*domain.Formula) error {
	for _, f := range formulas {
		err := s.Add(ctx, f)
		if err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("seeding formula %s: %w", f.ID, err)
		}
	}
	return nil
}

// ── Settings ─────────────────────────────────────────────────────

// Load returns saved settings, layered over defaults so fields added
// after the row was written keep their default values.
func (s *SQLiteStore) Load(ctx context.Context) (*domain.Settings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM settings WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}

	set := domain.DefaultSettings()
	if err := json.Unmarshal([]byte(payload), set); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return set, nil
}

// Save persists settings.
func (s *SQLiteStore) Save(ctx context.Context, set *domain.Settings) error {
	payload, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO settings (id, payload) VALUES (1, ?)`,
		string(payload))
	return err
}

// ── Levain builds ────────────────────────────────────────────────

// SaveLevain upserts a starter build.
func (s *SQLiteStore) SaveLevain(ctx context.Context, lb *domain.LevainBuild) error {
	payload, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("encoding levain build: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO levain_builds (id, bake_id, status, started_at, ready_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)`,
		lb.ID, lb.BakeID, lb.Status.String(), lb.StartedAt.UnixMilli(),
		msOrNil(lb.ReadyAt), string(payload),
	)
	return err
}

// Levain retrieves a starter build by ID.
func (s *SQLiteStore) Levain(ctx context.Context, id string) (*domain.LevainBuild, error) {
	return s.levainWhere(ctx, `id = ?`, id)
}

// LevainForBake retrieves the starter build attached to a bake.
func (s *SQLiteStore) LevainForBake(ctx context.Context, bakeID string) (*domain.LevainBuild, error) {
	return s.levainWhere(ctx, `bake_id = ?`, bakeID)
}

func (s *SQLiteStore) levainWhere(ctx context.Context, where string, arg any) (*domain.LevainBuild, error) {
	var status, payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT status, payload FROM levain_builds WHERE `+where+` LIMIT 1`, arg).
		Scan(&status, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var lb domain.LevainBuild
	if err := json.Unmarshal([]byte(payload), &lb); err != nil {
		return nil, fmt.Errorf("decoding levain build: %w", err)
	}
	if lb.Status, err = domain.ParseLevainStatus(status); err != nil {
		return nil, err
	}
	return &lb, nil
}

// ── Helpers ──────────────────────────────────────────────────────

func msOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixMilli()
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orEmptyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
