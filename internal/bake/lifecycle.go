// Package bake implements the bake lifecycle state machine: the
// new-bake wizard, stage progression, the elapsed-time clock, and the
// transition of finished bakes into history.
package bake

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/formula"
	"github.com/hammamikhairi/proofbox/internal/idgen"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// Wizard steps.
const (
	StepFormula     = 1
	StepTiming      = 2
	StepEnvironment = 3
	StepSummary     = 4

	WizardSteps = 4
)

// Option configures the lifecycle.
type Option func(*Lifecycle)

// WithClock substitutes the wall clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *Lifecycle) {
		l.now = now
	}
}

// Lifecycle owns the single active bake and the wizard leading up to
// it. It depends only on interfaces and holds no presentation state;
// the UI layer calls methods and renders the returned values.
//
// State transitions apply in memory first; persistence is a best-effort
// side effect. When a store write fails the operation still succeeds
// and the error returned satisfies domain.IsPersistenceWarning.
type Lifecycle struct {
	formulas domain.FormulaSource
	store    domain.BakeStore
	settings domain.SettingsStore
	log      *logger.Logger
	now      func() time.Time

	current *domain.Bake
	wizard  *wizardState
}

type wizardState struct {
	step    int
	formula *domain.Formula
	target  time.Time
	env     *domain.Environment
}

// New creates a lifecycle with the given dependencies and options.
func New(formulas domain.FormulaSource, store domain.BakeStore, settings domain.SettingsStore, log *logger.Logger, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		formulas: formulas,
		store:    store,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Restore loads a previously persisted active bake, if any. Called once
// at startup so an interrupted session picks up where it left off.
func (l *Lifecycle) Restore(ctx context.Context) (*domain.Bake, error) {
	b, err := l.store.ActiveBake(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading active bake: %w", err)
	}
	l.current = b
	if b != nil {
		l.log.Info("restored active bake %s (%q, stage %s)", b.ID, b.Name, b.Stage)
	}
	return b, nil
}

// Active returns the in-progress bake, or nil.
func (l *Lifecycle) Active() *domain.Bake { return l.current }

// Elapsed returns the active bake's fermentation clock right now.
func (l *Lifecycle) Elapsed() time.Duration {
	if l.current == nil {
		return 0
	}
	return l.current.Elapsed(l.now())
}

// ── Wizard ───────────────────────────────────────────────────────

// StartWizard opens the new-bake wizard at step 1. Fails while a bake
// is active: it must be completed or explicitly abandoned first, never
// silently overwritten.
func (l *Lifecycle) StartWizard() error {
	if l.current != nil {
		return domain.Invalid(domain.ErrBakeInProgress, "finish or abandon %q before starting a new bake", l.current.Name)
	}
	l.wizard = &wizardState{step: StepFormula}
	l.log.Debug("wizard opened")
	return nil
}

// WizardOpen reports whether a wizard is in progress.
func (l *Lifecycle) WizardOpen() bool { return l.wizard != nil }

// Step returns the current wizard step, or 0 when no wizard is open.
func (l *Lifecycle) Step() int {
	if l.wizard == nil {
		return 0
	}
	return l.wizard.step
}

// SelectedFormula returns the formula chosen in the wizard, or nil.
func (l *Lifecycle) SelectedFormula() *domain.Formula {
	if l.wizard == nil {
		return nil
	}
	return l.wizard.formula
}

// Target returns the wizard's target bake time (zero when unset).
func (l *Lifecycle) Target() time.Time {
	if l.wizard == nil {
		return time.Time{}
	}
	return l.wizard.target
}

// Environment returns the kitchen snapshot entered in the wizard. The
// second return is false when the step was skipped, in which case the
// committed bake falls back to settings defaults.
func (l *Lifecycle) Environment() (domain.Environment, bool) {
	if l.wizard == nil || l.wizard.env == nil {
		return domain.Environment{}, false
	}
	return *l.wizard.env, true
}

// SelectFormula picks the formula for the bake being planned.
func (l *Lifecycle) SelectFormula(ctx context.Context, id string) (*domain.Formula, error) {
	if l.wizard == nil {
		return nil, domain.Invalidf("no bake wizard in progress")
	}
	f, err := l.formulas.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting formula: %w", err)
	}
	l.wizard.formula = f
	l.log.Debug("wizard selected formula %s (%q)", f.ID, f.Name)
	return f, nil
}

// SetTarget records the target bake time.
func (l *Lifecycle) SetTarget(t time.Time) error {
	if l.wizard == nil {
		return domain.Invalidf("no bake wizard in progress")
	}
	if !t.After(l.now()) {
		return domain.Invalidf("target bake time must be in the future")
	}
	l.wizard.target = t
	return nil
}

// SetEnvironment records the ambient snapshot for the bake. Optional;
// settings defaults are used when never called.
func (l *Lifecycle) SetEnvironment(env domain.Environment) error {
	if l.wizard == nil {
		return domain.Invalidf("no bake wizard in progress")
	}
	l.wizard.env = &env
	return nil
}

// AdvanceStep moves to the next wizard step, enforcing per-step
// preconditions. Returns the step now showing.
func (l *Lifecycle) AdvanceStep() (int, error) {
	if l.wizard == nil {
		return 0, domain.Invalidf("no bake wizard in progress")
	}
	switch l.wizard.step {
	case StepFormula:
		if l.wizard.formula == nil {
			return l.wizard.step, domain.Invalid(domain.ErrNoFormulaSelected, "select a formula before continuing")
		}
	case StepTiming:
		if l.wizard.target.IsZero() {
			return l.wizard.step, domain.Invalid(domain.ErrNoTargetTime, "set a target bake time before continuing")
		}
	case StepSummary:
		return l.wizard.step, domain.Invalidf("already at the summary step; start the bake or go back")
	}
	l.wizard.step++
	return l.wizard.step, nil
}

// RetreatStep moves back one wizard step, never below step 1.
func (l *Lifecycle) RetreatStep() (int, error) {
	if l.wizard == nil {
		return 0, domain.Invalidf("no bake wizard in progress")
	}
	if l.wizard.step > StepFormula {
		l.wizard.step--
	}
	return l.wizard.step, nil
}

// CancelWizard discards the wizard without starting a bake.
func (l *Lifecycle) CancelWizard() {
	l.wizard = nil
}

// CommitBake turns the completed wizard into the active bake, starting
// at bulk fermentation with the clock running.
func (l *Lifecycle) CommitBake(ctx context.Context) (*domain.Bake, error) {
	if l.wizard == nil {
		return nil, domain.Invalidf("no bake wizard in progress")
	}
	if l.wizard.formula == nil {
		return nil, domain.Invalid(domain.ErrNoFormulaSelected, "no formula selected")
	}
	if l.wizard.target.IsZero() {
		return nil, domain.Invalid(domain.ErrNoTargetTime, "no target bake time set")
	}
	if l.current != nil {
		return nil, domain.Invalid(domain.ErrBakeInProgress, "a bake is already active")
	}

	f := l.wizard.formula
	weights, err := formula.ForFormula(f)
	if err != nil {
		return nil, fmt.Errorf("computing weights: %w", err)
	}

	env := l.wizard.env
	if env == nil {
		s, err := l.settings.Load(ctx)
		if err != nil {
			s = domain.DefaultSettings()
		}
		env = &domain.Environment{AmbientTemp: s.DefaultAmbientTemp, Humidity: s.DefaultHumidity}
	}

	now := l.now()
	b := &domain.Bake{
		ID:          idgen.New(),
		Name:        fmt.Sprintf("%s — %s", f.Name, now.Format("Jan 2")),
		FormulaID:   f.ID,
		FormulaName: f.Name,
		Weights:     weights,
		Status:      domain.BakeActive,
		Stage:       domain.StageBulkFermentation,
		StartTime:   now,
		TargetTime:  l.wizard.target,
		Environment: *env,
		UpdatedAt:   now,
	}

	l.current = b
	l.wizard = nil
	l.log.Info("bake %s started (%q, target %s)", b.ID, b.Name, b.TargetTime.Format(time.Kitchen))
	return b, l.persist(ctx, "starting bake")
}

// ── Active bake ──────────────────────────────────────────────────

// AppendLog attaches an environment reading to the active bake. Valid
// only while active; the log sequence is append-only.
func (l *Lifecycle) AppendLog(ctx context.Context, entry domain.EnvironmentLog) error {
	if err := l.requireActive(); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now()
	}
	l.current.Logs = append(l.current.Logs, entry)
	l.current.UpdatedAt = l.now()
	l.log.Debug("bake %s: log #%d (dough %.1f°F, rise %d%%)", l.current.ID, len(l.current.Logs), entry.DoughTemp, entry.RisePct)
	return l.persist(ctx, "recording environment log")
}

// AdvanceStage moves the active bake to the next stage in the fixed
// order. In the terminal Baking stage it completes the bake instead;
// done is true when that happened.
func (l *Lifecycle) AdvanceStage(ctx context.Context) (stage domain.Stage, done bool, err error) {
	if err := l.requireActive(); err != nil {
		return 0, false, err
	}

	next, ok := l.current.Stage.Next()
	if !ok {
		_, err := l.CompleteBake(ctx, nil, nil, "")
		return domain.StageBaking, true, err
	}

	l.current.Stage = next
	l.current.UpdatedAt = l.now()
	l.log.Info("bake %s advanced to %s", l.current.ID, next)
	return next, false, l.persist(ctx, "advancing stage")
}

// Pause freezes the elapsed-time clock at the current instant.
func (l *Lifecycle) Pause(ctx context.Context) error {
	if err := l.requireActive(); err != nil {
		return err
	}
	if l.current.Paused() {
		return domain.Invalidf("elapsed timer is already paused")
	}
	now := l.now()
	l.current.PausedAt = &now
	l.current.UpdatedAt = now
	l.log.Info("bake %s paused at elapsed %s", l.current.ID, l.current.Elapsed(now).Round(time.Second))
	return l.persist(ctx, "pausing timer")
}

// Resume continues the elapsed-time clock from the frozen value. The
// paused interval is folded into PausedFor rather than shifting the
// start time, so the clock picks up exactly where Pause left it.
func (l *Lifecycle) Resume(ctx context.Context) error {
	if err := l.requireActive(); err != nil {
		return err
	}
	if !l.current.Paused() {
		return domain.Invalidf("elapsed timer is not paused")
	}
	now := l.now()
	l.current.PausedFor += now.Sub(*l.current.PausedAt)
	l.current.PausedAt = nil
	l.current.UpdatedAt = now
	l.log.Info("bake %s resumed (total paused %s)", l.current.ID, l.current.PausedFor.Round(time.Second))
	return l.persist(ctx, "resuming timer")
}

// CompleteBake finishes the active bake: status becomes completed, the
// record moves to history, and the active slot clears. A nil rating
// stays nil — it is never conflated with a real 0-star rating.
func (l *Lifecycle) CompleteBake(ctx context.Context, rating *int, issues []string, notes string) (*domain.Bake, error) {
	if err := l.requireActive(); err != nil {
		return nil, err
	}
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, domain.Invalidf("rating must be between 1 and 5, got %d", *rating)
	}
	b := l.finish(domain.BakeCompleted)
	b.Rating = rating
	b.Issues = issues
	if notes != "" {
		b.Notes = notes
	}
	l.log.Info("bake %s completed after %s", b.ID, b.Elapsed(*b.EndTime).Round(time.Minute))
	return b, l.archive(ctx, b, "completing bake")
}

// AbandonBake discards the active bake without finishing it. The record
// is archived to history with status abandoned so nothing is lost
// silently.
func (l *Lifecycle) AbandonBake(ctx context.Context) (*domain.Bake, error) {
	if err := l.requireActive(); err != nil {
		return nil, err
	}
	b := l.finish(domain.BakeAbandoned)
	l.log.Info("bake %s abandoned at stage %s", b.ID, b.Stage)
	return b, l.archive(ctx, b, "abandoning bake")
}

// finish applies the terminal in-memory transition: close any open
// pause, stamp the end time, and clear the active slot.
func (l *Lifecycle) finish(status domain.BakeStatus) *domain.Bake {
	now := l.now()
	b := l.current
	if b.Paused() {
		b.PausedFor += now.Sub(*b.PausedAt)
		b.PausedAt = nil
	}
	b.Status = status
	b.EndTime = &now
	b.UpdatedAt = now
	l.current = nil
	return b
}

// archive persists a finished bake to history and clears the active
// slot in the store. Failures surface as a PersistenceWarning: the
// in-memory transition already happened and stands.
func (l *Lifecycle) archive(ctx context.Context, b *domain.Bake, op string) error {
	if err := l.store.AppendHistory(ctx, b); err != nil {
		l.log.Warn("%s: appending history: %v", op, err)
		return &domain.PersistenceWarning{Op: op, Err: err}
	}
	if err := l.store.ClearActive(ctx); err != nil {
		l.log.Warn("%s: clearing active slot: %v", op, err)
		return &domain.PersistenceWarning{Op: op, Err: err}
	}
	return nil
}

func (l *Lifecycle) requireActive() error {
	if l.current == nil {
		return domain.Invalid(domain.ErrNoActiveBake, "no bake is in progress")
	}
	return nil
}

func (l *Lifecycle) persist(ctx context.Context, op string) error {
	if err := l.store.SaveActive(ctx, l.current); err != nil {
		l.log.Warn("%s: saving active bake: %v", op, err)
		return &domain.PersistenceWarning{Op: op, Err: err}
	}
	return nil
}
