// Package timer implements the background supervisor that watches the
// active bake and fires reminders when a stage runs past its projected
// window or a fold is due.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
	"github.com/hammamikhairi/proofbox/internal/schedule"
)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor checks the bake.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithNotifyCooldown sets the minimum time between repeated overdue
// notifications for the same stage.
func WithNotifyCooldown(d time.Duration) Option {
	return func(s *Supervisor) {
		s.notifyCooldown = d
	}
}

// WithMaxEscalation sets the escalation level after which the
// supervisor stops nagging about an overdue stage.
func WithMaxEscalation(level int) Option {
	return func(s *Supervisor) {
		s.maxEscalation = level
	}
}

// WithFoldInterval sets the spacing between fold reminders during bulk.
func WithFoldInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.foldInterval = d
	}
}

// WithClock substitutes the wall clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

// WithWatcher enables the slower-cycle watcher with the given options.
func WithWatcher(opts ...WatcherOption) Option {
	return func(s *Supervisor) {
		s.watcherEnabled = true
		s.watcherOpts = opts
	}
}

// reminderState is the supervisor's private bookkeeping for one bake.
// The bake record itself is never written from here: the periodic
// refresh observes lifecycle state, it does not own it.
type reminderState struct {
	stage           domain.Stage
	lastNotified    time.Time
	escalationLevel int
	lastFoldAt      time.Time
	foldCount       int
}

// Supervisor runs in the background and turns the fermentation
// schedule into reminders. Optionally runs a Watcher on a slower cycle.
type Supervisor struct {
	store    domain.BakeStore
	settings domain.SettingsStore
	notifier domain.Notifier
	log      *logger.Logger
	now      func() time.Time

	tickInterval   time.Duration
	notifyCooldown time.Duration
	maxEscalation  int
	foldInterval   time.Duration

	watcherEnabled bool
	watcherOpts    []WatcherOption
	watcher        *Watcher

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	reminders map[string]*reminderState // keyed by bake ID
}

// New creates a supervisor with the given dependencies and options.
func New(store domain.BakeStore, settings domain.SettingsStore, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:          store,
		settings:       settings,
		notifier:       notifier,
		log:            log,
		now:            time.Now,
		tickInterval:   15 * time.Second,
		notifyCooldown: 5 * time.Minute,
		maxEscalation:  3,
		foldInterval:   30 * time.Minute,
		reminders:      make(map[string]*reminderState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)

	if s.watcherEnabled {
		s.watcher = NewWatcher(s.store, s.notifier, s.log, s.watcherOpts...)
		go s.watcher.Run(childCtx)
	}

	s.log.Info("supervisor started (tick=%s, fold interval=%s)", s.tickInterval, s.foldInterval)
}

// Stop gracefully shuts down the supervisor.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.running = false
	s.log.Info("supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one cycle: load the active bake, compare its stage against
// the projected schedule, and fire whatever reminders are due. Exported
// so tests can drive the cycle without real time.
func (s *Supervisor) Tick(ctx context.Context) {
	b, err := s.store.ActiveBake(ctx)
	if err != nil {
		s.log.Error("supervisor: loading active bake: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if b == nil {
		// Completed or abandoned elsewhere; reminders die with the bake.
		if len(s.reminders) > 0 {
			s.reminders = make(map[string]*reminderState)
		}
		return
	}
	if b.Paused() {
		return
	}

	rs, ok := s.reminders[b.ID]
	if !ok || rs.stage != b.Stage {
		// New bake or a stage transition: reset the ladder.
		rs = &reminderState{stage: b.Stage, lastFoldAt: s.now()}
		s.reminders = map[string]*reminderState{b.ID: rs}
	}

	s.checkFolds(ctx, b, rs)
	s.checkStageDue(ctx, b, rs)
}

// checkFolds fires stretch-and-fold reminders during bulk fermentation.
func (s *Supervisor) checkFolds(ctx context.Context, b *domain.Bake, rs *reminderState) {
	if b.Stage != domain.StageBulkFermentation || s.foldInterval <= 0 {
		return
	}
	set, err := s.settings.Load(ctx)
	if err == nil && !set.EnableFoldReminders {
		return
	}
	if s.now().Sub(rs.lastFoldAt) < s.foldInterval {
		return
	}

	rs.lastFoldAt = s.now()
	rs.foldCount++
	msg := fmt.Sprintf("[Bake] Fold #%d — give the dough a stretch and fold.", rs.foldCount)
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.log.Error("supervisor: fold notify: %v", err)
	}
}

// checkStageDue fires when the current stage has run past the
// temperature-adjusted schedule, with an escalation ladder and cooldown
// so the first miss is urgent and the nagging eventually stops.
func (s *Supervisor) checkStageDue(ctx context.Context, b *domain.Bake, rs *reminderState) {
	due, action, ok := stageDue(b)
	if !ok {
		return
	}
	now := s.now()
	if now.Before(due) {
		return
	}

	overdue := now.Sub(due).Round(time.Minute)
	switch {
	case rs.escalationLevel == 0:
		msg := fmt.Sprintf("[Bake] %s — %s.", stageLabel(b.Stage), action)
		if err := s.notifier.NotifyUrgent(ctx, msg); err != nil {
			s.log.Error("supervisor: stage-due notify: %v", err)
		}
	case rs.escalationLevel > s.maxEscalation:
		return // Stop nagging.
	case now.Sub(rs.lastNotified) < s.notifyCooldown:
		return // Cooldown active.
	default:
		msg := fmt.Sprintf("[Bake] %s ran %s over — %s.", stageLabel(b.Stage), formatOverdue(overdue), action)
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.log.Error("supervisor: stage-due notify: %v", err)
		}
	}
	rs.lastNotified = now
	rs.escalationLevel++
}

// stageDue returns when the bake's current stage should end and what to
// do then. Pre-shape and baking have no projected duration; the watcher
// covers those.
func stageDue(b *domain.Bake) (due time.Time, action string, ok bool) {
	plan := schedule.Project(b.TargetTime, b.Environment.AmbientTemp)
	switch b.Stage {
	case domain.StageBulkFermentation:
		return plan.StartProof, "bulk looks done, pre-shape the dough", true
	case domain.StageFinalProof:
		return plan.BakeAt, "the oven is calling, load the loaf", true
	default:
		return time.Time{}, "", false
	}
}

func stageLabel(st domain.Stage) string {
	switch st {
	case domain.StageBulkFermentation:
		return "Bulk fermentation"
	case domain.StagePreShape:
		return "Pre-shape"
	case domain.StageFinalProof:
		return "Final proof"
	case domain.StageBaking:
		return "Baking"
	default:
		return st.String()
	}
}

// formatOverdue renders a duration for reminder text, rounding to the
// nearest minute once past one.
func formatOverdue(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	m := int((d + 30*time.Second) / time.Minute)
	if m == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", m)
}
