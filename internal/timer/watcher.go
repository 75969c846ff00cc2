package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/proofbox/internal/domain"
	"github.com/hammamikhairi/proofbox/internal/logger"
)

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks the bake.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithStaleLogAfter sets how long without an environment reading before
// the watcher suggests logging one.
func WithStaleLogAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.staleLogAfter = d
	}
}

// WithPauseNudgeAfter sets how long a pause can last before the watcher
// mentions it.
func WithPauseNudgeAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.pauseNudgeAfter = d
	}
}

// Watcher periodically inspects the active bake and nudges about
// things the schedule can't see: a pause nobody came back from, or a
// fermenting dough that hasn't been checked in a while. Runs on a
// slower cycle than the supervisor.
type Watcher struct {
	store    domain.BakeStore
	notifier domain.Notifier
	log      *logger.Logger
	now      func() time.Time

	interval        time.Duration
	staleLogAfter   time.Duration
	pauseNudgeAfter time.Duration

	lastNudge time.Time
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(store domain.BakeStore, notifier domain.Notifier, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		store:           store,
		notifier:        notifier,
		log:             log,
		now:             time.Now,
		interval:        5 * time.Minute,
		staleLogAfter:   90 * time.Minute,
		pauseNudgeAfter: 30 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
// Intended to be called as a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s)", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check runs one watcher cycle. Exported so tests can drive it.
func (w *Watcher) Check(ctx context.Context) {
	b, err := w.store.ActiveBake(ctx)
	if err != nil {
		w.log.Error("watcher: loading active bake: %v", err)
		return
	}
	if b == nil {
		return
	}

	now := w.now()
	w.log.Debug("watcher: bake %s — stage=%s elapsed=%s logs=%d",
		b.ID[:8], b.Stage, b.Elapsed(now).Round(time.Second), len(b.Logs))

	msg := w.buildMessage(b, now)
	if msg == "" {
		return
	}
	// One nudge per cycle is plenty.
	if now.Sub(w.lastNudge) < w.interval {
		return
	}
	w.lastNudge = now
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Error("watcher: notify: %v", err)
	}
}

// buildMessage decides what to say about the bake, if anything.
func (w *Watcher) buildMessage(b *domain.Bake, now time.Time) string {
	// A forgotten pause first: the dough keeps fermenting either way.
	if b.Paused() {
		pausedFor := now.Sub(*b.PausedAt)
		if pausedFor >= w.pauseNudgeAfter {
			return fmt.Sprintf("[Watcher] Timer paused for %s — the dough didn't stop with it.",
				pausedFor.Round(time.Minute))
		}
		return ""
	}

	// No readings for a while during the fermenting stages.
	if b.Stage == domain.StageBulkFermentation || b.Stage == domain.StageFinalProof {
		last := b.StartTime
		if n := len(b.Logs); n > 0 {
			last = b.Logs[n-1].Timestamp
		}
		if since := now.Sub(last); since >= w.staleLogAfter {
			return fmt.Sprintf("[Watcher] No dough check in %s — worth a look at temp and rise.",
				since.Round(time.Minute))
		}
	}

	w.log.Debug("watcher: bake %s — nothing to report", b.ID[:8])
	return ""
}
