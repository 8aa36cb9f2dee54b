package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/rs/zerolog"
)

// pauser reports whether the assistant is paused.
type pauser interface {
	Paused() bool
}

// Watcher polls the store and emits a NoticeEvent for each due reminder.
// While paused, due reminders are held until the session resumes.
type Watcher struct {
	store    *Store
	state    pauser
	events   chan<- workflow.Event
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewWatcher creates a watcher polling every interval.
func NewWatcher(store *Store, state pauser, events chan<- workflow.Event, interval time.Duration, logger zerolog.Logger) *Watcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Watcher{
		store:    store,
		state:    state,
		events:   events,
		interval: interval,
		now:      time.Now,
		log:      logger.With().Str("component", "reminder_watcher").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.Check(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn().Err(err).Msg("reminder check failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Check emits every due reminder once. It does nothing while paused.
func (w *Watcher) Check(ctx context.Context) error {
	if w.state != nil && w.state.Paused() {
		return nil
	}

	due, err := w.store.Due(ctx, w.now())
	if err != nil {
		return err
	}

	for _, r := range due {
		select {
		case w.events <- workflow.NoticeEvent{Text: fmt.Sprintf("⏰ Reminder: %s", r.Task)}:
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := w.store.MarkNotified(ctx, r.ID); err != nil {
			return fmt.Errorf("mark reminder %d: %w", r.ID, err)
		}
		w.log.Info().Int64("id", r.ID).Str("task", r.Task).Msg("reminder due")
	}
	return nil
}
