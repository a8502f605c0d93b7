package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"sjsage522/carwatcher/internal/crawler"
	"sjsage522/carwatcher/logger"
	scerrors "sjsage522/carwatcher/pkg/errors"
	"sjsage522/carwatcher/services/notifier"
	"sjsage522/carwatcher/services/store"
)

// State is the scheduler lifecycle state
type State string

const (
	StateIdle                State = "idle"
	StateRunning             State = "running"
	StateStoppedByUser       State = "stopped_by_user"
	StateStoppedByFatalError State = "stopped_by_fatal_error"
)

// Worker runs the fetch, notify and persist cycle on a fixed interval
type Worker struct {
	crawler  crawler.Crawler
	notifier notifier.Notifier
	store    store.SeenStore
	log      *logger.Logger

	interval time.Duration
	cooldown time.Duration

	mu    sync.Mutex
	state State
}

// NewWorker creates a new worker
func NewWorker(
	c crawler.Crawler,
	n notifier.Notifier,
	s store.SeenStore,
	interval time.Duration,
	cooldown time.Duration,
) *Worker {
	return &Worker{
		crawler:  c,
		notifier: n,
		store:    s,
		log:      logger.ForScheduler(),
		interval: interval,
		cooldown: cooldown,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// Start runs cycles until ctx is cancelled or a configuration error occurs.
// Cancellation is observed only between cycles and during the sleep; a running
// cycle always finishes its notification and persist.
// It returns nil on a user stop and the fatal error otherwise.
func (w *Worker) Start(ctx context.Context) error {
	w.setState(StateRunning)
	w.log.Info().
		Dur("interval", w.interval).
		Dur("cooldown", w.cooldown).
		Str("crawler", w.crawler.GetName()).
		Str("notifier", w.notifier.Name()).
		Msg("Scheduler started")

	for {
		if ctx.Err() != nil {
			return w.stop()
		}

		start := time.Now()
		count, err := w.RunCycle(context.WithoutCancel(ctx))
		wait := w.interval

		if err != nil {
			if scerrors.IsFatal(err) {
				w.log.Error().Err(err).Msg("Fatal error, stopping scheduler")
				w.persist()
				w.setState(StateStoppedByFatalError)
				return err
			}
			var se *scerrors.ScraperError
			if errors.As(err, &se) && se.IsRetryable() {
				w.log.Warn().
					Err(err).
					Dur("cooldown", w.cooldown).
					Msg("Cycle failed, retrying after cooldown")
			} else {
				logger.LogError("scheduler", err, "Cycle failed, retrying after %s", w.cooldown)
			}
			wait = w.cooldown
		} else {
			w.log.Info().
				Int("new_listings", count).
				Dur("elapsed", time.Since(start)).
				Dur("next_check_in", wait).
				Msg("Cycle finished")
		}

		if !sleep(ctx, wait) {
			return w.stop()
		}
	}
}

// RunCycle fetches new listings, notifies and persists the seen store.
// Notification failures are logged and never block persistence.
func (w *Worker) RunCycle(ctx context.Context) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panicked: %v", r)
		}
	}()

	listings, err := w.crawler.FetchListings(ctx)
	if err != nil {
		return 0, err
	}
	if len(listings) == 0 {
		w.log.Info().Msg("No new listings found")
		return 0, nil
	}

	w.log.Info().Int("count", len(listings)).Msg("Found new listings")

	if err := w.notifier.Notify(ctx, listings); err != nil {
		w.log.Error().Err(err).Str("notifier", w.notifier.Name()).Msg("Notification failed")
	}

	if err := w.store.Persist(); err != nil {
		return len(listings), scerrors.NewStore("scheduler", "failed to persist seen listings", err)
	}

	return len(listings), nil
}

func (w *Worker) stop() error {
	w.log.Info().Msg("Stop requested, saving seen listings")
	w.persist()
	w.setState(StateStoppedByUser)
	return nil
}

func (w *Worker) persist() {
	if err := w.store.Persist(); err != nil {
		w.log.Error().Err(err).Msg("Failed to persist seen listings")
	}
}

// sleep waits for d and reports false when ctx was cancelled first
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
