// Package daemon runs scheduled episode production. It enforces
// single-instance execution via a lock file and triggers one run per day at
// the configured time, skipping days whose run already completed.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"showrunner/internal/config"
	"showrunner/internal/logging"
	"showrunner/internal/state"
	"showrunner/internal/workflow"
)

// Daemon owns the schedule loop and the single-instance lock.
type Daemon struct {
	cfg    *config.Config
	store  *state.Store
	runner *workflow.Runner
	collab workflow.Collaborators
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	now     func() time.Time
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *state.Store, runner *workflow.Runner, collab workflow.Collaborators, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || runner == nil {
		return nil, errors.New("daemon requires config, store, and runner")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "showrunner.lock")
	return &Daemon{
		cfg:      cfg,
		store:    store,
		runner:   runner,
		collab:   collab,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		now:      time.Now,
	}, nil
}

// LockPath returns the lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

// Run acquires the instance lock and blocks on the schedule loop until ctx is
// canceled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another instance holds %s", d.lockPath)
	}
	defer func() {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release lock", logging.Error(unlockErr))
		}
	}()

	d.running.Store(true)
	defer d.running.Store(false)

	hour, minute, err := config.ParseRunAt(d.cfg.Workflow.RunAt)
	if err != nil {
		return fmt.Errorf("parse run schedule: %w", err)
	}

	d.logger.Info("daemon started",
		logging.String("run_at", d.cfg.Workflow.RunAt),
		logging.String("lock", d.lockPath))

	for {
		next := NextTrigger(d.now(), hour, minute)
		d.logger.Info("next run scheduled",
			logging.String("at", next.Format(time.RFC3339)))

		timer := time.NewTimer(next.Sub(d.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			d.logger.Info("daemon stopping")
			return ctx.Err()
		case <-timer.C:
		}

		d.trigger(ctx, next)
	}
}

// trigger performs one scheduled run unless today's run already completed.
func (d *Daemon) trigger(ctx context.Context, scheduled time.Time) {
	lastRun, ok, err := d.store.LastRunAt(ctx)
	if err != nil {
		d.logger.Error("failed to read last run stamp", logging.Error(err))
		return
	}
	if ok && SameDay(lastRun, scheduled) {
		d.logger.Info("run already completed today, skipping",
			logging.String("last_run", lastRun.Format(time.RFC3339)))
		return
	}

	if _, err := d.runner.Run(ctx, d.collab); err != nil {
		// The runner has already alerted and recorded the failure.
		d.logger.Error("scheduled run failed", logging.Error(err))
	}
}

// NextTrigger returns the next occurrence of hour:minute strictly after now.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SameDay reports whether both instants fall on the same calendar day once
// normalized to b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
