// Package maintenance runs the scheduled background jobs: value-log
// garbage collection for the record database and a daily record-count
// summary.
package maintenance

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/carescan/carescan/internal/config"
	"github.com/carescan/carescan/internal/store"
)

// Runner owns the cron scheduler. Jobs run on the scheduler's
// goroutine; Stop waits for an in-flight job to finish.
type Runner struct {
	cfg    config.MaintenanceConfig
	store  *store.Store
	logger *zap.Logger
	cron   *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewRunner creates a maintenance runner.
func NewRunner(cfg config.MaintenanceConfig, st *store.Store, logger *zap.Logger) *Runner {
	if cfg.GCSchedule == "" {
		cfg.GCSchedule = "@every 1h"
	}
	if cfg.LogSchedule == "" {
		cfg.LogSchedule = "@daily"
	}

	return &Runner{
		cfg:    cfg,
		store:  st,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start registers the jobs and starts the scheduler.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("maintenance runner already running")
	}

	if _, err := r.cron.AddFunc(r.cfg.GCSchedule, r.runGC); err != nil {
		return fmt.Errorf("invalid gc schedule %q: %w", r.cfg.GCSchedule, err)
	}
	if _, err := r.cron.AddFunc(r.cfg.LogSchedule, r.logSummary); err != nil {
		return fmt.Errorf("invalid log schedule %q: %w", r.cfg.LogSchedule, err)
	}

	r.cron.Start()
	r.running = true

	r.logger.Info("maintenance runner started",
		zap.String("gc_schedule", r.cfg.GCSchedule),
		zap.String("log_schedule", r.cfg.LogSchedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	r.running = false
	r.logger.Info("maintenance runner stopped")
}

// runGC reclaims record-database value-log space. Badger reports
// ErrNoRewrite when there is nothing to collect; that is not a fault.
func (r *Runner) runGC() {
	if err := r.store.RunValueLogGC(); err != nil {
		r.logger.Debug("value log gc skipped", zap.Error(err))
		return
	}
	r.logger.Info("value log gc completed")
}

func (r *Runner) logSummary() {
	r.logger.Info("record summary",
		zap.Int("predictions", len(r.store.ListPredictions())),
		zap.Int("medications", len(r.store.ListMedications())),
		zap.Int("contacts", len(r.store.ListContacts())))
}
