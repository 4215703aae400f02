package cron

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"psenrich/internal/enrich"
	"psenrich/internal/models"
)

// Scheduler runs the periodic maintenance tasks of the enrichment service.
type Scheduler struct {
	cron   *cron.Cron
	runner *enrich.Runner
	logger *zap.Logger
}

// New creates a new cron scheduler.
func New(runner *enrich.Runner, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
		logger: logger,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	s.logger.Info("Starting cron scheduler...")

	// Stale-card sweep - daily at 04:10
	s.cron.AddFunc("0 10 4 * * *", func() {
		s.logger.Debug("Running: stale card sweep")
		s.staleCardSweep()
	})

	s.cron.Start()
}

// Stop halts scheduling; a sweep already handed to the runner keeps going.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// staleCardSweep refreshes cards older than the configured window. When an
// enrichment job is already active the sweep simply skips this round; the
// next night picks the work up again.
func (s *Scheduler) staleCardSweep() {
	job, alreadyRunning, err := s.runner.Start(models.EnrichRequest{Stale: true})
	if err != nil {
		s.logger.Error("Stale sweep failed to start", zap.Error(err))
		return
	}
	if alreadyRunning {
		s.logger.Info("Stale sweep skipped, enrichment job already active",
			zap.String("job_id", job.ID))
		return
	}
	s.logger.Info("Stale sweep started", zap.String("job_id", job.ID))
}
