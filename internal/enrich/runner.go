package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"psenrich/internal/models"
	"psenrich/internal/repository"
)

// JobStore is the slice of the job repository the runner mutates. Only the
// runner goes through the mutating methods; the API layer stays on Get and
// RequestCancel.
type JobStore interface {
	Create(request models.JSONText) (*models.EnrichmentJob, error)
	FindActive() (*models.EnrichmentJob, int64, error)
	MarkRunning(id string) error
	SetTotal(id string, total int) error
	SetCurrent(id, name string) error
	RecordItem(id string, ok bool) error
	IsCancelRequested(id string) (bool, error)
	Finalize(id, status, errMsg string) error
}

// CardStore persists enrichment output.
type CardStore interface {
	Upsert(card *models.CmdletCard) error
}

// WorkSource resolves the cmdlet names a start request selects.
type WorkSource interface {
	ListWorkNames(req models.EnrichRequest, staleAfter time.Duration) ([]string, error)
}

// CacheInvalidator drops a cached card after re-enrichment.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, name string)
}

// Stores bundles the storage collaborators of the runner.
type Stores struct {
	Jobs   JobStore
	Cards  CardStore
	Source WorkSource
}

// Runner executes the enrichment workflow for one job at a time: it holds
// the single-flight start guard and drives a queued job to a terminal state
// while recording progress after every item.
type Runner struct {
	jobs        JobStore
	cards       CardStore
	source      WorkSource
	enricher    Enricher
	cache       CacheInvalidator
	logger      *zap.Logger
	itemTimeout time.Duration
	staleAfter  time.Duration
}

// NewRunner creates a runner. cache may be nil.
func NewRunner(stores *Stores, enricher Enricher, cache CacheInvalidator, logger *zap.Logger, itemTimeout, staleAfter time.Duration) *Runner {
	if itemTimeout <= 0 {
		itemTimeout = 2 * time.Minute
	}
	return &Runner{
		jobs:        stores.Jobs,
		cards:       stores.Cards,
		source:      stores.Source,
		enricher:    enricher,
		cache:       cache,
		logger:      logger,
		itemTimeout: itemTimeout,
		staleAfter:  staleAfter,
	}
}

// Start returns the active job when one exists, otherwise creates a queued
// job and hands it to a background goroutine. Start returns before the run
// makes any progress; callers poll the status endpoint to follow it.
func (r *Runner) Start(req models.EnrichRequest) (*models.EnrichmentJob, bool, error) {
	job, surplus, err := r.jobs.FindActive()
	if err != nil {
		return nil, false, err
	}
	if job != nil {
		if surplus > 1 {
			r.logger.Error("Multiple non-terminal enrichment jobs in storage",
				zap.Int64("count", surplus),
				zap.String("returned_job_id", job.ID))
		}
		return job, true, nil
	}

	raw, err := json.Marshal(req)
	if err != nil {
		return nil, false, err
	}

	job, err = r.jobs.Create(models.JSONText(raw))
	if err != nil {
		if errors.Is(err, repository.ErrActiveJobExists) {
			// Lost the create race to a concurrent start; join its job.
			existing, _, findErr := r.jobs.FindActive()
			if findErr == nil && existing != nil {
				return existing, true, nil
			}
			return nil, false, err
		}
		return nil, false, err
	}

	go r.run(job.ID, req)

	return job, false, nil
}

// run is the asynchronous job body. Per-item enrichment failures are
// absorbed into the failed counter; only storage failures (or a panic)
// finalize the job as failed.
func (r *Runner) run(jobID string, req models.EnrichRequest) {
	defer r.recoverFromPanic(jobID)

	if err := r.jobs.MarkRunning(jobID); err != nil {
		r.fail(jobID, fmt.Errorf("mark running: %w", err))
		return
	}

	names, err := r.source.ListWorkNames(req, r.staleAfter)
	if err != nil {
		r.fail(jobID, fmt.Errorf("resolve work list: %w", err))
		return
	}

	if err := r.jobs.SetTotal(jobID, len(names)); err != nil {
		r.fail(jobID, fmt.Errorf("set total: %w", err))
		return
	}

	r.logger.Info("Enrichment job started",
		zap.String("job_id", jobID),
		zap.Int("total", len(names)))

	for _, name := range names {
		// Cancellation is cooperative: checked here, never by interrupting
		// an in-flight enrichment call.
		cancelled, err := r.jobs.IsCancelRequested(jobID)
		if err != nil {
			r.fail(jobID, fmt.Errorf("read cancel flag: %w", err))
			return
		}
		if cancelled {
			r.logger.Info("Enrichment job cancelled", zap.String("job_id", jobID))
			r.finish(jobID, models.JobStatusCancelled, "")
			return
		}

		if err := r.jobs.SetCurrent(jobID, name); err != nil {
			r.fail(jobID, fmt.Errorf("set current cmdlet: %w", err))
			return
		}

		if err := r.processItem(jobID, name); err != nil {
			r.fail(jobID, err)
			return
		}
	}

	r.finish(jobID, models.JobStatusSucceeded, "")
}

// processItem enriches one cmdlet and records the outcome. A non-nil return
// means a storage failure that must abort the whole job.
func (r *Runner) processItem(jobID, name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.itemTimeout)
	card, err := r.enricher.Enrich(ctx, name)
	cancel()
	if err != nil {
		r.logger.Warn("Cmdlet enrichment failed",
			zap.String("job_id", jobID),
			zap.String("cmdlet", name),
			zap.Error(err))
		return r.jobs.RecordItem(jobID, false)
	}

	if err := r.cards.Upsert(card); err != nil {
		return fmt.Errorf("store card for %s: %w", name, err)
	}
	if r.cache != nil {
		r.cache.Invalidate(context.Background(), name)
	}
	return r.jobs.RecordItem(jobID, true)
}

func (r *Runner) finish(jobID, status, errMsg string) {
	if err := r.jobs.Finalize(jobID, status, errMsg); err != nil {
		r.logger.Error("Failed to finalize enrichment job",
			zap.String("job_id", jobID),
			zap.String("status", status),
			zap.Error(err))
		return
	}
	r.logger.Info("Enrichment job finished",
		zap.String("job_id", jobID),
		zap.String("status", status))
}

func (r *Runner) fail(jobID string, cause error) {
	r.logger.Error("Enrichment job failed",
		zap.String("job_id", jobID),
		zap.Error(cause))
	r.finish(jobID, models.JobStatusFailed, cause.Error())
}

func (r *Runner) recoverFromPanic(jobID string) {
	if rec := recover(); rec != nil {
		r.logger.Error("Enrichment runner panicked",
			zap.String("job_id", jobID),
			zap.Any("panic", rec))
		r.finish(jobID, models.JobStatusFailed, fmt.Sprintf("runner panic: %v", rec))
	}
}
