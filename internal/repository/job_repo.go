package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"psenrich/internal/models"
	"psenrich/internal/pkg/utils"
)

const maxErrorLen = 2000

// ErrActiveJobExists is returned by Create when the unique active index
// rejects a second non-terminal job.
var ErrActiveJobExists = errors.New("an active enrichment job already exists")

// EnrichmentJobRepository handles the enrichment job table. Counter and
// status mutations are reserved for the runner; the API layer only reads
// rows and requests cancellation.
type EnrichmentJobRepository struct {
	db *gorm.DB
}

func NewEnrichmentJobRepository(db *gorm.DB) *EnrichmentJobRepository {
	return &EnrichmentJobRepository{db: db}
}

// Create inserts a new queued job holding the single-flight slot. While
// another non-terminal job exists the unique index on `active` rejects the
// insert and gorm.ErrDuplicatedKey comes back, so two concurrent starts can
// never both create a job.
func (r *EnrichmentJobRepository) Create(request models.JSONText) (*models.EnrichmentJob, error) {
	active := true
	job := &models.EnrichmentJob{
		ID:      utils.GenerateUUID(),
		Status:  models.JobStatusQueued,
		Request: request,
		Active:  &active,
	}
	if err := r.db.Create(job).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrActiveJobExists
		}
		return nil, err
	}
	return job, nil
}

func (r *EnrichmentJobRepository) Get(id string) (*models.EnrichmentJob, error) {
	var job models.EnrichmentJob
	if err := r.db.First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// FindActive returns the most recently created non-terminal job, if any,
// plus the number of non-terminal rows. More than one is impossible under
// the unique active index; callers log a nonzero surplus as an integrity
// anomaly rather than failing.
func (r *EnrichmentJobRepository) FindActive() (*models.EnrichmentJob, int64, error) {
	var count int64
	err := r.db.Model(&models.EnrichmentJob{}).
		Where("status IN ?", models.NonTerminalStatuses).
		Count(&count).Error
	if err != nil {
		return nil, 0, err
	}
	if count == 0 {
		return nil, 0, nil
	}

	var job models.EnrichmentJob
	err = r.db.Where("status IN ?", models.NonTerminalStatuses).
		Order("created_at DESC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return &job, count, nil
}

// RequestCancel sets cancel_requested and returns the updated row. The flag
// never reverts, so a repeat call is a no-op and a call on a terminal job
// changes nothing observable.
func (r *EnrichmentJobRepository) RequestCancel(id string) (*models.EnrichmentJob, error) {
	res := r.db.Model(&models.EnrichmentJob{}).
		Where("id = ? AND cancel_requested = ?", id, false).
		Update("cancel_requested", true)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.Get(id)
}

// IsCancelRequested re-reads the cancel flag; the runner calls this at the
// top of every work-item iteration.
func (r *EnrichmentJobRepository) IsCancelRequested(id string) (bool, error) {
	var job models.EnrichmentJob
	if err := r.db.Select("cancel_requested").First(&job, "id = ?", id).Error; err != nil {
		return false, err
	}
	return job.CancelRequested, nil
}

// MarkRunning transitions queued -> running and stamps started_at.
func (r *EnrichmentJobRepository) MarkRunning(id string) error {
	return r.db.Model(&models.EnrichmentJob{}).
		Where("id = ? AND status = ?", id, models.JobStatusQueued).
		Updates(map[string]interface{}{
			"status":     models.JobStatusRunning,
			"started_at": time.Now(),
		}).Error
}

// SetTotal records the size of the resolved work list, once, before the loop.
func (r *EnrichmentJobRepository) SetTotal(id string, total int) error {
	return r.db.Model(&models.EnrichmentJob{}).
		Where("id = ?", id).
		Update("total_items", total).Error
}

// SetCurrent persists the name about to be handed to the enricher, so a
// crash mid-item leaves an accurate last-attempted marker.
func (r *EnrichmentJobRepository) SetCurrent(id, name string) error {
	return r.db.Model(&models.EnrichmentJob{}).
		Where("id = ?", id).
		Update("current_cmdlet", name).Error
}

// RecordItem bumps the progress counters after one work item: processed
// always advances by one, and exactly one of succeeded/failed advances with
// it. Increments happen in SQL so the counters stay monotonic regardless of
// what snapshot the runner holds.
func (r *EnrichmentJobRepository) RecordItem(id string, ok bool) error {
	outcome := "failed_items"
	if ok {
		outcome = "succeeded_items"
	}
	return r.db.Model(&models.EnrichmentJob{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_items": gorm.Expr("processed_items + 1"),
			outcome:           gorm.Expr(outcome + " + 1"),
		}).Error
}

// Finalize moves the job to a terminal status exactly once: stamps
// finished_at, clears current_cmdlet and releases the single-flight slot.
// The status guard makes it a no-op on an already-terminal job.
func (r *EnrichmentJobRepository) Finalize(id, status, errMsg string) error {
	updates := map[string]interface{}{
		"status":         status,
		"finished_at":    time.Now(),
		"current_cmdlet": nil,
		"active":         nil,
	}
	if errMsg != "" {
		updates["last_error"] = trimErr(errMsg)
	}
	return r.db.Model(&models.EnrichmentJob{}).
		Where("id = ? AND status IN ?", id, models.NonTerminalStatuses).
		Updates(updates).Error
}

// FailOrphaned finalizes every job left non-terminal by a previous process.
// Run at startup so a crash can never wedge the single-flight slot.
func (r *EnrichmentJobRepository) FailOrphaned(reason string) (int64, error) {
	res := r.db.Model(&models.EnrichmentJob{}).
		Where("status IN ?", models.NonTerminalStatuses).
		Updates(map[string]interface{}{
			"status":         models.JobStatusFailed,
			"last_error":     trimErr(reason),
			"finished_at":    time.Now(),
			"current_cmdlet": nil,
			"active":         nil,
		})
	return res.RowsAffected, res.Error
}

func trimErr(msg string) string {
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen]
	}
	return msg
}
