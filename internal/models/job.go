package models

import "time"

// Enrichment job statuses. Queued and running are the only non-terminal
// states; a job never leaves a terminal state once it reaches one.
const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// NonTerminalStatuses is the WHERE-clause form of the active-job filter.
var NonTerminalStatuses = []string{JobStatusQueued, JobStatusRunning}

// EnrichmentJob stores one run of the command-enrichment workflow. The row is
// mutated only by the runner; the API layer reads it and sets cancel_requested.
//
// Active is 1 while the job is non-terminal and NULL once finalized. The
// unique index on it is the single-flight constraint: MySQL ignores NULLs in
// unique indexes, so at most one non-terminal row can exist and a concurrent
// second create fails with a duplicate-key error instead of racing.
type EnrichmentJob struct {
	ID              string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	Status          string     `gorm:"column:status;size:30;index:idx_enrichment_jobs_status" json:"status"`
	Request         JSONText   `gorm:"column:request;type:text" json:"request"`
	Active          *bool      `gorm:"column:active;uniqueIndex:uniq_enrichment_jobs_active" json:"-"`
	TotalItems      int        `gorm:"column:total_items;default:0" json:"total"`
	ProcessedItems  int        `gorm:"column:processed_items;default:0" json:"processed"`
	SucceededItems  int        `gorm:"column:succeeded_items;default:0" json:"succeeded"`
	FailedItems     int        `gorm:"column:failed_items;default:0" json:"failed"`
	CurrentCmdlet   *string    `gorm:"column:current_cmdlet;size:200" json:"currentCmdlet"`
	CancelRequested bool       `gorm:"column:cancel_requested;default:false" json:"cancelRequested"`
	LastError       *string    `gorm:"column:last_error;type:text" json:"error"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	StartedAt       *time.Time `gorm:"column:started_at" json:"startedAt"`
	FinishedAt      *time.Time `gorm:"column:finished_at" json:"finishedAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (EnrichmentJob) TableName() string {
	return "enrichment_jobs"
}

// IsTerminal reports whether the job has reached a final state.
func (j *EnrichmentJob) IsTerminal() bool {
	switch j.Status {
	case JobStatusSucceeded, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}
