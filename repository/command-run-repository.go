package repository

import (
	"time"

	"gorm.io/gorm"
)

type CommandRunStatus string

const (
	CommandRunCreated CommandRunStatus = "CREATED"
	CommandRunRunning CommandRunStatus = "RUNNING"
	CommandRunSuccess CommandRunStatus = "SUCCESS"
	CommandRunFailed  CommandRunStatus = "FAILED"
)

// CommandRun is the audit record of one background job run.
type CommandRun struct {
	Id        int              `gorm:"primaryKey"`
	Name      string           `gorm:"not null;size:64"`
	Status    CommandRunStatus `gorm:"type:battle.command_run_status;not null;default:'CREATED'"`
	RequestId string           `gorm:"not null;size:36"`
	DateStart *time.Time       `gorm:"null"`
	DateEnd   *time.Time       `gorm:"null"`
	Stats     string           `gorm:"type:jsonb;not null;default:'{}'"`
	Errors    string           `gorm:"type:jsonb;not null;default:'{}'"`
	KeepIt    bool             `gorm:"not null;default:false"`
	Timestamps
}

// Duration returns the run duration, or zero when the run has not finished.
func (c *CommandRun) Duration() time.Duration {
	if c.DateStart == nil || c.DateEnd == nil {
		return 0
	}
	return c.DateEnd.Sub(*c.DateStart)
}

type CommandRunRepository struct {
	DB *gorm.DB
}

func NewCommandRunRepository(db *gorm.DB) *CommandRunRepository {
	return &CommandRunRepository{DB: db}
}

func (r *CommandRunRepository) Save(run *CommandRun) (*CommandRun, error) {
	result := r.DB.Save(run)
	if result.Error != nil {
		return nil, result.Error
	}
	return run, nil
}

func (r *CommandRunRepository) GetRecentRuns(limit int) ([]*CommandRun, error) {
	runs := make([]*CommandRun, 0)
	result := r.DB.Order("date_created DESC").Limit(limit).Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

// PruneOldRuns deletes finished runs older than the cutoff unless flagged to
// be kept.
func (r *CommandRunRepository) PruneOldRuns(cutoff time.Time) error {
	result := r.DB.Delete(&CommandRun{},
		"keep_it = false AND status IN ? AND date_created < ?",
		[]CommandRunStatus{CommandRunSuccess, CommandRunFailed}, cutoff)
	return result.Error
}
