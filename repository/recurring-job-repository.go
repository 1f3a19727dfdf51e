package repository

import (
	"time"

	"gorm.io/gorm"
)

type JobType string

const (
	RefreshMatchStatuses JobType = "RefreshMatchStatuses"
	SnapshotStandings    JobType = "SnapshotStandings"
	PruneCommandRuns     JobType = "PruneCommandRuns"
)

type RecurringJob struct {
	JobType                  JobType   `gorm:"primaryKey;not null;unique"`
	SleepAfterEachRunSeconds int       `gorm:"not null"`
	EndDate                  time.Time `gorm:"not null"`
}

type RecurringJobRepository struct {
	DB *gorm.DB
}

func NewRecurringJobRepository(db *gorm.DB) *RecurringJobRepository {
	return &RecurringJobRepository{DB: db}
}

func (r *RecurringJobRepository) CreateRecurringJob(job *RecurringJob) error {
	r.DB.Delete(&RecurringJob{}, "job_type = ?", job.JobType)
	return r.DB.Create(job).Error
}

func (r *RecurringJobRepository) GetAllJobs() (jobs []*RecurringJob, err error) {
	err = r.DB.Find(&jobs).Error
	return jobs, err
}
