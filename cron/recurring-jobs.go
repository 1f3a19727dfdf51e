package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"battlescore/repository"
	"battlescore/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const commandRunRetention = 30 * 24 * time.Hour

type RecurringJob struct {
	JobType                  repository.JobType `json:"job_type" binding:"required"`
	SleepAfterEachRunSeconds int                `json:"sleep_after_each_run_seconds" binding:"required"`
	Cancel                   context.CancelFunc `json:"-"`
	EndDate                  time.Time          `json:"end_date" binding:"required"`
}

// RecurringJobService runs the periodic maintenance jobs. Every run is
// recorded as a CommandRun audit row.
type RecurringJobService struct {
	tournamentRepository *repository.TournamentRepository
	jobRepository        *repository.RecurringJobRepository
	commandRunRepository *repository.CommandRunRepository
	matchService         *service.MatchService
	standingService      *service.StandingService
	Jobs                 map[repository.JobType]*RecurringJob
}

func NewRecurringJobService(db *gorm.DB) *RecurringJobService {
	s := &RecurringJobService{
		tournamentRepository: repository.NewTournamentRepository(db),
		jobRepository:        repository.NewRecurringJobRepository(db),
		commandRunRepository: repository.NewCommandRunRepository(db),
		matchService:         service.NewMatchService(db),
		standingService:      service.NewStandingService(db),
		Jobs:                 make(map[repository.JobType]*RecurringJob),
	}
	jobs, err := s.InitializeJobs()
	if err != nil {
		slog.Error("failed to initialize recurring jobs", "error", err)
	}
	s.Jobs = jobs
	return s
}

func (s *RecurringJobService) InitializeJobs() (map[repository.JobType]*RecurringJob, error) {
	jobs := make(map[repository.JobType]*RecurringJob)
	repoJobs, err := s.jobRepository.GetAllJobs()
	if err != nil {
		return jobs, err
	}
	for _, job := range repoJobs {
		jobs[job.JobType] = &RecurringJob{
			JobType:                  job.JobType,
			SleepAfterEachRunSeconds: job.SleepAfterEachRunSeconds,
			EndDate:                  job.EndDate,
		}
		serviceJob := jobs[job.JobType]
		if job.EndDate.Before(time.Now()) {
			continue
		}
		if err := s.StartJob(serviceJob); err != nil {
			slog.Error("failed to start recurring job", "jobType", job.JobType, "error", err)
			if serviceJob.Cancel != nil {
				serviceJob.Cancel()
			}
			jobs[job.JobType] = nil
		}
	}
	return jobs, nil
}

// StartJob persists the job definition and launches its loop, replacing a
// running instance of the same type.
func (s *RecurringJobService) StartJob(job *RecurringJob) error {
	if existingJob, ok := s.Jobs[job.JobType]; ok && existingJob != nil {
		if existingJob.Cancel != nil {
			existingJob.Cancel()
		}
	}
	if err := s.jobRepository.CreateRecurringJob(&repository.RecurringJob{
		JobType:                  job.JobType,
		SleepAfterEachRunSeconds: job.SleepAfterEachRunSeconds,
		EndDate:                  job.EndDate,
	}); err != nil {
		return err
	}
	s.Jobs[job.JobType] = job

	switch job.JobType {
	case repository.RefreshMatchStatuses:
		return s.runLoop(job, s.refreshMatchStatuses)
	case repository.SnapshotStandings:
		return s.runLoop(job, s.snapshotStandings)
	case repository.PruneCommandRuns:
		return s.runLoop(job, s.pruneCommandRuns)
	default:
		return fmt.Errorf("invalid job type %s", job.JobType)
	}
}

type jobFunc func(ctx context.Context) (stats map[string]int, err error)

func (s *RecurringJobService) runLoop(job *RecurringJob, run jobFunc) error {
	ctx, cancel := context.WithDeadline(context.Background(), job.EndDate)
	job.Cancel = cancel
	go func() {
		defer cancel()
		ticker := time.NewTicker(time.Duration(job.SleepAfterEachRunSeconds) * time.Second)
		defer ticker.Stop()
		for {
			s.auditedRun(ctx, job.JobType, run)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// auditedRun wraps one job execution in a CommandRun row.
func (s *RecurringJobService) auditedRun(ctx context.Context, jobType repository.JobType, run jobFunc) {
	now := time.Now()
	commandRun := &repository.CommandRun{
		Name:      string(jobType),
		Status:    repository.CommandRunRunning,
		RequestId: uuid.NewString(),
		DateStart: &now,
	}
	commandRun, err := s.commandRunRepository.Save(commandRun)
	if err != nil {
		slog.Error("failed to record job run", "jobType", jobType, "error", err)
		return
	}

	stats, runErr := run(ctx)
	end := time.Now()
	commandRun.DateEnd = &end
	if serialized, err := json.Marshal(stats); err == nil {
		commandRun.Stats = string(serialized)
	}
	if runErr != nil {
		commandRun.Status = repository.CommandRunFailed
		if serialized, err := json.Marshal(map[string]string{"error": runErr.Error()}); err == nil {
			commandRun.Errors = string(serialized)
		}
		slog.Error("recurring job run failed", "jobType", jobType, "error", runErr)
	} else {
		commandRun.Status = repository.CommandRunSuccess
	}
	if _, err := s.commandRunRepository.Save(commandRun); err != nil {
		slog.Error("failed to update job run record", "jobType", jobType, "error", err)
	}
}

func (s *RecurringJobService) refreshMatchStatuses(ctx context.Context) (map[string]int, error) {
	tournaments, err := s.tournamentRepository.GetOngoingTournaments()
	if err != nil {
		return nil, err
	}
	stats := map[string]int{"tournaments": len(tournaments), "started": 0, "created": 0}
	for _, tournament := range tournaments {
		created, err := s.matchService.CreateNextMatches(ctx, tournament.Id)
		if err != nil {
			return stats, err
		}
		stats["created"] += len(created)
		started, err := s.matchService.RefreshMatchStatuses(ctx, tournament.Id)
		if err != nil {
			return stats, err
		}
		stats["started"] += len(started)
	}
	return stats, nil
}

func (s *RecurringJobService) snapshotStandings(ctx context.Context) (map[string]int, error) {
	tournaments, err := s.tournamentRepository.GetOngoingTournaments()
	if err != nil {
		return nil, err
	}
	stats := map[string]int{"tournaments": len(tournaments)}
	for _, tournament := range tournaments {
		if _, err := s.standingService.RefreshStandings(ctx, tournament.Id); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (s *RecurringJobService) pruneCommandRuns(ctx context.Context) (map[string]int, error) {
	return map[string]int{}, s.commandRunRepository.PruneOldRuns(time.Now().Add(-commandRunRetention))
}
