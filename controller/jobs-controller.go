package controller

import (
	"fmt"
	"strconv"
	"time"

	"battlescore/app_error"
	"battlescore/cron"
	"battlescore/repository"
	"battlescore/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const defaultCommandRunLimit = 50

type JobsController struct {
	recurringJobService  *cron.RecurringJobService
	commandRunRepository *repository.CommandRunRepository
}

var jobList = []repository.JobType{
	repository.RefreshMatchStatuses,
	repository.SnapshotStandings,
	repository.PruneCommandRuns,
}

func NewJobsController(db *gorm.DB) *JobsController {
	return &JobsController{
		recurringJobService:  cron.NewRecurringJobService(db),
		commandRunRepository: repository.NewCommandRunRepository(db),
	}
}

func setupJobsController(db *gorm.DB) []RouteInfo {
	e := NewJobsController(db)
	routes := []RouteInfo{
		{Method: "GET", Path: "/jobs", HandlerFunc: e.getJobsHandler(), Authenticated: true, RequiredRoles: []repository.Permission{repository.PermissionAdmin}},
		{Method: "PUT", Path: "/jobs", HandlerFunc: e.startJobHandler(), Authenticated: true, RequiredRoles: []repository.Permission{repository.PermissionAdmin}},
		{Method: "GET", Path: "/command-runs", HandlerFunc: e.getCommandRunsHandler(), Authenticated: true, RequiredRoles: []repository.Permission{repository.PermissionAdmin}},
	}
	return routes
}

type JobCreate struct {
	JobType                  repository.JobType `json:"job_type" binding:"required"`
	SleepAfterEachRunSeconds int                `json:"sleep_after_each_run_seconds" binding:"required"`
	DurationInSeconds        *int               `json:"duration_in_seconds"`
	EndDate                  *time.Time         `json:"end_date"`
}

func (j *JobCreate) toJob() (*cron.RecurringJob, error) {
	if !utils.Contains(jobList, j.JobType) {
		return nil, fmt.Errorf("job type does not exist")
	}
	if j.DurationInSeconds != nil && j.EndDate != nil {
		return nil, fmt.Errorf("cannot specify both duration and end date")
	}
	if j.DurationInSeconds == nil && j.EndDate == nil {
		return nil, fmt.Errorf("must specify either duration or end date")
	}
	if j.DurationInSeconds != nil {
		endDate := time.Now().Add(time.Duration(*j.DurationInSeconds) * time.Second)
		j.EndDate = &endDate
	}
	return &cron.RecurringJob{
		JobType:                  j.JobType,
		SleepAfterEachRunSeconds: j.SleepAfterEachRunSeconds,
		EndDate:                  *j.EndDate,
	}, nil
}

// @id GetJobs
// @Description Fetches the recurring jobs and their schedules
// @Tags jobs
// @Produce json
// @Success 200 {array} cron.RecurringJob
// @Security CookieAuth
// @Router /jobs [get]
func (e *JobsController) getJobsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		jobs := make([]*cron.RecurringJob, 0)
		for _, jobType := range jobList {
			if job, ok := e.recurringJobService.Jobs[jobType]; ok && job != nil {
				jobs = append(jobs, job)
			}
		}
		c.JSON(200, jobs)
	}
}

// @id StartJob
// @Description Starts or reschedules a recurring job
// @Tags jobs
// @Accept json
// @Produce json
// @Param body body JobCreate true "Job"
// @Success 201 {object} cron.RecurringJob
// @Security CookieAuth
// @Router /jobs [put]
func (e *JobsController) startJobHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var create JobCreate
		if err := c.BindJSON(&create); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		job, err := create.toJob()
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if err := e.recurringJobService.StartJob(job); err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(201, job)
	}
}

type CommandRunResponse struct {
	Id        int                         `json:"id" binding:"required"`
	Name      string                      `json:"name" binding:"required"`
	Status    repository.CommandRunStatus `json:"status" binding:"required"`
	RequestId string                      `json:"request_id" binding:"required"`
	DateStart *time.Time                  `json:"date_start"`
	DateEnd   *time.Time                  `json:"date_end"`
	Duration  string                      `json:"duration"`
	Stats     string                      `json:"stats"`
	Errors    string                      `json:"errors"`
}

func toCommandRunResponse(run *repository.CommandRun) *CommandRunResponse {
	return &CommandRunResponse{
		Id:        run.Id,
		Name:      run.Name,
		Status:    run.Status,
		RequestId: run.RequestId,
		DateStart: run.DateStart,
		DateEnd:   run.DateEnd,
		Duration:  run.Duration().String(),
		Stats:     run.Stats,
		Errors:    run.Errors,
	}
}

// @id GetCommandRuns
// @Description Fetches the most recent background job runs
// @Tags jobs
// @Produce json
// @Param limit query int false "Limit"
// @Success 200 {array} CommandRunResponse
// @Security CookieAuth
// @Router /command-runs [get]
func (e *JobsController) getCommandRunsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultCommandRunLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			limit = parsed
		}
		runs, err := e.commandRunRepository.GetRecentRuns(limit)
		if err != nil {
			app_error.Respond(c, err)
			return
		}
		c.JSON(200, utils.Map(runs, toCommandRunResponse))
	}
}
