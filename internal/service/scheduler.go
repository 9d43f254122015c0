package service

import (
	"context"
	"fmt"
	"sync"

	"tradepilot/config"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/apperrors"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	Execute(ctx context.Context) error
	GetJobSchedule(ctx context.Context, param model.GetJobParam) ([]model.Job, error)
	RunJobTask(ctx context.Context, jobID uint) error
	Wait()
}

type schedulerService struct {
	cfg          *config.Config
	log          *logger.Logger
	cronParser   cron.Parser
	jobRepo      repository.JobRepository
	taskExecutor TaskExecutor
	semaphore    chan struct{}
	wg           sync.WaitGroup
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	jobRepo repository.JobRepository,
	taskExecutor TaskExecutor,
) SchedulerService {
	return &schedulerService{
		cfg:          cfg,
		log:          log,
		jobRepo:      jobRepo,
		cronParser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		taskExecutor: taskExecutor,
		semaphore:    make(chan struct{}, max(cfg.Scheduler.MaxConcurrency, 1)),
	}
}

// Execute starts every due schedule. Runs continue in the background with
// their own timeout; Wait blocks until they finish.
func (s *schedulerService) Execute(ctx context.Context) error {
	schedules, err := s.jobRepo.FindDueSchedules(ctx, utils.TimeNowUTC(), utils.WithPreload("Job"))
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to find jobs to schedule", logger.ErrorField(err))
		return fmt.Errorf("failed to find jobs to schedule: %w", err)
	}

	if len(schedules) == 0 {
		s.log.DebugContext(ctx, "No jobs to schedule")
		return nil
	}
	s.log.InfoContext(ctx, "Start running jobs",
		logger.IntField("job_count", len(schedules)),
		logger.IntField("max_concurrency", cap(s.semaphore)),
	)

	for _, schedule := range schedules {
		if ctx.Err() != nil {
			s.log.WarnContext(ctx, "Job execution cancelled", logger.ErrorField(ctx.Err()))
			return nil
		}
		if schedule.Job == nil {
			s.log.WarnContext(ctx, "Schedule has no job", logger.IntField("schedule_id", int(schedule.ID)))
			continue
		}

		if err := s.executeJob(ctx, schedule); err != nil {
			s.log.ErrorContextWithAlert(ctx, "Failed to execute job",
				logger.ErrorField(err),
				logger.IntField("job_id", int(schedule.JobID)),
				logger.IntField("schedule_id", int(schedule.ID)),
				logger.StringField("job_name", schedule.Job.Name),
				logger.StringField("job_type", schedule.Job.Type),
			)
		}
	}

	return nil
}

func (s *schedulerService) executeJob(ctx context.Context, task model.TaskSchedule) error {
	job := task.Job
	s.log.DebugContext(ctx, "Executing job",
		logger.IntField("job_id", int(task.JobID)),
		logger.IntField("schedule_id", int(task.ID)),
		logger.StringField("job_name", job.Name),
		logger.StringField("job_type", job.Type),
		logger.IntField("timeout", job.Timeout),
		logger.IntField("active_concurrency", len(s.semaphore)),
		logger.IntField("max_concurrency", cap(s.semaphore)),
	)

	now := utils.TimeNowUTC()
	history := &model.TaskExecutionHistory{
		JobID:      task.JobID,
		ScheduleID: task.ID,
		Status:     model.StatusRunning,
		StartedAt:  now,
	}

	if err := s.jobRepo.CreateTaskExecutionHistory(ctx, history); err != nil {
		s.log.ErrorContext(ctx, "Failed to create task history", logger.ErrorField(err), logger.IntField("schedule_id", int(task.ID)))
		return fmt.Errorf("failed to create task history: %w", err)
	}

	s.semaphore <- struct{}{}
	s.wg.Add(1)
	utils.GoSafe(func() {
		defer func() {
			<-s.semaphore
			s.wg.Done()
		}()

		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), job.TimeoutDuration())
		defer cancel()

		if err := s.taskExecutor.Execute(runCtx, job, history); err != nil {
			s.log.ErrorContextWithAlert(runCtx, "Failed to execute task", logger.ErrorField(err), logger.IntField("schedule_id", int(task.ID)))
		}
	})

	if task.CronExpression == "" {
		return nil
	}
	cronSchedule, err := s.cronParser.Parse(task.CronExpression)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to parse cron expression", logger.ErrorField(err), logger.IntField("schedule_id", int(task.ID)))
		return fmt.Errorf("failed to parse cron expression: %w", err)
	}

	task.Advance(now, cronSchedule.Next(now))
	if err := s.jobRepo.UpdateTaskSchedule(ctx, &task); err != nil {
		s.log.ErrorContext(ctx, "Failed to update task schedule", logger.ErrorField(err), logger.IntField("schedule_id", int(task.ID)))
		return fmt.Errorf("failed to update task schedule: %w", err)
	}
	return nil
}

func (s *schedulerService) GetJobSchedule(ctx context.Context, param model.GetJobParam) ([]model.Job, error) {
	return s.jobRepo.Get(ctx, &param)
}

// RunJobTask runs the first schedule of a job immediately.
func (s *schedulerService) RunJobTask(ctx context.Context, jobID uint) error {
	s.log.InfoContext(ctx, "Running job task", logger.IntField("job_id", int(jobID)))
	jobs, err := s.jobRepo.Get(ctx, &model.GetJobParam{IDs: []uint{jobID}})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to find job", logger.ErrorField(err), logger.IntField("job_id", int(jobID)))
		return fmt.Errorf("failed to find job: %w", err)
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%w: job %d", apperrors.ErrNotFound, jobID)
	}
	if len(jobs[0].Schedules) == 0 {
		return fmt.Errorf("%w: job %d has no schedule", apperrors.ErrNotFound, jobID)
	}

	schedule := jobs[0].Schedules[0]
	if schedule.Job == nil {
		schedule.Job = &jobs[0]
	}
	return s.executeJob(ctx, schedule)
}

func (s *schedulerService) Wait() {
	s.wg.Wait()
}
