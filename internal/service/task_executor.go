package service

import (
	"context"
	"errors"
	"fmt"

	"tradepilot/config"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/internal/strategy"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"
)

var errUnknownJobType = errors.New("job type not found")

type TaskExecutor interface {
	Execute(ctx context.Context, job *model.Job, taskHistory *model.TaskExecutionHistory) error
}

type taskExecutor struct {
	cfg                *config.Config
	log                *logger.Logger
	jobRepo            repository.JobRepository
	executorStrategies map[strategy.JobType]strategy.JobExecutionStrategy
}

func NewTaskExecutor(cfg *config.Config, log *logger.Logger, jobRepo repository.JobRepository, executorStrategies map[strategy.JobType]strategy.JobExecutionStrategy) TaskExecutor {
	return &taskExecutor{
		jobRepo:            jobRepo,
		cfg:                cfg,
		log:                log,
		executorStrategies: executorStrategies,
	}
}

// Execute runs the strategy for job and records the outcome on taskHistory.
// Strategy failures are recorded, not returned; only a failed history write
// is an error.
func (t *taskExecutor) Execute(ctx context.Context, job *model.Job, taskHistory *model.TaskExecutionHistory) error {
	t.log.InfoContext(ctx, "Processing job",
		logger.IntField("job_id", int(job.ID)),
		logger.IntField("history_id", int(taskHistory.ID)),
		logger.StringField("job_type", job.Type),
	)

	executor := t.executorStrategies[strategy.JobType(job.Type)]
	if executor == nil {
		t.log.ErrorContext(ctx, "Job type not found", logger.IntField("job_id", int(job.ID)), logger.StringField("job_type", job.Type))
		taskHistory.Finish(model.StatusFailed, strategy.JOB_EXIT_CODE_FAILED, "", errUnknownJobType, utils.TimeNowUTC())
	} else {
		result, err := executor.Execute(ctx, job)
		status := model.StatusCompleted
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			status = model.StatusTimeout
			if err == nil {
				err = ctx.Err()
			}
		case err != nil:
			status = model.StatusFailed
		}
		if err != nil {
			t.log.ErrorContextWithAlert(ctx, "Failed to execute job",
				logger.ErrorField(err),
				logger.IntField("job_id", int(job.ID)),
				logger.StringField("job_name", job.Name),
			)
		}
		taskHistory.Finish(status, int(result.ExitCode), result.Output, err, utils.TimeNowUTC())
	}

	// The run context may already be expired; the history write must still land.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.cfg.Scheduler.TimeoutDuration)
	defer cancel()
	if err := t.jobRepo.UpdateTaskExecutionHistory(writeCtx, taskHistory); err != nil {
		t.log.ErrorContext(ctx, "Failed to update task execution history", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
		return fmt.Errorf("failed to update task execution history: %w", err)
	}

	return nil
}
