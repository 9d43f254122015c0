package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tradepilot/config"
	"tradepilot/internal/model"
	"tradepilot/internal/repository"
	"tradepilot/pkg/logger"
	"tradepilot/pkg/utils"
)

type DataCleanUpPayload struct {
	RetentionDays int `json:"retention_days"`
}

type DataCleanUpResult struct {
	Table string `json:"table"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

// DataCleanUpStrategy removes usage counters and task history past retention.
type DataCleanUpStrategy struct {
	cfg       *config.Config
	log       *logger.Logger
	usageRepo repository.UsageRepository
	jobRepo   repository.JobRepository
	now       func() time.Time
}

func NewDataCleanUpStrategy(cfg *config.Config, log *logger.Logger, usageRepo repository.UsageRepository, jobRepo repository.JobRepository) JobExecutionStrategy {
	return &DataCleanUpStrategy{
		cfg:       cfg,
		log:       log,
		usageRepo: usageRepo,
		jobRepo:   jobRepo,
		now:       utils.TimeNowUTC,
	}
}

func (s *DataCleanUpStrategy) GetType() JobType {
	return JobTypeDataCleanUp
}

func (s *DataCleanUpStrategy) Execute(ctx context.Context, job *model.Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting data clean up", logger.IntField("job_id", int(job.ID)))

	var payload DataCleanUpPayload
	if len(job.Payload) > 0 {
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.IntField("job_id", int(job.ID)))
			return failed(fmt.Sprintf("failed to unmarshal job payload: %v", err), fmt.Errorf("failed to unmarshal job payload: %w", err))
		}
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = s.cfg.Usage.RetentionDays
	}
	if payload.RetentionDays <= 0 {
		return JobResult{ExitCode: JOB_EXIT_CODE_SKIPPED, Output: "retention days not configured"}, nil
	}

	cutoff := utils.DayKey(s.now()).AddDate(0, 0, -payload.RetentionDays)
	results := make([]DataCleanUpResult, 0, 2)
	failures := 0

	record := func(table string, total int64, err error) {
		res := DataCleanUpResult{Table: table, Total: total}
		if err != nil {
			failures++
			s.log.ErrorContext(ctx, "Failed to delete expired rows", logger.StringField("table", table), logger.ErrorField(err))
			res.Error = fmt.Sprintf("failed to delete %s older than %s: %v", table, cutoff.Format("2006-01-02"), err)
		}
		results = append(results, res)
	}

	total, err := s.usageRepo.DeleteOlderThan(ctx, cutoff)
	record("usage_records", total, err)

	total, err = s.jobRepo.DeleteTaskHistoryOlderThan(ctx, cutoff)
	record("task_execution_history", total, err)

	out, err := json.Marshal(results)
	if err != nil {
		return failed(fmt.Sprintf("failed to marshal output message: %v", err), fmt.Errorf("failed to marshal output message: %w", err))
	}

	switch failures {
	case 0:
		return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(out)}, nil
	case len(results):
		return failed(string(out), fmt.Errorf("data clean up failed"))
	default:
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(out)}, nil
	}
}
