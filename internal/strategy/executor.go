package strategy

import (
	"context"

	"tradepilot/internal/model"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobType string

const (
	JobTypeDataCleanUp        JobType = "data_clean_up"
	JobTypeDealListingRefresh JobType = "deal_listing_refresh"
)

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy runs one job type. A returned error marks the run failed;
// the result is recorded either way.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *model.Job) (JobResult, error)
	GetType() JobType
}

func failed(output string, err error) (JobResult, error) {
	return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: output}, err
}
