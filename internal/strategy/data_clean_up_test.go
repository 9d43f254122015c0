package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"tradepilot/config"
	"tradepilot/internal/model"
	"tradepilot/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataCleanUpStrategy_Execute(t *testing.T) {
	now := time.Date(2026, 3, 15, 22, 30, 0, 0, time.UTC)
	tests := []struct {
		name       string
		payload    string
		usageErr   error
		jobErr     error
		wantCode   int32
		wantErr    bool
		wantCutoff time.Time
	}{
		{
			name:       "payload retention",
			payload:    `{"retention_days": 30}`,
			wantCode:   JOB_EXIT_CODE_SUCCESS,
			wantCutoff: time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "config retention when payload empty",
			payload:    `{}`,
			wantCode:   JOB_EXIT_CODE_SUCCESS,
			wantCutoff: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "one table fails",
			payload:    `{"retention_days": 30}`,
			usageErr:   errors.New("connection reset"),
			wantCode:   JOB_EXIT_CODE_PARTIAL_SUCCESS,
			wantCutoff: time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "both tables fail",
			payload:    `{"retention_days": 30}`,
			usageErr:   errors.New("connection reset"),
			jobErr:     errors.New("connection reset"),
			wantCode:   JOB_EXIT_CODE_FAILED,
			wantErr:    true,
			wantCutoff: time.Date(2026, 2, 13, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usageRepo := &fakeUsageRepo{deleted: 4, err: tt.usageErr}
			jobRepo := &fakeJobRepo{deleted: 9, err: tt.jobErr}
			cfg := &config.Config{Usage: config.Usage{RetentionDays: 365}}

			s := NewDataCleanUpStrategy(cfg, logger.NewNop(), usageRepo, jobRepo).(*DataCleanUpStrategy)
			s.now = func() time.Time { return now }

			res, err := s.Execute(context.Background(), &model.Job{ID: 1, Payload: []byte(tt.payload)})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCode, res.ExitCode)
			assert.Equal(t, tt.wantCutoff, usageRepo.deletedBefore)
			assert.Equal(t, tt.wantCutoff, jobRepo.deletedBefore)

			var out []DataCleanUpResult
			require.NoError(t, json.Unmarshal([]byte(res.Output), &out))
			require.Len(t, out, 2)
			assert.Equal(t, "usage_records", out[0].Table)
			assert.Equal(t, "task_execution_history", out[1].Table)
			assert.Equal(t, tt.usageErr != nil, out[0].Error != "")
		})
	}
}

func TestDataCleanUpStrategy_InvalidPayload(t *testing.T) {
	s := NewDataCleanUpStrategy(&config.Config{}, logger.NewNop(), &fakeUsageRepo{}, &fakeJobRepo{})

	res, err := s.Execute(context.Background(), &model.Job{Payload: []byte(`{"retention_days": "thirty"}`)})
	assert.Error(t, err)
	assert.Equal(t, int32(JOB_EXIT_CODE_FAILED), res.ExitCode)
	assert.Equal(t, JobTypeDataCleanUp, s.GetType())
}
