package model

import (
	"database/sql"
	"time"
)

type TaskExecutionStatus string

const (
	StatusRunning   TaskExecutionStatus = "running"
	StatusCompleted TaskExecutionStatus = "completed"
	StatusFailed    TaskExecutionStatus = "failed"
	StatusTimeout   TaskExecutionStatus = "timeout"
)

type TaskExecutionHistory struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	JobID        uint                `gorm:"not null" json:"job_id"`
	ScheduleID   uint                `gorm:"not null" json:"schedule_id"`
	StartedAt    time.Time           `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime        `json:"completed_at"`
	Status       TaskExecutionStatus `gorm:"type:varchar(50);not null" json:"status"`
	ExitCode     sql.NullInt32       `json:"exit_code"`
	Output       sql.NullString      `gorm:"type:text" json:"output"`
	ErrorMessage sql.NullString      `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// Finish stamps the outcome of a run.
func (h *TaskExecutionHistory) Finish(status TaskExecutionStatus, exitCode int, output string, runErr error, at time.Time) {
	h.Status = status
	h.CompletedAt = sql.NullTime{Time: at, Valid: true}
	h.ExitCode = sql.NullInt32{Int32: int32(exitCode), Valid: true}
	if output != "" {
		h.Output = sql.NullString{String: output, Valid: true}
	}
	if runErr != nil {
		h.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	}
}

func (TaskExecutionHistory) TableName() string {
	return "task_execution_history"
}
