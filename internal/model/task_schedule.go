package model

import (
	"database/sql"
	"time"
)

type TaskSchedule struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	JobID          uint         `gorm:"not null" json:"job_id"`
	CronExpression string       `gorm:"type:varchar(100)" json:"cron_expression"`
	NextExecution  sql.NullTime `json:"next_execution"`
	LastExecution  sql.NullTime `json:"last_execution"`
	IsActive       bool         `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`

	Job *Job `gorm:"foreignKey:JobID;references:ID" json:"job,omitempty"`
}

// Advance records a run at now and the next run time from next.
func (t *TaskSchedule) Advance(now, next time.Time) {
	t.LastExecution = sql.NullTime{Time: now, Valid: true}
	t.NextExecution = sql.NullTime{Time: next, Valid: true}
}

func (TaskSchedule) TableName() string {
	return "task_schedules"
}
