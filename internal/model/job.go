package model

import (
	"time"

	"gorm.io/datatypes"
)

// Job is a unit of background work. Type selects the strategy that runs it
// and Payload carries that strategy's JSON parameters.
type Job struct {
	ID          uint                   `gorm:"primaryKey" json:"id"`
	Name        string                 `gorm:"type:varchar(255);not null" json:"name"`
	Description string                 `gorm:"type:text" json:"description"`
	Type        string                 `gorm:"type:varchar(50);not null" json:"type"`
	Payload     datatypes.JSON         `gorm:"type:jsonb;not null" json:"payload"`
	Timeout     int                    `gorm:"default:60" json:"timeout"`
	CreatedAt   time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
	Schedules   []TaskSchedule         `gorm:"foreignKey:JobID" json:"schedules,omitempty"`
	Histories   []TaskExecutionHistory `gorm:"foreignKey:JobID" json:"histories,omitempty"`
}

func (Job) TableName() string {
	return "jobs"
}

// TimeoutDuration is the job's run budget, one minute when unset.
func (j *Job) TimeoutDuration() time.Duration {
	if j.Timeout <= 0 {
		return time.Minute
	}
	return time.Duration(j.Timeout) * time.Second
}

type GetJobParam struct {
	IDs             []uint                        `json:"ids" query:"ids"`
	Types           []string                      `json:"types" query:"types"`
	IsActive        *bool                         `json:"is_active" query:"is_active"`
	Limit           *int                          `json:"limit" query:"limit"`
	WithTaskHistory *GetTaskExecutionHistoryParam `json:"with_task_history"`
}

type GetTaskExecutionHistoryParam struct {
	Limit *int `json:"limit"`
}
