/*
 * @module service/models/job_log
 * @description 作业日志模型，记录每次后台作业运行的状态与处理量
 * @architecture 数据模型层 - 运行记录实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 作业启动写入running行 -> 结束时更新为completed或failed
 * @rules 每次作业调用恰好一行，致命失败也必须落日志
 * @dependencies gorm.io/gorm
 * @refs service/jobs/runner.go
 */

package models

import (
	"time"
)

// 作业状态常量
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// JobLog 作业日志模型
type JobLog struct {
	ID               string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	JobName          string     `json:"job_name" gorm:"not null;size:100;index"`
	StartedAt        time.Time  `json:"started_at" gorm:"not null"`
	CompletedAt      *time.Time `json:"completed_at"`
	Status           string     `json:"status" gorm:"not null;size:20;default:'running'"`
	RecordsProcessed int        `json:"records_processed" gorm:"not null;default:0"`
	ErrorCount       int        `json:"error_count" gorm:"not null;default:0"`
	ErrorMessage     string     `json:"error_message" gorm:"type:text"`
	CreatedAt        time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (JobLog) TableName() string {
	return "job_logs"
}

// IsFinished 作业是否已结束
func (j *JobLog) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
