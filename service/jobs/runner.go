/*
 * @module service/jobs/runner
 * @description 作业运行器，统一负责作业日志写入、恐慌恢复、可选防重锁与指标上报
 * @architecture 业务服务层 - 作业框架
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 启动写入running行 -> 执行作业 -> 更新completed/failed -> 指标上报
 * @rules 每次调用恰好一行作业日志，致命失败也必须落日志并向调度方返回错误
 * @dependencies corrix-analytics-service/service/models, corrix-analytics-service/service/distributed_lock, gorm.io/gorm
 * @refs service/jobs/scheduler.go
 */

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"corrix-analytics-service/service/distributed_lock"
	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/monitoring"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 防重锁的默认持有时长，超过后自动过期
const defaultLockTTL = 2 * time.Hour

// Runner 作业运行器
// lock为nil时按无锁语义运行，同名作业的并发运行不做跨进程协调
type Runner struct {
	db      *gorm.DB
	lock    distributed_lock.DistributedLock
	lockTTL time.Duration
}

// NewRunner 创建作业运行器实例
func NewRunner(db *gorm.DB, lock distributed_lock.DistributedLock) *Runner {
	return &Runner{
		db:      db,
		lock:    lock,
		lockTTL: defaultLockTTL,
	}
}

// RunJob 阻塞执行一个作业并维护其作业日志
// 返回的error为作业的致命失败，调用方可据此告警
func (r *Runner) RunJob(ctx context.Context, job Job) (err error) {
	if r.lock != nil {
		acquired, lockErr := r.lock.TryLock(ctx, job.Name(), r.lockTTL)
		if lockErr != nil {
			// 锁存储故障时降级为无锁运行，保持作业可用性
			slog.Warn("作业防重锁不可用，按无锁语义继续", "job", job.Name(), "error", lockErr)
		} else if !acquired {
			slog.Info("作业已在其他实例运行，跳过本次触发", "job", job.Name())
			return nil
		} else {
			defer func() {
				if unlockErr := r.lock.Unlock(context.Background(), job.Name()); unlockErr != nil {
					slog.Warn("释放作业防重锁失败", "job", job.Name(), "error", unlockErr)
				}
			}()
		}
	}

	startedAt := time.Now()
	jobLog := &models.JobLog{
		ID:        uuid.New().String(),
		JobName:   job.Name(),
		StartedAt: startedAt,
		Status:    models.JobStatusRunning,
	}
	if createErr := r.db.WithContext(ctx).Create(jobLog).Error; createErr != nil {
		return fmt.Errorf("写入作业日志失败 [%s]: %w", job.Name(), createErr)
	}

	slog.Info("作业开始", "job", job.Name(), "job_log_id", jobLog.ID)

	var result RunResult
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("作业恐慌 [%s]: %v", job.Name(), rec)
		}
		r.finish(jobLog, result, err, startedAt)
	}()

	result, err = job.Run(ctx)
	return err
}

// finish 更新作业日志终态并上报指标
func (r *Runner) finish(jobLog *models.JobLog, result RunResult, runErr error, startedAt time.Time) {
	completedAt := time.Now()
	duration := completedAt.Sub(startedAt)

	status := models.JobStatusCompleted
	errorMessage := ""
	if runErr != nil {
		status = models.JobStatusFailed
		errorMessage = runErr.Error()
	}

	updates := map[string]interface{}{
		"completed_at":      completedAt,
		"status":            status,
		"records_processed": result.RecordsProcessed,
		"error_count":       result.ErrorCount,
		"error_message":     errorMessage,
	}
	if dbErr := r.db.Model(&models.JobLog{}).Where("id = ?", jobLog.ID).Updates(updates).Error; dbErr != nil {
		slog.Error("更新作业日志失败", "job", jobLog.JobName, "job_log_id", jobLog.ID, "error", dbErr)
	}

	monitoring.ObserveJobRun(jobLog.JobName, status, duration, result.RecordsProcessed, result.ErrorCount)

	if runErr != nil {
		slog.Error("作业失败",
			"job", jobLog.JobName,
			"duration_ms", duration.Milliseconds(),
			"records_processed", result.RecordsProcessed,
			"error_count", result.ErrorCount,
			"error", runErr)
		return
	}

	slog.Info("作业完成",
		"job", jobLog.JobName,
		"duration_ms", duration.Milliseconds(),
		"records_processed", result.RecordsProcessed,
		"error_count", result.ErrorCount)
}
