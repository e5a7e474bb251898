/*
 * @module service/jobs/pipeline_jobs
 * @description 聚合管道的具体作业定义，把各计算器接入统一的作业框架
 * @architecture 业务服务层 - 作业框架
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 枚举组织 -> 逐组织调用计算器 -> 汇总处理量与错误数
 * @rules 组织枚举失败对运行致命，单组织失败只计数并继续其余组织
 * @dependencies corrix-analytics-service/service/scoring, corrix-analytics-service/service/benchmark, gorm.io/gorm
 * @refs service/init.go
 */

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"corrix-analytics-service/service/benchmark"
	"corrix-analytics-service/service/calibration"
	"corrix-analytics-service/service/config"
	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/ranking"
	"corrix-analytics-service/service/scoring"
	"corrix-analytics-service/service/trend"

	"gorm.io/gorm"
)

// activeOrganizationIDs 枚举active状态的组织，失败对作业致命
func activeOrganizationIDs(ctx context.Context, db *gorm.DB) ([]string, error) {
	var orgIDs []string
	err := db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("status = ?", "active").
		Pluck("id", &orgIDs).Error
	if err != nil {
		return nil, fmt.Errorf("枚举组织失败: %w", err)
	}
	return orgIDs, nil
}

// SnapshotJob 技能快照计算作业
type SnapshotJob struct {
	db     *gorm.DB
	calc   *scoring.SnapshotCalculator
	config *config.ConfigService
}

// NewSnapshotJob 创建技能快照作业
func NewSnapshotJob(db *gorm.DB, calc *scoring.SnapshotCalculator, configService *config.ConfigService) *SnapshotJob {
	return &SnapshotJob{db: db, calc: calc, config: configService}
}

// Name 作业名
func (j *SnapshotJob) Name() string { return JobSkillSnapshot }

// Run 对全部组织计算当日技能快照
func (j *SnapshotJob) Run(ctx context.Context) (RunResult, error) {
	orgIDs, err := activeOrganizationIDs(ctx, j.db)
	if err != nil {
		return RunResult{}, err
	}

	workers := j.config.GetWorkerCount()
	now := time.Now()

	var result RunResult
	for _, orgID := range orgIDs {
		processed, failed, err := j.calc.CalculateOrganization(ctx, orgID, workers, now)
		result.RecordsProcessed += processed
		result.ErrorCount += failed
		if err != nil {
			result.ErrorCount++
			slog.Error("组织快照计算失败", "organization_id", orgID, "error", err)
		}
	}
	return result, nil
}

// VelocityJob 学习速度计算作业
type VelocityJob struct {
	db     *gorm.DB
	calc   *scoring.VelocityCalculator
	config *config.ConfigService
}

// NewVelocityJob 创建学习速度作业
func NewVelocityJob(db *gorm.DB, calc *scoring.VelocityCalculator, configService *config.ConfigService) *VelocityJob {
	return &VelocityJob{db: db, calc: calc, config: configService}
}

// Name 作业名
func (j *VelocityJob) Name() string { return JobLearningVelocity }

// Run 对全部组织计算学习速度并重算排名
func (j *VelocityJob) Run(ctx context.Context) (RunResult, error) {
	orgIDs, err := activeOrganizationIDs(ctx, j.db)
	if err != nil {
		return RunResult{}, err
	}

	workers := j.config.GetWorkerCount()
	now := time.Now()

	var result RunResult
	for _, orgID := range orgIDs {
		processed, failed, err := j.calc.CalculateOrganization(ctx, orgID, workers, now)
		result.RecordsProcessed += processed
		result.ErrorCount += failed
		if err != nil {
			result.ErrorCount++
			slog.Error("组织学习速度计算失败", "organization_id", orgID, "error", err)
		}
	}
	return result, nil
}

// BenchmarkJob 基准计算作业
type BenchmarkJob struct {
	db   *gorm.DB
	calc *benchmark.Calculator
}

// NewBenchmarkJob 创建基准计算作业
func NewBenchmarkJob(db *gorm.DB, calc *benchmark.Calculator) *BenchmarkJob {
	return &BenchmarkJob{db: db, calc: calc}
}

// Name 作业名
func (j *BenchmarkJob) Name() string { return JobBenchmark }

// Run 对全部组织计算各作用域各指标的基准统计
func (j *BenchmarkJob) Run(ctx context.Context) (RunResult, error) {
	orgIDs, err := activeOrganizationIDs(ctx, j.db)
	if err != nil {
		return RunResult{}, err
	}

	now := time.Now()
	var result RunResult
	for _, orgID := range orgIDs {
		written, err := j.calc.CalculateOrganization(ctx, orgID, now)
		result.RecordsProcessed += written
		if err != nil {
			result.ErrorCount++
			slog.Error("组织基准计算失败", "organization_id", orgID, "error", err)
		}
	}
	return result, nil
}

// TrendJob 得分趋势聚合作业
type TrendJob struct {
	db   *gorm.DB
	calc *trend.Aggregator
}

// NewTrendJob 创建得分趋势作业
func NewTrendJob(db *gorm.DB, calc *trend.Aggregator) *TrendJob {
	return &TrendJob{db: db, calc: calc}
}

// Name 作业名
func (j *TrendJob) Name() string { return JobScoreTrend }

// Run 对全部组织计算趋势汇总
func (j *TrendJob) Run(ctx context.Context) (RunResult, error) {
	orgIDs, err := activeOrganizationIDs(ctx, j.db)
	if err != nil {
		return RunResult{}, err
	}

	now := time.Now()
	var result RunResult
	for _, orgID := range orgIDs {
		written, err := j.calc.CalculateOrganization(ctx, orgID, now)
		result.RecordsProcessed += written
		if err != nil {
			result.ErrorCount++
			slog.Error("组织趋势聚合失败", "organization_id", orgID, "error", err)
		}
	}
	return result, nil
}

// RankingJob 团队排名快照作业
type RankingJob struct {
	db   *gorm.DB
	calc *ranking.Aggregator
}

// NewRankingJob 创建团队排名作业
func NewRankingJob(db *gorm.DB, calc *ranking.Aggregator) *RankingJob {
	return &RankingJob{db: db, calc: calc}
}

// Name 作业名
func (j *RankingJob) Name() string { return JobTeamRanking }

// Run 对全部组织计算当日团队排名快照
func (j *RankingJob) Run(ctx context.Context) (RunResult, error) {
	orgIDs, err := activeOrganizationIDs(ctx, j.db)
	if err != nil {
		return RunResult{}, err
	}

	now := time.Now()
	var result RunResult
	for _, orgID := range orgIDs {
		written, err := j.calc.CalculateOrganization(ctx, orgID, now)
		result.RecordsProcessed += written
		if err != nil {
			result.ErrorCount++
			slog.Error("组织团队排名计算失败", "organization_id", orgID, "error", err)
		}
	}
	return result, nil
}

// CalibrationJob 平台校准刷新作业
type CalibrationJob struct {
	calibrator *calibration.Calibrator
}

// NewCalibrationJob 创建平台校准作业
func NewCalibrationJob(calibrator *calibration.Calibrator) *CalibrationJob {
	return &CalibrationJob{calibrator: calibrator}
}

// Name 作业名
func (j *CalibrationJob) Name() string { return JobCalibrationRefresh }

// Run 刷新校准缓存并按全局均值重算平台偏移
func (j *CalibrationJob) Run(ctx context.Context) (RunResult, error) {
	updated, err := j.calibrator.RecomputeOffsets(ctx)
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{RecordsProcessed: updated}, nil
}

// LogCleanupJob 作业日志清理作业
type LogCleanupJob struct {
	db     *gorm.DB
	config *config.ConfigService
}

// NewLogCleanupJob 创建作业日志清理作业
func NewLogCleanupJob(db *gorm.DB, configService *config.ConfigService) *LogCleanupJob {
	return &LogCleanupJob{db: db, config: configService}
}

// Name 作业名
func (j *LogCleanupJob) Name() string { return JobLogCleanup }

// Run 删除超过保留天数的作业日志
func (j *LogCleanupJob) Run(ctx context.Context) (RunResult, error) {
	retentionDays := j.config.GetJobLogRetentionDays()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	res := j.db.WithContext(ctx).
		Where("started_at < ? AND status <> ?", cutoff, models.JobStatusRunning).
		Delete(&models.JobLog{})
	if res.Error != nil {
		return RunResult{}, fmt.Errorf("删除过期作业日志失败: %w", res.Error)
	}

	slog.Info("作业日志清理完成", "deleted_count", res.RowsAffected, "retention_days", retentionDays)
	return RunResult{RecordsProcessed: int(res.RowsAffected)}, nil
}
