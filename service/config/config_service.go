/*
 * @module service/config/config_service
 * @description 配置服务，提供聚合管道可调参数的类型化访问
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 服务调用 -> 配置管理器 -> 数据库/默认值
 * @rules 所有读取都有默认值兜底，配置缺失不视为错误
 * @dependencies corrix-analytics-service/service/config/config_manager, github.com/spf13/cast
 * @refs service/jobs/pipeline_jobs.go
 */

package config

import (
	"github.com/spf13/cast"
	"gorm.io/gorm"
)

// 配置键常量
const (
	ConfigKeySignalLookbackDays  = "signal_lookback_days"
	ConfigKeyBenchmarkWindowDays = "benchmark_window_days"
	ConfigKeyTrendWindowDays     = "trend_window_days"
	ConfigKeyRankingWindowDays   = "ranking_window_days"
	ConfigKeyWorkerCount         = "job_worker_count"
	ConfigKeyJobLogRetentionDays = "job_log_retention_days"

	ConfigKeySnapshotCron    = "cron_skill_snapshot_calculation"
	ConfigKeyVelocityCron    = "cron_learning_velocity_calculation"
	ConfigKeyBenchmarkCron   = "cron_benchmark_calculation"
	ConfigKeyTrendCron       = "cron_score_trend_aggregation"
	ConfigKeyRankingCron     = "cron_team_ranking_snapshot"
	ConfigKeyCalibrationCron = "cron_platform_calibration_refresh"
	ConfigKeyJobLogCleanCron = "cron_job_log_cleanup"
)

// 默认值常量
const (
	DefaultSignalLookbackDays  = 14
	DefaultBenchmarkWindowDays = 30
	DefaultTrendWindowDays     = 90
	DefaultRankingWindowDays   = 7
	DefaultWorkerCount         = 8
	DefaultJobLogRetentionDays = 90
)

// 默认调度表达式（秒 分 时 日 月 周），全部安排在夜间错峰执行
var defaultCrons = map[string]string{
	ConfigKeySnapshotCron:    "0 0 1 * * *",
	ConfigKeyVelocityCron:    "0 30 1 * * *",
	ConfigKeyBenchmarkCron:   "0 0 2 * * *",
	ConfigKeyTrendCron:       "0 30 2 * * *",
	ConfigKeyRankingCron:     "0 0 3 * * *",
	ConfigKeyCalibrationCron: "0 0 * * * *",
	ConfigKeyJobLogCleanCron: "0 30 3 * * *",
}

// ConfigService 配置服务
type ConfigService struct {
	manager *ConfigManager
}

// NewConfigService 创建配置服务实例
func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{
		manager: NewConfigManager(db),
	}
}

// getInt 读取整型配置，缺失或非法时返回默认值
func (s *ConfigService) getInt(key string, defaultValue int) int {
	valueStr, err := s.manager.GetConfig(key)
	if err != nil {
		return defaultValue
	}
	value := cast.ToInt(valueStr)
	if value <= 0 {
		return defaultValue
	}
	return value
}

// GetSignalLookbackDays 技能快照的信号回看天数
func (s *ConfigService) GetSignalLookbackDays() int {
	return s.getInt(ConfigKeySignalLookbackDays, DefaultSignalLookbackDays)
}

// GetBenchmarkWindowDays 基准统计窗口天数
func (s *ConfigService) GetBenchmarkWindowDays() int {
	return s.getInt(ConfigKeyBenchmarkWindowDays, DefaultBenchmarkWindowDays)
}

// GetTrendWindowDays 趋势统计窗口天数
func (s *ConfigService) GetTrendWindowDays() int {
	return s.getInt(ConfigKeyTrendWindowDays, DefaultTrendWindowDays)
}

// GetRankingWindowDays 排名统计窗口天数
func (s *ConfigService) GetRankingWindowDays() int {
	return s.getInt(ConfigKeyRankingWindowDays, DefaultRankingWindowDays)
}

// GetWorkerCount 批处理作业的并发工作者上限
func (s *ConfigService) GetWorkerCount() int {
	return s.getInt(ConfigKeyWorkerCount, DefaultWorkerCount)
}

// GetJobLogRetentionDays 作业日志保留天数
func (s *ConfigService) GetJobLogRetentionDays() int {
	return s.getInt(ConfigKeyJobLogRetentionDays, DefaultJobLogRetentionDays)
}

// GetJobCron 作业的调度表达式，未配置时使用默认错峰安排
func (s *ConfigService) GetJobCron(key string) string {
	valueStr, err := s.manager.GetConfig(key)
	if err == nil && valueStr != "" {
		return valueStr
	}
	return defaultCrons[key]
}

// SetConfig 写入配置，暴露给运维调整参数
func (s *ConfigService) SetConfig(key, value, description string) error {
	return s.manager.SetConfig(key, value, description)
}
