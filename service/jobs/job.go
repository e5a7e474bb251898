/*
 * @module service/jobs/job
 * @description 作业抽象，统一各聚合作业的命名与阻塞式入口
 * @architecture 业务服务层 - 作业框架
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 调度器触发 -> 运行器执行 -> 返回处理量与错误计数
 * @rules 作业的运行日志与失败处理由运行器统一负责，作业本身只做计算
 * @dependencies context
 * @refs service/jobs/runner.go
 */

package jobs

import (
	"context"
)

// 作业名常量
const (
	JobSkillSnapshot      = "skill_snapshot_calculation"
	JobLearningVelocity   = "learning_velocity_calculation"
	JobBenchmark          = "benchmark_calculation"
	JobScoreTrend         = "score_trend_aggregation"
	JobTeamRanking        = "team_ranking_snapshot"
	JobCalibrationRefresh = "platform_calibration_refresh"
	JobLogCleanup         = "job_log_cleanup"
)

// RunResult 一次作业运行的结果统计
type RunResult struct {
	RecordsProcessed int
	ErrorCount       int
}

// Job 后台聚合作业
// Run返回的error代表设置阶段的致命失败，实体级失败只计入ErrorCount
type Job interface {
	Name() string
	Run(ctx context.Context) (RunResult, error)
}
