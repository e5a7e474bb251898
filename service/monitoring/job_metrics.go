/*
 * @module service/monitoring/job_metrics
 * @description 作业指标收集，暴露作业运行次数、耗时、处理量与实体错误数
 * @architecture 业务服务层 - 可观测性
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 作业结束 -> 指标上报 -> /metrics端点暴露
 * @rules 指标收集失败不影响作业本身
 * @dependencies github.com/prometheus/client_golang
 * @refs service/jobs/runner.go, main.go
 */

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrix_job_runs_total",
		Help: "聚合作业运行总次数，按作业与结束状态划分",
	}, []string{"job", "status"})

	jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "corrix_job_duration_seconds",
		Help:    "聚合作业运行耗时",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"job"})

	jobRecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrix_job_records_processed_total",
		Help: "聚合作业处理的实体总数",
	}, []string{"job"})

	jobEntityErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corrix_job_entity_errors_total",
		Help: "聚合作业中被隔离的实体级失败总数",
	}, []string{"job"})
)

// ObserveJobRun 上报一次作业运行的结果指标
func ObserveJobRun(job, status string, duration time.Duration, records, entityErrors int) {
	jobRunsTotal.WithLabelValues(job, status).Inc()
	jobDurationSeconds.WithLabelValues(job).Observe(duration.Seconds())
	jobRecordsProcessed.WithLabelValues(job).Add(float64(records))
	jobEntityErrors.WithLabelValues(job).Add(float64(entityErrors))
}
