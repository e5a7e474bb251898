/*
 * @module service/models/benchmark
 * @description 基准统计模型，按作用域按指标记录30天窗口内的分布统计量
 * @architecture 数据模型层 - 聚合输出实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 每日计算 -> 按(scope_type, scope_id, metric_name, period_start)幂等覆盖写入
 * @rules 空样本仍写入全零行，统计字段永不为空
 * @dependencies gorm.io/gorm
 * @refs service/benchmark/benchmark_calculator.go
 */

package models

import (
	"time"
)

// 基准作用域类型常量
const (
	ScopeOrganization = "organization"
	ScopeDepartment   = "department"
	ScopeTeam         = "team"
	ScopeRole         = "role"
	ScopeUser         = "user"
)

// Benchmark 基准统计模型
type Benchmark struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ScopeType   string    `json:"scope_type" gorm:"not null;size:20;uniqueIndex:idx_benchmark_scope_metric"`
	ScopeID     string    `json:"scope_id" gorm:"not null;type:varchar(64);uniqueIndex:idx_benchmark_scope_metric"`
	MetricName  string    `json:"metric_name" gorm:"not null;size:50;uniqueIndex:idx_benchmark_scope_metric"`
	PeriodStart time.Time `json:"period_start" gorm:"not null;type:date;uniqueIndex:idx_benchmark_scope_metric"`
	PeriodEnd   time.Time `json:"period_end" gorm:"not null;type:date"`
	Mean        float64   `json:"mean" gorm:"not null;default:0"`
	Median      float64   `json:"median" gorm:"not null;default:0"`
	StdDev      float64   `json:"std_dev" gorm:"not null;default:0"`
	P10         float64   `json:"p10" gorm:"not null;default:0"`
	P25         float64   `json:"p25" gorm:"not null;default:0"`
	P50         float64   `json:"p50" gorm:"not null;default:0"`
	P75         float64   `json:"p75" gorm:"not null;default:0"`
	P90         float64   `json:"p90" gorm:"not null;default:0"`
	P95         float64   `json:"p95" gorm:"not null;default:0"`
	SampleSize  int       `json:"sample_size" gorm:"not null;default:0"`
	ActiveUsers int       `json:"active_users" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (Benchmark) TableName() string {
	return "benchmarks"
}
