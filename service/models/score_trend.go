/*
 * @module service/models/score_trend
 * @description 得分趋势聚合模型，按作用域按周期记录Corrix得分的滚动汇总
 * @architecture 数据模型层 - 聚合输出实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 每日计算 -> 按(scope_type, scope_id, period_type, period_date, metric_name)幂等覆盖写入
 * @rules 环比变化对无前期或前期为零的周期置空，不报错
 * @dependencies gorm.io/gorm
 * @refs service/trend/trend_aggregator.go
 */

package models

import (
	"time"
)

// 趋势周期类型常量
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// ScoreTrendAggregation 得分趋势聚合模型
type ScoreTrendAggregation struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ScopeType        string    `json:"scope_type" gorm:"not null;size:20;uniqueIndex:idx_trend_scope_period"`
	ScopeID          string    `json:"scope_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_trend_scope_period"`
	PeriodType       string    `json:"period_type" gorm:"not null;size:10;uniqueIndex:idx_trend_scope_period"`
	PeriodDate       time.Time `json:"period_date" gorm:"not null;type:date;uniqueIndex:idx_trend_scope_period"`
	MetricName       string    `json:"metric_name" gorm:"not null;size:50;uniqueIndex:idx_trend_scope_period"`
	AvgValue         float64   `json:"avg_value" gorm:"not null;default:0"`
	MinValue         float64   `json:"min_value" gorm:"not null;default:0"`
	MaxValue         float64   `json:"max_value" gorm:"not null;default:0"`
	SampleCount      int       `json:"sample_count" gorm:"not null;default:0"`
	ChangePercentage *float64  `json:"change_percentage" gorm:"type:numeric(10,4)"`
	CreatedAt        time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (ScoreTrendAggregation) TableName() string {
	return "score_trend_aggregations"
}
