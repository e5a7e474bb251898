/*
 * @module service/models/user_score
 * @description 用户得分模型，按用户按天记录Corrix综合得分与三个R维度得分
 * @architecture 数据模型层 - 只读输入实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 上游评分服务写入 -> 基准/趋势/排名聚合只读消费
 * @rules 本服务只读，不维护该表的写入
 * @dependencies gorm.io/gorm
 * @refs service/benchmark, service/trend, service/ranking
 */

package models

import (
	"time"
)

// 基准与趋势计算使用的指标名常量
const (
	MetricCorrixScore       = "corrix_score"
	MetricResultsScore      = "results_score"
	MetricRelationshipScore = "relationship_score"
	MetricResilienceScore   = "resilience_score"
	MetricPromptEngineering = "prompt_engineering"
	MetricOutputEvaluation  = "output_evaluation"
	MetricVerification      = "verification"
	MetricIteration         = "iteration"
	MetricAdaptation        = "adaptation"
	MetricCriticalThinking  = "critical_thinking"
)

// UserScore 用户得分模型
// Corrix得分为三个R维度的综合得分，由上游评分服务产出
type UserScore struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string    `json:"user_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_user_score_user_date"`
	OrganizationID    string    `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	TeamID            string    `json:"team_id" gorm:"type:varchar(36);index"`
	ScoreDate         time.Time `json:"score_date" gorm:"not null;type:date;uniqueIndex:idx_user_score_user_date"`
	CorrixScore       float64   `json:"corrix_score" gorm:"not null;default:0"`
	ResultsScore      float64   `json:"results_score" gorm:"not null;default:0"`
	RelationshipScore float64   `json:"relationship_score" gorm:"not null;default:0"`
	ResilienceScore   float64   `json:"resilience_score" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (UserScore) TableName() string {
	return "user_scores"
}
