/*
 * @module service/models/skill_snapshot
 * @description 技能快照模型，按用户按天记录六项分项技能得分与综合得分
 * @architecture 数据模型层 - 聚合输出实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 每日计算 -> 按(user_id, snapshot_date)幂等覆盖写入
 * @rules 同一用户同一天只有一行，重算覆盖原行
 * @dependencies gorm.io/gorm
 * @refs service/scoring/snapshot_calculator.go
 */

package models

import (
	"time"
)

// 轨迹方向常量
const (
	TrajectoryAccelerating = "accelerating"
	TrajectorySteady       = "steady"
	TrajectoryPlateauing   = "plateauing"
	TrajectoryDeclining    = "declining"
)

// SkillSnapshot 技能快照模型
type SkillSnapshot struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID               string    `json:"user_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_snapshot_user_date"`
	OrganizationID       string    `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	SnapshotDate         time.Time `json:"snapshot_date" gorm:"not null;type:date;uniqueIndex:idx_snapshot_user_date"`
	PromptEngineering    float64   `json:"prompt_engineering" gorm:"not null;default:0"`
	OutputEvaluation     float64   `json:"output_evaluation" gorm:"not null;default:0"`
	Verification         float64   `json:"verification" gorm:"not null;default:0"`
	Iteration            float64   `json:"iteration" gorm:"not null;default:0"`
	Adaptation           float64   `json:"adaptation" gorm:"not null;default:0"`
	CriticalThinking     float64   `json:"critical_thinking" gorm:"not null;default:0"`
	OverallSkillScore    float64   `json:"overall_skill_score" gorm:"not null;default:0;index"`
	TrajectoryScore      float64   `json:"trajectory_score" gorm:"not null;default:0"`
	TrajectoryDirection  string    `json:"trajectory_direction" gorm:"not null;size:20;default:'steady'"`
	DaysSinceImprovement int       `json:"days_since_improvement" gorm:"not null;default:0"`
	PercentileInOrg      float64   `json:"percentile_in_org" gorm:"not null;default:0"`
	SessionsInPeriod     int       `json:"sessions_in_period" gorm:"not null;default:0"`
	InteractionsInPeriod int       `json:"interactions_in_period" gorm:"not null;default:0"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (SkillSnapshot) TableName() string {
	return "skill_snapshots"
}
