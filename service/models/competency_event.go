/*
 * @module service/models/competency_event
 * @description 能力里程碑事件模型，记录用户首次跨越技能阈值的一次性事件
 * @architecture 数据模型层 - 追加写输出实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 阈值检测 -> 存在性检查 -> 一次性写入，永不重算或删除
 * @rules (user_id, event_type)唯一，事件一经记录不可变
 * @dependencies gorm.io/gorm
 * @refs service/scoring/milestone_tracker.go
 */

package models

import (
	"time"
)

// 里程碑事件类型常量，阈值按固定顺序检测
const (
	MilestoneReachedBaseline   = "reached_baseline"
	MilestoneReachedCompetent  = "reached_competent"
	MilestoneReachedProficient = "reached_proficient"
	MilestoneReachedExpert     = "reached_expert"
)

// CompetencyEvent 能力里程碑事件模型
type CompetencyEvent struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID            string    `json:"user_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_competency_user_event"`
	OrganizationID    string    `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	EventType         string    `json:"event_type" gorm:"not null;size:50;uniqueIndex:idx_competency_user_event"`
	TriggerScore      float64   `json:"trigger_score" gorm:"not null;default:0"`
	DaysSinceFirstUse int       `json:"days_since_first_use" gorm:"not null;default:0"`
	SessionsCount     int       `json:"sessions_count" gorm:"not null;default:0"`
	InteractionsCount int       `json:"interactions_count" gorm:"not null;default:0"`
	OccurredAt        time.Time `json:"occurred_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (CompetencyEvent) TableName() string {
	return "competency_events"
}
