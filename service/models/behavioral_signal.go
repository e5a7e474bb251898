/*
 * @module service/models/behavioral_signal
 * @description 行为信号模型，记录用户与AI平台每次交互的行为遥测数据
 * @architecture 数据模型层 - 只读输入实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 外部采集服务写入 -> 聚合管道只读消费
 * @rules 信号为不可变事件，本服务只读不写
 * @dependencies gorm.io/gorm
 * @refs service/signals/store.go
 */

package models

import (
	"time"
)

// BehavioralSignal 行为信号模型
// 由外部采集服务产生，记录单次交互的行为特征
type BehavioralSignal struct {
	ID                      string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID                  string    `json:"user_id" gorm:"not null;type:varchar(36);index:idx_signals_user_time"`
	OrganizationID          string    `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	SessionID               string    `json:"session_id" gorm:"not null;type:varchar(64)"`
	Platform                string    `json:"platform" gorm:"not null;size:50;default:'unknown'"` // claude, chatgpt, gemini, unknown
	Timestamp               time.Time `json:"timestamp" gorm:"not null;index:idx_signals_user_time"`
	PromptQualityScore      *float64  `json:"prompt_quality_score" gorm:"type:numeric(5,2)"`
	ConversationDepth       int       `json:"conversation_depth" gorm:"not null;default:0"`
	TimeToActionSeconds     *float64  `json:"time_to_action_seconds" gorm:"type:numeric(10,2)"`
	HasVerificationRequest  bool      `json:"has_verification_request" gorm:"not null;default:false"`
	HasPushback             bool      `json:"has_pushback" gorm:"not null;default:false"`
	HasClarificationRequest bool      `json:"has_clarification_request" gorm:"not null;default:false"`
	EditRatio               *float64  `json:"edit_ratio" gorm:"type:numeric(5,4)"`
	CreatedAt               time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (BehavioralSignal) TableName() string {
	return "behavioral_signals"
}
