/*
 * @module service/models/scope
 * @description 作用域模型，定义组织、团队与用户画像等批处理枚举用的范围实体
 * @architecture 数据模型层 - 只读输入实体
 * @documentReference dev_docs/model.md
 * @stateFlow 外部同步服务维护，本服务只读枚举
 * @rules 作业按active状态的组织与成员枚举处理范围
 * @dependencies gorm.io/gorm
 * @refs service/jobs/pipeline_jobs.go
 */

package models

import (
	"time"
)

// Organization 组织模型
type Organization struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"not null;size:255"`
	Status    string    `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (Organization) TableName() string {
	return "organizations"
}

// Team 团队模型
type Team struct {
	ID             string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID string    `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	Name           string    `json:"name" gorm:"not null;size:255"`
	Status         string    `json:"status" gorm:"not null;default:'active';size:20"`
	CreatedAt      time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (Team) TableName() string {
	return "teams"
}

// UserProfile 用户画像模型
// first_active_at 为用户首次使用时间，里程碑事件据此计算天数
type UserProfile struct {
	UserID         string     `json:"user_id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID string     `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	TeamID         string     `json:"team_id" gorm:"type:varchar(36);index"`
	Department     string     `json:"department" gorm:"size:100"`
	Role           string     `json:"role" gorm:"size:100"`
	Status         string     `json:"status" gorm:"not null;default:'active';size:20"`
	FirstActiveAt  *time.Time `json:"first_active_at"`
	CreatedAt      time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (UserProfile) TableName() string {
	return "user_profiles"
}
