/*
 * @module service/models/learning_velocity
 * @description 学习速度模型，记录每次计算运行产出的多窗口速度、加速度与组织/团队排名
 * @architecture 数据模型层 - 追加写时间序列实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 每次计算运行追加一行 -> 排名字段在同轮排名阶段回填
 * @rules 行不原地覆盖，加速度通过与上一行velocity_30d做差得到
 * @dependencies gorm.io/gorm
 * @refs service/scoring/velocity_calculator.go
 */

package models

import (
	"time"
)

// LearningVelocity 学习速度模型
type LearningVelocity struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID           string    `json:"user_id" gorm:"not null;type:varchar(36);index:idx_velocity_user_calc"`
	OrganizationID   string    `json:"organization_id" gorm:"not null;type:varchar(36);index"`
	TeamID           string    `json:"team_id" gorm:"type:varchar(36);index"`
	Velocity7d       float64   `json:"velocity_7d" gorm:"not null;default:0"`
	Velocity14d      float64   `json:"velocity_14d" gorm:"not null;default:0"`
	Velocity30d      float64   `json:"velocity_30d" gorm:"not null;default:0"`
	Velocity90d      float64   `json:"velocity_90d" gorm:"not null;default:0"`
	Acceleration     float64   `json:"acceleration" gorm:"not null;default:0"`
	RankInOrg        int       `json:"rank_in_org" gorm:"not null;default:0"`
	RankInTeam       int       `json:"rank_in_team" gorm:"not null;default:0"`
	PercentileInOrg  float64   `json:"percentile_in_org" gorm:"not null;default:0"`
	PercentileInTeam float64   `json:"percentile_in_team" gorm:"not null;default:0"`
	CalculatedAt     time.Time `json:"calculated_at" gorm:"not null;index:idx_velocity_user_calc"`
}

// TableName 指定表名
func (LearningVelocity) TableName() string {
	return "learning_velocities"
}
