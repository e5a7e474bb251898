/*
 * @module service/models/platform_calibration
 * @description 平台校准模型，维护各AI平台的在线运行统计量与校准偏移
 * @architecture 数据模型层 - 在线更新实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 新样本到达 -> Welford在线更新 -> 覆盖当前生效行
 * @rules 统计量只做在线增量更新，永不回放原始历史重算
 * @dependencies gorm.io/gorm
 * @refs service/calibration/calibrator.go
 */

package models

import (
	"time"
)

// 已知平台常量
const (
	PlatformClaude  = "claude"
	PlatformChatGPT = "chatgpt"
	PlatformGemini  = "gemini"
	PlatformUnknown = "unknown"
)

// PlatformCalibration 平台校准模型
type PlatformCalibration struct {
	ID                string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Platform          string    `json:"platform" gorm:"not null;size:50;uniqueIndex:idx_calibration_platform_date"`
	EffectiveDate     time.Time `json:"effective_date" gorm:"not null;type:date;uniqueIndex:idx_calibration_platform_date"`
	SampleSize        int64     `json:"sample_size" gorm:"not null;default:0"`
	MeanScore         float64   `json:"mean_score" gorm:"not null;default:0"`
	StdDev            float64   `json:"std_dev" gorm:"not null;default:0"`
	Variance          float64   `json:"variance" gorm:"not null;default:0"`
	CalibrationOffset float64   `json:"calibration_offset" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (PlatformCalibration) TableName() string {
	return "platform_calibrations"
}
