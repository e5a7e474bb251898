/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新聚合管道相关表结构
 * @architecture 数据访问层 - 迁移管理
 * @documentReference dev_docs/model.md
 * @stateFlow 应用启动时执行数据库迁移
 * @rules 确保数据库结构与模型定义保持一致
 * @dependencies corrix-analytics-service/service/models, gorm.io/gorm
 * @refs service/init.go
 */

package database

import (
	"log"

	"corrix-analytics-service/service/models"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	log.Println("开始数据库迁移...")

	// 输入表（组织结构与上游产出，本服务只读但建表以便独立部署）
	err := db.AutoMigrate(
		&models.Organization{},
		&models.Team{},
		&models.UserProfile{},
		&models.BehavioralSignal{},
		&models.UserScore{},
	)
	if err != nil {
		return err
	}

	// 聚合输出表
	err = db.AutoMigrate(
		&models.SkillSnapshot{},
		&models.CompetencyEvent{},
		&models.LearningVelocity{},
		&models.Benchmark{},
		&models.ScoreTrendAggregation{},
		&models.TeamRankingSnapshot{},
		&models.PlatformCalibration{},
	)
	if err != nil {
		return err
	}

	// 运行支撑表
	err = db.AutoMigrate(
		&models.JobLog{},
		&models.SystemConfig{},
	)
	if err != nil {
		return err
	}

	log.Println("数据库迁移完成")
	return nil
}
