/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 提供可重用的测试工具，确保测试环境的一致性
 * @dependencies gorm, sqlite, time
 * @refs service/models
 */

package testutil

import (
	"fmt"
	"time"

	"corrix-analytics-service/service/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库
func NewTestDB() *TestDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Organization{},
		&models.Team{},
		&models.UserProfile{},
		&models.BehavioralSignal{},
		&models.UserScore{},
		&models.SkillSnapshot{},
		&models.CompetencyEvent{},
		&models.LearningVelocity{},
		&models.Benchmark{},
		&models.ScoreTrendAggregation{},
		&models.TeamRankingSnapshot{},
		&models.PlatformCalibration{},
		&models.JobLog{},
		&models.SystemConfig{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// CleanDB 清理数据库
func (tdb *TestDB) CleanDB() {
	tables := []string{
		"organizations",
		"teams",
		"user_profiles",
		"behavioral_signals",
		"user_scores",
		"skill_snapshots",
		"competency_events",
		"learning_velocities",
		"benchmarks",
		"score_trend_aggregations",
		"team_ranking_snapshots",
		"platform_calibrations",
		"job_logs",
		"system_configs",
	}

	for _, table := range tables {
		tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
	}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// CreateOrganization 创建测试组织
func (f *TestDataFactory) CreateOrganization(name string) *models.Organization {
	org := &models.Organization{
		ID:     uuid.New().String(),
		Name:   name,
		Status: "active",
	}
	f.DB.Create(org)
	return org
}

// CreateTeam 创建测试团队
func (f *TestDataFactory) CreateTeam(orgID, name string) *models.Team {
	team := &models.Team{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Name:           name,
		Status:         "active",
	}
	f.DB.Create(team)
	return team
}

// CreateUserProfile 创建测试用户画像
func (f *TestDataFactory) CreateUserProfile(orgID, teamID string, opts ...func(*models.UserProfile)) *models.UserProfile {
	profile := &models.UserProfile{
		UserID:         uuid.New().String(),
		OrganizationID: orgID,
		TeamID:         teamID,
		Status:         "active",
	}
	for _, opt := range opts {
		opt(profile)
	}
	f.DB.Create(profile)
	return profile
}

// SignalOption 信号选项函数类型
type SignalOption func(*models.BehavioralSignal)

// WithQuality 设置提示词质量得分
func WithQuality(score float64) SignalOption {
	return func(s *models.BehavioralSignal) {
		s.PromptQualityScore = &score
	}
}

// WithTimeToAction 设置响应时间
func WithTimeToAction(seconds float64) SignalOption {
	return func(s *models.BehavioralSignal) {
		s.TimeToActionSeconds = &seconds
	}
}

// WithDepth 设置会话深度
func WithDepth(depth int) SignalOption {
	return func(s *models.BehavioralSignal) {
		s.ConversationDepth = depth
	}
}

// WithVerification 标记包含验证请求
func WithVerification() SignalOption {
	return func(s *models.BehavioralSignal) {
		s.HasVerificationRequest = true
	}
}

// WithPushback 标记包含质疑
func WithPushback() SignalOption {
	return func(s *models.BehavioralSignal) {
		s.HasPushback = true
	}
}

// WithPlatform 设置平台
func WithPlatform(platform string) SignalOption {
	return func(s *models.BehavioralSignal) {
		s.Platform = platform
	}
}

// WithSession 设置会话ID
func WithSession(sessionID string) SignalOption {
	return func(s *models.BehavioralSignal) {
		s.SessionID = sessionID
	}
}

// CreateSignal 创建测试行为信号
func (f *TestDataFactory) CreateSignal(userID, orgID string, at time.Time, opts ...SignalOption) *models.BehavioralSignal {
	signal := &models.BehavioralSignal{
		ID:             uuid.New().String(),
		UserID:         userID,
		OrganizationID: orgID,
		SessionID:      uuid.New().String(),
		Platform:       models.PlatformClaude,
		Timestamp:      at,
	}
	for _, opt := range opts {
		opt(signal)
	}
	f.DB.Create(signal)
	return signal
}

// CreateSnapshot 创建测试技能快照
func (f *TestDataFactory) CreateSnapshot(userID, orgID string, date time.Time, overall float64) *models.SkillSnapshot {
	snapshot := &models.SkillSnapshot{
		ID:                  uuid.New().String(),
		UserID:              userID,
		OrganizationID:      orgID,
		SnapshotDate:        date,
		OverallSkillScore:   overall,
		TrajectoryDirection: models.TrajectorySteady,
	}
	f.DB.Create(snapshot)
	return snapshot
}

// CreateUserScore 创建测试用户得分
func (f *TestDataFactory) CreateUserScore(userID, orgID, teamID string, date time.Time, corrix float64) *models.UserScore {
	score := &models.UserScore{
		ID:                uuid.New().String(),
		UserID:            userID,
		OrganizationID:    orgID,
		TeamID:            teamID,
		ScoreDate:         date,
		CorrixScore:       corrix,
		ResultsScore:      corrix,
		RelationshipScore: corrix,
		ResilienceScore:   corrix,
	}
	f.DB.Create(score)
	return score
}

// CreateCalibration 创建测试平台校准行
func (f *TestDataFactory) CreateCalibration(platform string, sampleSize int64, mean, stddev, offset float64) *models.PlatformCalibration {
	row := &models.PlatformCalibration{
		ID:                uuid.New().String(),
		Platform:          platform,
		EffectiveDate:     time.Now().Truncate(24 * time.Hour),
		SampleSize:        sampleSize,
		MeanScore:         mean,
		StdDev:            stddev,
		Variance:          stddev * stddev,
		CalibrationOffset: offset,
	}
	f.DB.Create(row)
	return row
}
