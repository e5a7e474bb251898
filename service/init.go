/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、服务装配与调度器启动
 * @architecture 分层架构 - 服务层
 * @documentReference dev_docs/backend_requirements.md
 * @stateFlow 应用启动时执行初始化流程
 * @rules 确保所有依赖服务正常启动后才开始调度作业
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres
 * @refs dev_docs/model.md
 */

package service

import (
	"fmt"
	"log"
	"os"

	"corrix-analytics-service/service/benchmark"
	"corrix-analytics-service/service/calibration"
	"corrix-analytics-service/service/config"
	"corrix-analytics-service/service/database"
	"corrix-analytics-service/service/distributed_lock"
	"corrix-analytics-service/service/jobs"
	"corrix-analytics-service/service/ranking"
	"corrix-analytics-service/service/scoring"
	"corrix-analytics-service/service/signals"
	"corrix-analytics-service/service/trend"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB                       *gorm.DB
	GlobalConfigService      *config.ConfigService
	GlobalSignalStore        *signals.Store
	GlobalCalibrator         *calibration.Calibrator
	GlobalMilestoneTracker   *scoring.MilestoneTracker
	GlobalSnapshotCalculator *scoring.SnapshotCalculator
	GlobalVelocityCalculator *scoring.VelocityCalculator
	GlobalBenchmarkCalc      *benchmark.Calculator
	GlobalTrendAggregator    *trend.Aggregator
	GlobalRankingAggregator  *ranking.Aggregator
	GlobalJobRunner          *jobs.Runner
	GlobalScheduler          *jobs.Scheduler
)

func init() {
	initDatabase()
	runMigrations()
	initServices()
}

// initDatabase 初始化数据库连接
func initDatabase() {
	var dsn string

	// 优先使用DATABASE_URL环境变量
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		dsn = databaseURL
	} else {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "corrix")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")
		schema := getEnvWithDefault("DB_SCHEMA", "public")

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
			host, port, user, password, dbname, sslmode, schema)
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("数据库连接成功")
}

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// runMigrations 运行数据库迁移
func runMigrations() {
	if err := database.AutoMigrate(DB); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
}

// initServices 装配服务并启动调度器
func initServices() {
	GlobalConfigService = config.NewConfigService(DB)
	GlobalSignalStore = signals.NewStore(DB)
	GlobalCalibrator = calibration.NewCalibrator(DB, calibration.DefaultCacheTTL)
	GlobalMilestoneTracker = scoring.NewMilestoneTracker(DB, GlobalSignalStore)
	GlobalSnapshotCalculator = scoring.NewSnapshotCalculator(
		DB, GlobalSignalStore, GlobalCalibrator, GlobalMilestoneTracker,
		GlobalConfigService.GetSignalLookbackDays())
	GlobalVelocityCalculator = scoring.NewVelocityCalculator(DB)
	GlobalBenchmarkCalc = benchmark.NewCalculator(DB, GlobalConfigService.GetBenchmarkWindowDays())
	GlobalTrendAggregator = trend.NewAggregator(DB, GlobalConfigService.GetTrendWindowDays())
	GlobalRankingAggregator = ranking.NewAggregator(DB, GlobalConfigService.GetRankingWindowDays())

	// Redis未配置时跳过防重锁，作业按无锁语义运行
	var lock distributed_lock.DistributedLock
	if os.Getenv("REDIS_HOST") != "" {
		redisLock, err := distributed_lock.NewRedisLock()
		if err != nil {
			log.Printf("初始化Redis防重锁失败，作业按无锁语义运行: %v", err)
		} else {
			lock = redisLock
		}
	}

	GlobalJobRunner = jobs.NewRunner(DB, lock)
	GlobalScheduler = jobs.NewScheduler(GlobalJobRunner)

	registrations := []struct {
		cronKey string
		job     jobs.Job
	}{
		{config.ConfigKeySnapshotCron, jobs.NewSnapshotJob(DB, GlobalSnapshotCalculator, GlobalConfigService)},
		{config.ConfigKeyVelocityCron, jobs.NewVelocityJob(DB, GlobalVelocityCalculator, GlobalConfigService)},
		{config.ConfigKeyBenchmarkCron, jobs.NewBenchmarkJob(DB, GlobalBenchmarkCalc)},
		{config.ConfigKeyTrendCron, jobs.NewTrendJob(DB, GlobalTrendAggregator)},
		{config.ConfigKeyRankingCron, jobs.NewRankingJob(DB, GlobalRankingAggregator)},
		{config.ConfigKeyCalibrationCron, jobs.NewCalibrationJob(GlobalCalibrator)},
		{config.ConfigKeyJobLogCleanCron, jobs.NewLogCleanupJob(DB, GlobalConfigService)},
	}
	for _, reg := range registrations {
		if err := GlobalScheduler.Register(GlobalConfigService.GetJobCron(reg.cronKey), reg.job); err != nil {
			log.Fatalf("注册调度作业失败: %v", err)
		}
	}

	GlobalScheduler.Start()
	log.Println("服务初始化完成")
}
