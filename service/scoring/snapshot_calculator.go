/*
 * @module service/scoring/snapshot_calculator
 * @description 技能快照计算器，从14天信号窗口推导六项分项技能得分与综合得分
 * @architecture 业务服务层 - 批处理计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 查询信号窗口 -> 计算分项得分 -> 轨迹分类 -> 幂等覆盖写入 -> 里程碑检测
 * @rules 窗口内无信号的用户不写入任何行，区分"无数据"与"零分"
 * @dependencies corrix-analytics-service/service/signals, corrix-analytics-service/service/calibration, gorm.io/gorm
 * @refs service/jobs/pipeline_jobs.go
 */

package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"corrix-analytics-service/service/calibration"
	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/mstats"
	"corrix-analytics-service/service/signals"
	"corrix-analytics-service/service/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 信号回看窗口默认天数
const DefaultLookbackDays = 14

// 分项得分缺省值
const (
	defaultPromptScore     = 50.0
	defaultEvaluationScore = 50.0
	defaultIterationScore  = 30.0
	defaultAdaptationScore = 60.0
)

// 综合得分权重
const (
	weightPromptEngineering = 0.20
	weightOutputEvaluation  = 0.20
	weightVerification      = 0.15
	weightIteration         = 0.15
	weightAdaptation        = 0.15
	weightCriticalThinking  = 0.15
)

// SnapshotCalculator 技能快照计算器
type SnapshotCalculator struct {
	db           *gorm.DB
	signals      *signals.Store
	calibrator   *calibration.Calibrator
	milestones   *MilestoneTracker
	lookbackDays int
}

// NewSnapshotCalculator 创建技能快照计算器实例
func NewSnapshotCalculator(db *gorm.DB, signalStore *signals.Store, calibrator *calibration.Calibrator, milestones *MilestoneTracker, lookbackDays int) *SnapshotCalculator {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &SnapshotCalculator{
		db:           db,
		signals:      signalStore,
		calibrator:   calibrator,
		milestones:   milestones,
		lookbackDays: lookbackDays,
	}
}

// componentScores 六项分项得分
type componentScores struct {
	PromptEngineering float64
	OutputEvaluation  float64
	Verification      float64
	Iteration         float64
	Adaptation        float64
	CriticalThinking  float64
}

// Overall 按固定权重汇总综合得分
func (c componentScores) Overall() float64 {
	return weightPromptEngineering*c.PromptEngineering +
		weightOutputEvaluation*c.OutputEvaluation +
		weightVerification*c.Verification +
		weightIteration*c.Iteration +
		weightAdaptation*c.Adaptation +
		weightCriticalThinking*c.CriticalThinking
}

// CalculateUser 计算并写入单个用户当日的技能快照
// 窗口内无信号时不写入，返回written=false
func (c *SnapshotCalculator) CalculateUser(ctx context.Context, userID, orgID string, now time.Time) (bool, error) {
	from := now.AddDate(0, 0, -c.lookbackDays)

	sigs, err := c.signals.SignalsInWindow(ctx, userID, from, now)
	if err != nil {
		return false, err
	}
	if len(sigs) == 0 {
		// 无数据静默跳过，不算错误
		return false, nil
	}

	scores := computeComponents(sigs)
	overall := scores.Overall()

	history, err := c.recentOverallScores(ctx, userID, now)
	if err != nil {
		return false, err
	}
	trajectory := ClassifyTrajectory(history, overall)

	snapshot := &models.SkillSnapshot{
		ID:                   uuid.New().String(),
		UserID:               userID,
		OrganizationID:       orgID,
		SnapshotDate:         truncateToDay(now),
		PromptEngineering:    scores.PromptEngineering,
		OutputEvaluation:     scores.OutputEvaluation,
		Verification:         scores.Verification,
		Iteration:            scores.Iteration,
		Adaptation:           scores.Adaptation,
		CriticalThinking:     scores.CriticalThinking,
		OverallSkillScore:    overall,
		TrajectoryScore:      trajectory.Score,
		TrajectoryDirection:  trajectory.Direction,
		DaysSinceImprovement: trajectory.DaysSinceImprovement,
		PercentileInOrg:      c.percentileFor(ctx, sigs, overall),
		SessionsInPeriod:     distinctSessions(sigs),
		InteractionsInPeriod: len(sigs),
		UpdatedAt:            now,
	}

	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "snapshot_date"}},
		UpdateAll: true,
	}).Create(snapshot).Error
	if err != nil {
		return false, fmt.Errorf("写入技能快照失败: %w", err)
	}

	// 平台运行统计在线更新，失败只降级记警告
	if platform := dominantPlatform(sigs); platform != models.PlatformUnknown {
		if err := c.calibrator.RecordScore(ctx, platform, overall); err != nil {
			slog.Warn("平台校准统计更新失败", "user_id", userID, "platform", platform, "error", err)
		}
	}

	if _, err := c.milestones.Track(ctx, userID, orgID, overall, now); err != nil {
		return true, err
	}

	return true, nil
}

// CalculateOrganization 对组织内窗口期活跃用户批量计算快照
// 用户枚举失败对本次运行是致命的，单用户失败只计数
func (c *SnapshotCalculator) CalculateOrganization(ctx context.Context, orgID string, workers int, now time.Time) (int, int, error) {
	from := now.AddDate(0, 0, -c.lookbackDays)

	userIDs, err := c.signals.ActiveUserIDs(ctx, orgID, from, now)
	if err != nil {
		return 0, 0, err
	}

	processed, failed := utils.ForEachBounded(ctx, workers, userIDs, func(ctx context.Context, userID string) error {
		_, err := c.CalculateUser(ctx, userID, orgID, now)
		return err
	})

	return processed, failed, nil
}

// recentOverallScores 读取用户更新前最近的综合得分历史，时间倒序
func (c *SnapshotCalculator) recentOverallScores(ctx context.Context, userID string, now time.Time) ([]float64, error) {
	var rows []models.SkillSnapshot
	err := c.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date < ?", userID, truncateToDay(now)).
		Order("snapshot_date DESC").
		Limit(trajectoryHistorySize).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取快照历史失败: %w", err)
	}

	scores := make([]float64, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, row.OverallSkillScore)
	}
	return scores, nil
}

// percentileFor 用平台校准分布估计综合得分的组织内百分位
// 校准数据不足时置0
func (c *SnapshotCalculator) percentileFor(ctx context.Context, sigs []models.BehavioralSignal, overall float64) float64 {
	platform := dominantPlatform(sigs)
	calibrated := c.calibrator.CalibrateScore(ctx, overall, platform)
	if p, ok := c.calibrator.Percentile(ctx, float64(calibrated), platform); ok {
		return float64(p)
	}
	return 0
}

// computeComponents 从信号窗口计算六项分项得分
func computeComponents(sigs []models.BehavioralSignal) componentScores {
	total := float64(len(sigs))

	var quality []float64
	var evaluation []float64
	var depth []float64
	verified := 0
	critical := 0

	for _, sig := range sigs {
		if sig.PromptQualityScore != nil {
			quality = append(quality, *sig.PromptQualityScore)
		}
		if sig.TimeToActionSeconds != nil {
			evaluation = append(evaluation, evaluationBucket(*sig.TimeToActionSeconds))
		}
		depth = append(depth, float64(sig.ConversationDepth))
		if sig.HasVerificationRequest {
			verified++
		}
		if sig.HasPushback || sig.HasClarificationRequest {
			critical++
		}
	}

	scores := componentScores{
		PromptEngineering: defaultPromptScore,
		OutputEvaluation:  defaultEvaluationScore,
		Iteration:         defaultIterationScore,
		Adaptation:        defaultAdaptationScore,
	}

	if len(quality) > 0 {
		scores.PromptEngineering = mstats.Mean(quality)
		scores.Adaptation = math.Min(100, 50+mstats.StdDev(quality)*2)
	}
	if len(evaluation) > 0 {
		scores.OutputEvaluation = mstats.Mean(evaluation)
	}
	if len(depth) > 0 {
		scores.Iteration = math.Min(100, mstats.Mean(depth)*15)
	}

	scores.Verification = float64(verified) / total * 100
	scores.CriticalThinking = float64(critical) / total * 100

	return scores
}

// evaluationBucket 按响应时间分桶的输出评估得分
// 10-60秒视为有审阅的采纳，超过60秒视为深入审阅
func evaluationBucket(seconds float64) float64 {
	switch {
	case seconds >= 10 && seconds <= 60:
		return 80
	case seconds > 60:
		return 90
	default:
		return 50
	}
}

// dominantPlatform 窗口内出现次数最多的平台
func dominantPlatform(sigs []models.BehavioralSignal) string {
	counts := make(map[string]int)
	for _, sig := range sigs {
		counts[sig.Platform]++
	}

	best := models.PlatformUnknown
	bestCount := 0
	for platform, count := range counts {
		if count > bestCount {
			best = platform
			bestCount = count
		}
	}
	return best
}

// distinctSessions 窗口内去重会话数
func distinctSessions(sigs []models.BehavioralSignal) int {
	seen := make(map[string]struct{})
	for _, sig := range sigs {
		seen[sig.SessionID] = struct{}{}
	}
	return len(seen)
}

// truncateToDay 截断到日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
