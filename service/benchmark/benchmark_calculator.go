/*
 * @module service/benchmark/benchmark_calculator
 * @description 基准计算器，按作用域按指标计算30天窗口内的分布统计量
 * @architecture 业务服务层 - 批处理计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 枚举作用域实例 -> 收集窗口样本 -> 计算统计量 -> 幂等覆盖写入
 * @rules 空样本仍写入全零行，百分位统一使用线性插值估计
 * @dependencies corrix-analytics-service/service/models, corrix-analytics-service/service/mstats, gorm.io/gorm
 * @refs service/jobs/pipeline_jobs.go
 */

package benchmark

import (
	"context"
	"fmt"
	"time"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/mstats"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 基准统计窗口默认天数
const DefaultWindowDays = 30

// 得分类指标，来源于user_scores表
var scoreMetrics = []string{
	models.MetricCorrixScore,
	models.MetricResultsScore,
	models.MetricRelationshipScore,
	models.MetricResilienceScore,
}

// 技能分项指标，来源于skill_snapshots表
var componentMetrics = []string{
	models.MetricPromptEngineering,
	models.MetricOutputEvaluation,
	models.MetricVerification,
	models.MetricIteration,
	models.MetricAdaptation,
	models.MetricCriticalThinking,
}

// Calculator 基准计算器
type Calculator struct {
	db         *gorm.DB
	windowDays int
}

// NewCalculator 创建基准计算器实例
func NewCalculator(db *gorm.DB, windowDays int) *Calculator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Calculator{
		db:         db,
		windowDays: windowDays,
	}
}

// scopeInstance 一个待计算的作用域实例及其成员
type scopeInstance struct {
	ScopeType string
	ScopeID   string
	UserIDs   []string
}

// CalculateOrganization 计算组织及其下属部门/团队/角色作用域的全部基准
// 作用域枚举失败对本次运行是致命的
func (c *Calculator) CalculateOrganization(ctx context.Context, orgID string, now time.Time) (int, error) {
	scopes, err := c.enumerateScopes(ctx, orgID)
	if err != nil {
		return 0, err
	}

	periodStart := truncateToDay(now.AddDate(0, 0, -c.windowDays))
	periodEnd := truncateToDay(now)

	written := 0
	for _, scope := range scopes {
		n, err := c.calculateScope(ctx, scope, periodStart, periodEnd, now)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// enumerateScopes 枚举组织作用域与其成员划分
// 无成员的团队也作为作用域实例保留
func (c *Calculator) enumerateScopes(ctx context.Context, orgID string) ([]scopeInstance, error) {
	var profiles []models.UserProfile
	err := c.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", orgID, "active").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("枚举组织成员失败: %w", err)
	}

	var teams []models.Team
	err = c.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", orgID, "active").
		Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("枚举组织团队失败: %w", err)
	}

	orgMembers := make([]string, 0, len(profiles))
	byTeam := make(map[string][]string)
	byDepartment := make(map[string][]string)
	byRole := make(map[string][]string)
	for _, p := range profiles {
		orgMembers = append(orgMembers, p.UserID)
		if p.TeamID != "" {
			byTeam[p.TeamID] = append(byTeam[p.TeamID], p.UserID)
		}
		if p.Department != "" {
			byDepartment[p.Department] = append(byDepartment[p.Department], p.UserID)
		}
		if p.Role != "" {
			byRole[p.Role] = append(byRole[p.Role], p.UserID)
		}
	}

	scopes := []scopeInstance{
		{ScopeType: models.ScopeOrganization, ScopeID: orgID, UserIDs: orgMembers},
	}
	for _, team := range teams {
		scopes = append(scopes, scopeInstance{
			ScopeType: models.ScopeTeam,
			ScopeID:   team.ID,
			UserIDs:   byTeam[team.ID],
		})
	}
	for department, members := range byDepartment {
		scopes = append(scopes, scopeInstance{
			ScopeType: models.ScopeDepartment,
			ScopeID:   department,
			UserIDs:   members,
		})
	}
	for role, members := range byRole {
		scopes = append(scopes, scopeInstance{
			ScopeType: models.ScopeRole,
			ScopeID:   role,
			UserIDs:   members,
		})
	}

	return scopes, nil
}

// calculateScope 计算单个作用域实例的全部指标并写入
func (c *Calculator) calculateScope(ctx context.Context, scope scopeInstance, periodStart, periodEnd, now time.Time) (int, error) {
	scoreSamples, err := c.scoreSamples(ctx, scope.UserIDs, periodStart)
	if err != nil {
		return 0, err
	}
	componentSamples, err := c.componentSamples(ctx, scope.UserIDs, periodStart)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, metric := range scoreMetrics {
		sample := scoreSamples[metric]
		if err := c.upsertBenchmark(ctx, scope, metric, sample, periodStart, periodEnd, now); err != nil {
			return written, err
		}
		written++
	}
	for _, metric := range componentMetrics {
		sample := componentSamples[metric]
		if err := c.upsertBenchmark(ctx, scope, metric, sample, periodStart, periodEnd, now); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// metricSample 单个指标的样本集合
type metricSample struct {
	Values  []float64
	UserIDs map[string]struct{}
}

func (s *metricSample) add(userID string, value float64) {
	if s.UserIDs == nil {
		s.UserIDs = make(map[string]struct{})
	}
	s.Values = append(s.Values, value)
	s.UserIDs[userID] = struct{}{}
}

// scoreSamples 从user_scores收集窗口内的得分类指标样本
func (c *Calculator) scoreSamples(ctx context.Context, userIDs []string, periodStart time.Time) (map[string]*metricSample, error) {
	samples := make(map[string]*metricSample, len(scoreMetrics))
	for _, metric := range scoreMetrics {
		samples[metric] = &metricSample{}
	}
	if len(userIDs) == 0 {
		return samples, nil
	}

	var rows []models.UserScore
	err := c.db.WithContext(ctx).
		Where("user_id IN ? AND score_date >= ?", userIDs, periodStart).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取得分样本失败: %w", err)
	}

	for _, row := range rows {
		samples[models.MetricCorrixScore].add(row.UserID, row.CorrixScore)
		samples[models.MetricResultsScore].add(row.UserID, row.ResultsScore)
		samples[models.MetricRelationshipScore].add(row.UserID, row.RelationshipScore)
		samples[models.MetricResilienceScore].add(row.UserID, row.ResilienceScore)
	}
	return samples, nil
}

// componentSamples 从skill_snapshots收集窗口内的技能分项样本
func (c *Calculator) componentSamples(ctx context.Context, userIDs []string, periodStart time.Time) (map[string]*metricSample, error) {
	samples := make(map[string]*metricSample, len(componentMetrics))
	for _, metric := range componentMetrics {
		samples[metric] = &metricSample{}
	}
	if len(userIDs) == 0 {
		return samples, nil
	}

	var rows []models.SkillSnapshot
	err := c.db.WithContext(ctx).
		Where("user_id IN ? AND snapshot_date >= ?", userIDs, periodStart).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取快照样本失败: %w", err)
	}

	for _, row := range rows {
		samples[models.MetricPromptEngineering].add(row.UserID, row.PromptEngineering)
		samples[models.MetricOutputEvaluation].add(row.UserID, row.OutputEvaluation)
		samples[models.MetricVerification].add(row.UserID, row.Verification)
		samples[models.MetricIteration].add(row.UserID, row.Iteration)
		samples[models.MetricAdaptation].add(row.UserID, row.Adaptation)
		samples[models.MetricCriticalThinking].add(row.UserID, row.CriticalThinking)
	}
	return samples, nil
}

// upsertBenchmark 写入单个作用域单个指标的基准行
// 空样本写入全零行，绝不跳过也绝不置空
func (c *Calculator) upsertBenchmark(ctx context.Context, scope scopeInstance, metric string, sample *metricSample, periodStart, periodEnd, now time.Time) error {
	row := &models.Benchmark{
		ID:          uuid.New().String(),
		ScopeType:   scope.ScopeType,
		ScopeID:     scope.ScopeID,
		MetricName:  metric,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		UpdatedAt:   now,
	}

	if sample != nil && len(sample.Values) > 0 {
		values := sample.Values
		row.Mean = mstats.Mean(values)
		row.Median = mstats.Median(values)
		row.StdDev = mstats.StdDev(values)
		row.P10 = mstats.Percentile(values, 10)
		row.P25 = mstats.Percentile(values, 25)
		row.P50 = mstats.Percentile(values, 50)
		row.P75 = mstats.Percentile(values, 75)
		row.P90 = mstats.Percentile(values, 90)
		row.P95 = mstats.Percentile(values, 95)
		row.SampleSize = len(values)
		row.ActiveUsers = len(sample.UserIDs)
	}

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "scope_type"}, {Name: "scope_id"},
			{Name: "metric_name"}, {Name: "period_start"},
		},
		UpdateAll: true,
	}).Create(row).Error
	if err != nil {
		return fmt.Errorf("写入基准行失败 [%s/%s/%s]: %w", scope.ScopeType, scope.ScopeID, metric, err)
	}
	return nil
}

// truncateToDay 截断到日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
