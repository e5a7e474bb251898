/*
 * @module service/trend/trend_aggregator
 * @description 得分趋势聚合器，计算组织/团队/用户的日周月得分滚动汇总与环比变化
 * @architecture 业务服务层 - 批处理计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 读取90天得分 -> 按作用域分组 -> 按周期分桶 -> 环比计算 -> 幂等覆盖写入
 * @rules 无前一周期或前期均值为零时环比置空而非报错
 * @dependencies corrix-analytics-service/service/models, gorm.io/gorm
 * @refs service/jobs/pipeline_jobs.go
 */

package trend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"corrix-analytics-service/service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 趋势统计窗口默认天数
const DefaultWindowDays = 90

// Aggregator 得分趋势聚合器
type Aggregator struct {
	db         *gorm.DB
	windowDays int
}

// NewAggregator 创建得分趋势聚合器实例
func NewAggregator(db *gorm.DB, windowDays int) *Aggregator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Aggregator{
		db:         db,
		windowDays: windowDays,
	}
}

// CalculateOrganization 计算组织、团队与成员三类作用域的趋势汇总
func (a *Aggregator) CalculateOrganization(ctx context.Context, orgID string, now time.Time) (int, error) {
	from := truncateToDay(now.AddDate(0, 0, -a.windowDays))

	var rows []models.UserScore
	err := a.db.WithContext(ctx).
		Where("organization_id = ? AND score_date >= ?", orgID, from).
		Find(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("读取得分窗口失败: %w", err)
	}

	written := 0

	// 组织作用域
	n, err := a.aggregateSeries(ctx, models.ScopeOrganization, orgID, rows, now)
	if err != nil {
		return written, err
	}
	written += n

	// 团队作用域
	byTeam := make(map[string][]models.UserScore)
	for _, row := range rows {
		if row.TeamID != "" {
			byTeam[row.TeamID] = append(byTeam[row.TeamID], row)
		}
	}
	for teamID, teamRows := range byTeam {
		n, err := a.aggregateSeries(ctx, models.ScopeTeam, teamID, teamRows, now)
		if err != nil {
			return written, err
		}
		written += n
	}

	// 用户作用域
	byUser := make(map[string][]models.UserScore)
	for _, row := range rows {
		byUser[row.UserID] = append(byUser[row.UserID], row)
	}
	for userID, userRows := range byUser {
		n, err := a.aggregateSeries(ctx, models.ScopeUser, userID, userRows, now)
		if err != nil {
			return written, err
		}
		written += n
	}

	return written, nil
}

// periodBucket 单个周期内的样本聚合
type periodBucket struct {
	date  time.Time
	sum   float64
	min   float64
	max   float64
	count int
}

// aggregateSeries 对单个作用域实例按日/周/月分桶并写入趋势行
func (a *Aggregator) aggregateSeries(ctx context.Context, scopeType, scopeID string, rows []models.UserScore, now time.Time) (int, error) {
	written := 0
	for _, periodType := range []string{models.PeriodDay, models.PeriodWeek, models.PeriodMonth} {
		buckets := bucketByPeriod(rows, periodType)
		n, err := a.writeSeries(ctx, scopeType, scopeID, periodType, buckets, now)
		if err != nil {
			return written, err
		}
		written += n
	}
	return written, nil
}

// bucketByPeriod 按周期键分桶并聚合
func bucketByPeriod(rows []models.UserScore, periodType string) []periodBucket {
	byKey := make(map[time.Time]*periodBucket)
	for _, row := range rows {
		key := periodKey(row.ScoreDate, periodType)
		b, ok := byKey[key]
		if !ok {
			b = &periodBucket{date: key, min: row.CorrixScore, max: row.CorrixScore}
			byKey[key] = b
		}
		b.sum += row.CorrixScore
		b.count++
		if row.CorrixScore < b.min {
			b.min = row.CorrixScore
		}
		if row.CorrixScore > b.max {
			b.max = row.CorrixScore
		}
	}

	buckets := make([]periodBucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].date.Before(buckets[j].date)
	})
	return buckets
}

// writeSeries 写入一个周期序列，环比对序列中上一个存在的周期计算
func (a *Aggregator) writeSeries(ctx context.Context, scopeType, scopeID, periodType string, buckets []periodBucket, now time.Time) (int, error) {
	var prevAvg *float64

	for _, b := range buckets {
		avg := b.sum / float64(b.count)

		var change *float64
		if prevAvg != nil && *prevAvg != 0 {
			v := (avg - *prevAvg) / *prevAvg * 100
			change = &v
		}

		row := &models.ScoreTrendAggregation{
			ID:               uuid.New().String(),
			ScopeType:        scopeType,
			ScopeID:          scopeID,
			PeriodType:       periodType,
			PeriodDate:       b.date,
			MetricName:       models.MetricCorrixScore,
			AvgValue:         avg,
			MinValue:         b.min,
			MaxValue:         b.max,
			SampleCount:      b.count,
			ChangePercentage: change,
			UpdatedAt:        now,
		}

		err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "scope_type"}, {Name: "scope_id"}, {Name: "period_type"},
				{Name: "period_date"}, {Name: "metric_name"},
			},
			UpdateAll: true,
		}).Create(row).Error
		if err != nil {
			return 0, fmt.Errorf("写入趋势行失败 [%s/%s/%s]: %w", scopeType, scopeID, periodType, err)
		}

		a2 := avg
		prevAvg = &a2
	}

	return len(buckets), nil
}

// periodKey 计算样本日期所属的周期键
// 周对齐到周一，月对齐到当月1日
func periodKey(date time.Time, periodType string) time.Time {
	day := truncateToDay(date)
	switch periodType {
	case models.PeriodWeek:
		weekday := int(day.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return day.AddDate(0, 0, -(weekday - 1))
	case models.PeriodMonth:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
	default:
		return day
	}
}

// truncateToDay 截断到日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
