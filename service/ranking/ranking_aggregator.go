/*
 * @module service/ranking/ranking_aggregator
 * @description 排名聚合器，按组织按天计算团队排名快照及与前一天的趋势对比
 * @architecture 业务服务层 - 批处理计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 枚举团队 -> 7天分项均值 -> 降序排名 -> 对比前日 -> 幂等覆盖写入
 * @rules 无得分成员的团队以零分保留并排在末尾，无前日快照的团队趋势为stable
 * @dependencies corrix-analytics-service/service/models, gorm.io/gorm
 * @refs service/jobs/pipeline_jobs.go
 */

package ranking

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

// 排名统计窗口默认天数
const DefaultWindowDays = 7

// Aggregator 排名聚合器
type Aggregator struct {
	db         *gorm.DB
	windowDays int
}

// NewAggregator 创建排名聚合器实例
func NewAggregator(db *gorm.DB, windowDays int) *Aggregator {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return &Aggregator{
		db:         db,
		windowDays: windowDays,
	}
}

// teamAverages 团队在窗口内的四项得分均值
type teamAverages struct {
	TeamID       string
	Corrix       float64
	Results      float64
	Relationship float64
	Resilience   float64
}

// CalculateOrganization 计算组织当日的团队排名快照
// 团队枚举失败对本次运行是致命的
func (a *Aggregator) CalculateOrganization(ctx context.Context, orgID string, now time.Time) (int, error) {
	var teams []models.Team
	err := a.db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", orgID, "active").
		Find(&teams).Error
	if err != nil {
		return 0, fmt.Errorf("枚举组织团队失败: %w", err)
	}
	if len(teams) == 0 {
		return 0, nil
	}

	snapshotDate := truncateToDay(now)
	from := snapshotDate.AddDate(0, 0, -a.windowDays)

	averages := make([]teamAverages, 0, len(teams))
	for _, team := range teams {
		avg, err := a.teamWindowAverages(ctx, team.ID, from, now)
		if err != nil {
			return 0, err
		}
		averages = append(averages, avg)
	}

	// 按Corrix得分降序稳定排序，零分团队自然落到末尾
	sort.SliceStable(averages, func(i, j int) bool {
		return averages[i].Corrix > averages[j].Corrix
	})

	previousRanks, err := a.previousRanks(ctx, orgID, snapshotDate.AddDate(0, 0, -1))
	if err != nil {
		return 0, err
	}

	written := 0
	for i, avg := range averages {
		rank := i + 1
		row := &models.TeamRankingSnapshot{
			ID:                   uuid.New().String(),
			OrganizationID:       orgID,
			TeamID:               avg.TeamID,
			SnapshotDate:         snapshotDate,
			Rank:                 rank,
			Trend:                models.RankTrendStable,
			AvgCorrixScore:       avg.Corrix,
			AvgResultsScore:      avg.Results,
			AvgRelationshipScore: avg.Relationship,
			AvgResilienceScore:   avg.Resilience,
			UpdatedAt:            now,
		}

		// 排名数字变小为上升
		if prev, ok := previousRanks[avg.TeamID]; ok {
			p := prev
			row.PreviousRank = &p
			switch {
			case rank < prev:
				row.Trend = models.RankTrendUp
			case rank > prev:
				row.Trend = models.RankTrendDown
			default:
				row.Trend = models.RankTrendStable
			}
		}

		err := a.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "organization_id"}, {Name: "team_id"}, {Name: "snapshot_date"},
			},
			UpdateAll: true,
		}).Create(row).Error
		if err != nil {
			return written, fmt.Errorf("写入团队排名快照失败 [%s]: %w", avg.TeamID, err)
		}
		written++
	}

	return written, nil
}

// teamWindowAverages 团队成员窗口内的四项得分均值，无样本返回全零
func (a *Aggregator) teamWindowAverages(ctx context.Context, teamID string, from, to time.Time) (teamAverages, error) {
	var rows []models.UserScore
	err := a.db.WithContext(ctx).
		Where("team_id = ? AND score_date >= ? AND score_date < ?", teamID, from, to).
		Find(&rows).Error
	if err != nil {
		return teamAverages{}, fmt.Errorf("读取团队得分失败 [%s]: %w", teamID, err)
	}

	avg := teamAverages{TeamID: teamID}
	if len(rows) == 0 {
		return avg, nil
	}

	for _, row := range rows {
		avg.Corrix += row.CorrixScore
		avg.Results += row.ResultsScore
		avg.Relationship += row.RelationshipScore
		avg.Resilience += row.ResilienceScore
	}
	n := float64(len(rows))
	avg.Corrix /= n
	avg.Results /= n
	avg.Relationship /= n
	avg.Resilience /= n

	return avg, nil
}

// previousRanks 前一天快照的团队排名映射
func (a *Aggregator) previousRanks(ctx context.Context, orgID string, date time.Time) (map[string]int, error) {
	var rows []models.TeamRankingSnapshot
	err := a.db.WithContext(ctx).
		Where("organization_id = ? AND snapshot_date = ?", orgID, date).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取前日排名快照失败: %w", err)
	}

	ranks := make(map[string]int, len(rows))
	for _, row := range rows {
		ranks[row.TeamID] = row.Rank
	}
	return ranks, nil
}

// truncateToDay 截断到日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
