/*
 * @module service/scoring/velocity_calculator
 * @description 学习速度计算器，计算多窗口周速度、加速度并做组织/团队内排名
 * @architecture 业务服务层 - 批处理计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 读取90天快照 -> 逐日变化 -> 窗口均值×7 -> 追加写入 -> 同组织排名回填
 * @rules 速度行只追加不覆盖，加速度与上一行velocity_30d做差，无速度行的用户不参与排名
 * @dependencies corrix-analytics-service/service/models, gorm.io/gorm
 * @refs service/jobs/pipeline_jobs.go
 */

package scoring

import (
	"context"
	"fmt"
	"sort"
	"time"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/mstats"
	"corrix-analytics-service/service/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 速度计算回看窗口集合（天）
var velocityWindows = []int{7, 14, 30, 90}

// 快照历史最大回看天数
const velocityHistoryDays = 90

// VelocityCalculator 学习速度计算器
type VelocityCalculator struct {
	db *gorm.DB
}

// NewVelocityCalculator 创建学习速度计算器实例
func NewVelocityCalculator(db *gorm.DB) *VelocityCalculator {
	return &VelocityCalculator{db: db}
}

// CalculateUser 计算并追加单个用户的学习速度行
// 无任何快照的用户静默跳过，不产生行
func (v *VelocityCalculator) CalculateUser(ctx context.Context, userID, orgID string, now time.Time) (bool, error) {
	var snapshots []models.SkillSnapshot
	err := v.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date >= ?", userID, now.AddDate(0, 0, -velocityHistoryDays)).
		Order("snapshot_date ASC").
		Find(&snapshots).Error
	if err != nil {
		return false, fmt.Errorf("读取快照序列失败: %w", err)
	}
	if len(snapshots) == 0 {
		return false, nil
	}

	// 逐日变化量，归属于较新一侧快照的日期
	type dailyChange struct {
		date  time.Time
		delta float64
	}
	changes := make([]dailyChange, 0, len(snapshots))
	for i := 1; i < len(snapshots); i++ {
		changes = append(changes, dailyChange{
			date:  snapshots[i].SnapshotDate,
			delta: snapshots[i].OverallSkillScore - snapshots[i-1].OverallSkillScore,
		})
	}

	velocities := make(map[int]float64, len(velocityWindows))
	for _, window := range velocityWindows {
		cutoff := now.AddDate(0, 0, -window)
		var inWindow []float64
		for _, ch := range changes {
			if !ch.date.Before(cutoff) {
				inWindow = append(inWindow, ch.delta)
			}
		}
		// 周归一化速率，窗口内无变化量时为0
		velocities[window] = mstats.Mean(inWindow) * 7
	}

	prior, err := v.priorVelocity30(ctx, userID)
	if err != nil {
		return false, err
	}
	acceleration := velocities[30] - prior

	teamID, err := v.teamOf(ctx, userID)
	if err != nil {
		return false, err
	}

	row := &models.LearningVelocity{
		ID:             uuid.New().String(),
		UserID:         userID,
		OrganizationID: orgID,
		TeamID:         teamID,
		Velocity7d:     velocities[7],
		Velocity14d:    velocities[14],
		Velocity30d:    velocities[30],
		Velocity90d:    velocities[90],
		Acceleration:   acceleration,
		CalculatedAt:   now,
	}

	if err := v.db.WithContext(ctx).Create(row).Error; err != nil {
		return false, fmt.Errorf("写入学习速度行失败: %w", err)
	}
	return true, nil
}

// priorVelocity30 用户上一次计算运行的velocity_30d，无历史行返回0
// 只有"无记录"可以合法地当作0，其余读取失败必须让该用户本次计算失败，
// 否则瞬时故障会被当成首次运行写出错误的加速度
func (v *VelocityCalculator) priorVelocity30(ctx context.Context, userID string) (float64, error) {
	var prior models.LearningVelocity
	err := v.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("calculated_at DESC").
		First(&prior).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("读取上一条速度行失败: %w", err)
	}
	return prior.Velocity30d, nil
}

// teamOf 用户所属团队，画像缺失时为空
func (v *VelocityCalculator) teamOf(ctx context.Context, userID string) (string, error) {
	var profile models.UserProfile
	err := v.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil
		}
		return "", fmt.Errorf("读取用户画像失败: %w", err)
	}
	return profile.TeamID, nil
}

// CalculateOrganization 对组织内全部活跃成员计算速度并重算排名
func (v *VelocityCalculator) CalculateOrganization(ctx context.Context, orgID string, workers int, now time.Time) (int, int, error) {
	var userIDs []string
	err := v.db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("organization_id = ? AND status = ?", orgID, "active").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return 0, 0, fmt.Errorf("枚举组织成员失败: %w", err)
	}

	processed, failed := utils.ForEachBounded(ctx, workers, userIDs, func(ctx context.Context, userID string) error {
		_, err := v.CalculateUser(ctx, userID, orgID, now)
		return err
	})

	if err := v.RecomputeRanks(ctx, orgID); err != nil {
		return processed, failed, err
	}

	return processed, failed, nil
}

// RecomputeRanks 基于每个用户最新的速度行重算组织与团队排名
// 无速度行的用户不参与排名
func (v *VelocityCalculator) RecomputeRanks(ctx context.Context, orgID string) error {
	latest, err := v.latestPerUser(ctx, orgID)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return nil
	}

	assignRanks(latest, func(row *models.LearningVelocity, rank int, percentile float64) {
		row.RankInOrg = rank
		row.PercentileInOrg = percentile
	})

	// 团队内单独排名
	byTeam := make(map[string][]*models.LearningVelocity)
	for _, row := range latest {
		if row.TeamID != "" {
			byTeam[row.TeamID] = append(byTeam[row.TeamID], row)
		}
	}
	for _, teamRows := range byTeam {
		assignRanks(teamRows, func(row *models.LearningVelocity, rank int, percentile float64) {
			row.RankInTeam = rank
			row.PercentileInTeam = percentile
		})
	}

	for _, row := range latest {
		err := v.db.WithContext(ctx).
			Model(&models.LearningVelocity{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"rank_in_org":        row.RankInOrg,
				"rank_in_team":       row.RankInTeam,
				"percentile_in_org":  row.PercentileInOrg,
				"percentile_in_team": row.PercentileInTeam,
			}).Error
		if err != nil {
			return fmt.Errorf("回填速度排名失败 [%s]: %w", row.UserID, err)
		}
	}

	return nil
}

// latestPerUser 组织内每个用户最新的速度行
func (v *VelocityCalculator) latestPerUser(ctx context.Context, orgID string) ([]*models.LearningVelocity, error) {
	var rows []models.LearningVelocity
	err := v.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Order("calculated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("读取速度行失败: %w", err)
	}

	seen := make(map[string]struct{})
	latest := make([]*models.LearningVelocity, 0)
	for i := range rows {
		row := &rows[i]
		if _, ok := seen[row.UserID]; ok {
			continue
		}
		seen[row.UserID] = struct{}{}
		latest = append(latest, row)
	}
	return latest, nil
}

// assignRanks 按velocity_30d降序做稳定排序并赋排名与百分位
// 并列得分按排序产生的次序共享相邻名次
func assignRanks(rows []*models.LearningVelocity, set func(row *models.LearningVelocity, rank int, percentile float64)) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Velocity30d > rows[j].Velocity30d
	})

	n := float64(len(rows))
	for i, row := range rows {
		rank := i + 1
		percentile := (n - float64(rank) + 1) / n * 100
		set(row, rank, percentile)
	}
}
