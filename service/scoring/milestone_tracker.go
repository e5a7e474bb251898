/*
 * @module service/scoring/milestone_tracker
 * @description 能力里程碑跟踪器，检测并一次性记录用户跨越技能阈值的事件
 * @architecture 业务服务层
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 按固定阈值顺序检测 -> (user_id, event_type)存在性检查 -> 一次性写入
 * @rules 事件一经记录永不重算或删除，重复运行不产生重复行
 * @dependencies corrix-analytics-service/service/models, corrix-analytics-service/service/signals, gorm.io/gorm
 * @refs service/scoring/snapshot_calculator.go
 */

package scoring

import (
	"context"
	"fmt"
	"time"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/signals"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// milestone 阈值定义，按从低到高的固定顺序检测
type milestone struct {
	EventType string
	Threshold float64
}

var milestones = []milestone{
	{models.MilestoneReachedBaseline, 50},
	{models.MilestoneReachedCompetent, 70},
	{models.MilestoneReachedProficient, 85},
	{models.MilestoneReachedExpert, 95},
}

// MilestoneTracker 能力里程碑跟踪器
type MilestoneTracker struct {
	db      *gorm.DB
	signals *signals.Store
}

// NewMilestoneTracker 创建里程碑跟踪器实例
func NewMilestoneTracker(db *gorm.DB, signalStore *signals.Store) *MilestoneTracker {
	return &MilestoneTracker{
		db:      db,
		signals: signalStore,
	}
}

// Track 检测用户综合得分跨越的里程碑并记录事件，返回新写入的事件数
func (t *MilestoneTracker) Track(ctx context.Context, userID, orgID string, overallScore float64, now time.Time) (int, error) {
	recorded := 0

	for _, m := range milestones {
		if overallScore < m.Threshold {
			continue
		}

		exists, err := t.eventExists(ctx, userID, m.EventType)
		if err != nil {
			return recorded, err
		}
		if exists {
			continue
		}

		event, err := t.buildEvent(ctx, userID, orgID, m.EventType, overallScore, now)
		if err != nil {
			return recorded, err
		}

		// 唯一索引兜底，并发重放时静默跳过
		err = t.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_type"}},
			DoNothing: true,
		}).Create(event).Error
		if err != nil {
			return recorded, fmt.Errorf("写入里程碑事件失败 [%s]: %w", m.EventType, err)
		}
		recorded++
	}

	return recorded, nil
}

// eventExists 检查用户是否已记录该类型的里程碑事件
func (t *MilestoneTracker) eventExists(ctx context.Context, userID, eventType string) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&models.CompetencyEvent{}).
		Where("user_id = ? AND event_type = ?", userID, eventType).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("检查里程碑事件失败: %w", err)
	}
	return count > 0, nil
}

// buildEvent 组装里程碑事件，捕获首次使用天数与累计会话/交互数
func (t *MilestoneTracker) buildEvent(ctx context.Context, userID, orgID, eventType string, score float64, now time.Time) (*models.CompetencyEvent, error) {
	firstUse, err := t.firstUseTime(ctx, userID)
	if err != nil {
		return nil, err
	}

	days := 0
	if firstUse != nil {
		days = int(now.Sub(*firstUse).Hours() / 24)
		if days < 0 {
			days = 0
		}
	}

	sessionCount, interactionCount, err := t.signals.CountTotals(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	return &models.CompetencyEvent{
		ID:                uuid.New().String(),
		UserID:            userID,
		OrganizationID:    orgID,
		EventType:         eventType,
		TriggerScore:      score,
		DaysSinceFirstUse: days,
		SessionsCount:     sessionCount,
		InteractionsCount: interactionCount,
		OccurredAt:        now,
	}, nil
}

// firstUseTime 用户首次使用时间，优先画像字段，缺失时回退最早信号时间
func (t *MilestoneTracker) firstUseTime(ctx context.Context, userID string) (*time.Time, error) {
	var profile models.UserProfile
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err == nil && profile.FirstActiveAt != nil {
		return profile.FirstActiveAt, nil
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("读取用户画像失败: %w", err)
	}

	return t.signals.FirstSignalTime(ctx, userID)
}
