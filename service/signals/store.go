/*
 * @module service/signals/store
 * @description 行为信号读取层，提供按用户与时间窗口的信号查询
 * @architecture 数据访问层 - 只读
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 聚合作业查询 -> 按索引读取信号窗口
 * @rules 本层对behavioral_signals只读，不提供任何写入
 * @dependencies corrix-analytics-service/service/models, gorm.io/gorm
 * @refs service/scoring/snapshot_calculator.go
 */

package signals

import (
	"context"
	"fmt"
	"time"

	"corrix-analytics-service/service/models"

	"gorm.io/gorm"
)

// Store 行为信号读取层
type Store struct {
	db *gorm.DB
}

// NewStore 创建信号读取层实例
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SignalsInWindow 查询用户在时间窗口内的全部信号，按时间升序
func (s *Store) SignalsInWindow(ctx context.Context, userID string, from, to time.Time) ([]models.BehavioralSignal, error) {
	var signals []models.BehavioralSignal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
		Order("timestamp ASC").
		Find(&signals).Error
	if err != nil {
		return nil, fmt.Errorf("查询信号窗口失败: %w", err)
	}
	return signals, nil
}

// ActiveUserIDs 查询组织在时间窗口内产生过信号的去重用户ID
func (s *Store) ActiveUserIDs(ctx context.Context, orgID string, from, to time.Time) ([]string, error) {
	var userIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.BehavioralSignal{}).
		Where("organization_id = ? AND timestamp >= ? AND timestamp < ?", orgID, from, to).
		Distinct("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("查询活跃用户失败: %w", err)
	}
	return userIDs, nil
}

// FirstSignalTime 查询用户最早一条信号的时间，无信号返回nil
func (s *Store) FirstSignalTime(ctx context.Context, userID string) (*time.Time, error) {
	var signal models.BehavioralSignal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp ASC").
		First(&signal).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("查询首条信号失败: %w", err)
	}
	return &signal.Timestamp, nil
}

// CountTotals 统计用户截至某时刻的累计会话数与交互数
func (s *Store) CountTotals(ctx context.Context, userID string, until time.Time) (sessions int, interactions int, err error) {
	var interactionCount int64
	if err = s.db.WithContext(ctx).
		Model(&models.BehavioralSignal{}).
		Where("user_id = ? AND timestamp <= ?", userID, until).
		Count(&interactionCount).Error; err != nil {
		return 0, 0, fmt.Errorf("统计交互数失败: %w", err)
	}

	var sessionCount int64
	if err = s.db.WithContext(ctx).
		Model(&models.BehavioralSignal{}).
		Where("user_id = ? AND timestamp <= ?", userID, until).
		Distinct("session_id").
		Count(&sessionCount).Error; err != nil {
		return 0, 0, fmt.Errorf("统计会话数失败: %w", err)
	}

	return int(sessionCount), int(interactionCount), nil
}
