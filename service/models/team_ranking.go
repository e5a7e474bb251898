/*
 * @module service/models/team_ranking
 * @description 团队排名快照模型，按组织按天记录团队排名及与前一天的趋势对比
 * @architecture 数据模型层 - 聚合输出实体
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 每日计算 -> 按(organization_id, team_id, snapshot_date)幂等覆盖写入
 * @rules 无前一天快照的团队趋势恒为stable
 * @dependencies gorm.io/gorm
 * @refs service/ranking/ranking_aggregator.go
 */

package models

import (
	"time"
)

// 排名趋势常量
const (
	RankTrendUp     = "up"
	RankTrendDown   = "down"
	RankTrendStable = "stable"
)

// TeamRankingSnapshot 团队排名快照模型
type TeamRankingSnapshot struct {
	ID                   string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrganizationID       string    `json:"organization_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_ranking_org_team_date"`
	TeamID               string    `json:"team_id" gorm:"not null;type:varchar(36);uniqueIndex:idx_ranking_org_team_date"`
	SnapshotDate         time.Time `json:"snapshot_date" gorm:"not null;type:date;uniqueIndex:idx_ranking_org_team_date"`
	Rank                 int       `json:"rank" gorm:"not null;default:0"`
	PreviousRank         *int      `json:"previous_rank"`
	Trend                string    `json:"trend" gorm:"not null;size:10;default:'stable'"`
	AvgCorrixScore       float64   `json:"avg_corrix_score" gorm:"not null;default:0"`
	AvgResultsScore      float64   `json:"avg_results_score" gorm:"not null;default:0"`
	AvgRelationshipScore float64   `json:"avg_relationship_score" gorm:"not null;default:0"`
	AvgResilienceScore   float64   `json:"avg_resilience_score" gorm:"not null;default:0"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName 指定表名
func (TeamRankingSnapshot) TableName() string {
	return "team_ranking_snapshots"
}
