/*
 * @module service/ranking/ranking_aggregator_test
 * @description 排名聚合器测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 构造团队得分 -> 计算排名快照 -> 验证名次与趋势
 * @rules 使用内存SQLite隔离测试数据
 * @dependencies testify/suite, testutil
 * @refs ranking_aggregator.go
 */

package ranking

import (
	"context"
	"testing"
	"time"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/testutil"

	"github.com/stretchr/testify/suite"
)

type RankingAggregatorTestSuite struct {
	suite.Suite
	testDB     *testutil.TestDB
	factory    *testutil.TestDataFactory
	aggregator *Aggregator
	ctx        context.Context
	now        time.Time
}

func (suite *RankingAggregatorTestSuite) SetupSuite() {
	suite.testDB = testutil.NewTestDB()
	suite.factory = testutil.NewTestDataFactory(suite.testDB.DB)
	suite.ctx = context.Background()
	suite.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (suite *RankingAggregatorTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

func (suite *RankingAggregatorTestSuite) SetupTest() {
	suite.testDB.CleanDB()
	suite.aggregator = NewAggregator(suite.testDB.DB, DefaultWindowDays)
}

// seedTeamScore 为团队的一名成员写入窗口内得分
func (suite *RankingAggregatorTestSuite) seedTeamScore(orgID, teamID string, at time.Time, corrix float64) {
	profile := suite.factory.CreateUserProfile(orgID, teamID)
	suite.factory.CreateUserScore(profile.UserID, orgID, teamID, at, corrix)
}

// TestFirstSnapshotStable 无前日快照时趋势为stable且无前日名次
func (suite *RankingAggregatorTestSuite) TestFirstSnapshotStable() {
	org := suite.factory.CreateOrganization("测试组织")
	alpha := suite.factory.CreateTeam(org.ID, "甲队")
	beta := suite.factory.CreateTeam(org.ID, "乙队")
	day := suite.now.Truncate(24 * time.Hour)

	suite.seedTeamScore(org.ID, alpha.ID, day.AddDate(0, 0, -1), 80)
	suite.seedTeamScore(org.ID, beta.ID, day.AddDate(0, 0, -1), 60)

	written, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)
	suite.Equal(2, written)

	var alphaRow, betaRow models.TeamRankingSnapshot
	suite.NoError(suite.testDB.DB.Where("team_id = ?", alpha.ID).First(&alphaRow).Error)
	suite.NoError(suite.testDB.DB.Where("team_id = ?", beta.ID).First(&betaRow).Error)

	suite.Equal(1, alphaRow.Rank)
	suite.Equal(2, betaRow.Rank)
	suite.Equal(models.RankTrendStable, alphaRow.Trend)
	suite.Equal(models.RankTrendStable, betaRow.Trend)
	suite.Nil(alphaRow.PreviousRank)
	suite.InDelta(80.0, alphaRow.AvgCorrixScore, 1e-9)
}

// TestTrendAgainstPreviousDay 名次变化对比前日快照
func (suite *RankingAggregatorTestSuite) TestTrendAgainstPreviousDay() {
	org := suite.factory.CreateOrganization("测试组织")
	alpha := suite.factory.CreateTeam(org.ID, "甲队")
	beta := suite.factory.CreateTeam(org.ID, "乙队")
	day := suite.now.Truncate(24 * time.Hour)

	// 前日：甲队领先
	suite.seedTeamScore(org.ID, alpha.ID, day.AddDate(0, 0, -2), 80)
	suite.seedTeamScore(org.ID, beta.ID, day.AddDate(0, 0, -2), 60)
	_, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now.AddDate(0, 0, -1))
	suite.NoError(err)

	// 当日：乙队新成员高分反超
	suite.seedTeamScore(org.ID, beta.ID, day.Add(-time.Hour), 99)
	suite.seedTeamScore(org.ID, beta.ID, day.Add(-2*time.Hour), 99)
	_, err = suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)

	var alphaRow, betaRow models.TeamRankingSnapshot
	suite.NoError(suite.testDB.DB.
		Where("team_id = ? AND snapshot_date = ?", alpha.ID, day).
		First(&alphaRow).Error)
	suite.NoError(suite.testDB.DB.
		Where("team_id = ? AND snapshot_date = ?", beta.ID, day).
		First(&betaRow).Error)

	suite.Equal(1, betaRow.Rank)
	suite.Equal(models.RankTrendUp, betaRow.Trend)
	suite.NotNil(betaRow.PreviousRank)
	suite.Equal(2, *betaRow.PreviousRank)

	suite.Equal(2, alphaRow.Rank)
	suite.Equal(models.RankTrendDown, alphaRow.Trend)
}

// TestTeamWithoutScoresRanksLast 无得分团队以零分保留并排在末尾
func (suite *RankingAggregatorTestSuite) TestTeamWithoutScoresRanksLast() {
	org := suite.factory.CreateOrganization("测试组织")
	alpha := suite.factory.CreateTeam(org.ID, "甲队")
	empty := suite.factory.CreateTeam(org.ID, "空队")
	day := suite.now.Truncate(24 * time.Hour)

	suite.seedTeamScore(org.ID, alpha.ID, day.AddDate(0, 0, -1), 40)

	written, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)
	suite.Equal(2, written)

	var emptyRow models.TeamRankingSnapshot
	suite.NoError(suite.testDB.DB.Where("team_id = ?", empty.ID).First(&emptyRow).Error)
	suite.Equal(2, emptyRow.Rank)
	suite.Equal(0.0, emptyRow.AvgCorrixScore)
}

// TestIdempotentUpsert 同日重复运行覆盖同一行
func (suite *RankingAggregatorTestSuite) TestIdempotentUpsert() {
	org := suite.factory.CreateOrganization("测试组织")
	alpha := suite.factory.CreateTeam(org.ID, "甲队")
	day := suite.now.Truncate(24 * time.Hour)
	suite.seedTeamScore(org.ID, alpha.ID, day.AddDate(0, 0, -1), 70)

	_, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)
	_, err = suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)

	var count int64
	suite.testDB.DB.Model(&models.TeamRankingSnapshot{}).Count(&count)
	suite.Equal(int64(1), count)
}

func TestRankingAggregatorTestSuite(t *testing.T) {
	suite.Run(t, new(RankingAggregatorTestSuite))
}
