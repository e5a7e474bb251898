/*
 * @module service/trend/trend_aggregator_test
 * @description 得分趋势聚合器测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 构造得分序列 -> 聚合趋势 -> 验证分桶/环比/幂等性
 * @rules 使用内存SQLite隔离测试数据
 * @dependencies testify/suite, testutil
 * @refs trend_aggregator.go
 */

package trend

import (
	"context"
	"testing"
	"time"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/testutil"

	"github.com/stretchr/testify/suite"
)

type TrendAggregatorTestSuite struct {
	suite.Suite
	testDB     *testutil.TestDB
	factory    *testutil.TestDataFactory
	aggregator *Aggregator
	ctx        context.Context
	now        time.Time
}

func (suite *TrendAggregatorTestSuite) SetupSuite() {
	suite.testDB = testutil.NewTestDB()
	suite.factory = testutil.NewTestDataFactory(suite.testDB.DB)
	suite.ctx = context.Background()
	// 2025-06-15为周日
	suite.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (suite *TrendAggregatorTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

func (suite *TrendAggregatorTestSuite) SetupTest() {
	suite.testDB.CleanDB()
	suite.aggregator = NewAggregator(suite.testDB.DB, DefaultWindowDays)
}

// TestDailyChangePercentage 日周期环比对上一天均值计算
func (suite *TrendAggregatorTestSuite) TestDailyChangePercentage() {
	org := suite.factory.CreateOrganization("测试组织")
	team := suite.factory.CreateTeam(org.ID, "测试团队")
	profile := suite.factory.CreateUserProfile(org.ID, team.ID)
	day := suite.now.Truncate(24 * time.Hour)

	suite.factory.CreateUserScore(profile.UserID, org.ID, team.ID, day.AddDate(0, 0, -3), 10)
	suite.factory.CreateUserScore(profile.UserID, org.ID, team.ID, day.AddDate(0, 0, -2), 12)
	suite.factory.CreateUserScore(profile.UserID, org.ID, team.ID, day.AddDate(0, 0, -1), 9)

	written, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)
	// 组织/团队/用户三个作用域，各3日+1周+1月
	suite.Equal(15, written)

	var rows []models.ScoreTrendAggregation
	suite.testDB.DB.
		Where("scope_type = ? AND period_type = ?", models.ScopeOrganization, models.PeriodDay).
		Order("period_date ASC").
		Find(&rows)
	suite.Len(rows, 3)

	// 首个周期无环比
	suite.Nil(rows[0].ChangePercentage)
	suite.NotNil(rows[1].ChangePercentage)
	suite.InDelta(20.0, *rows[1].ChangePercentage, 1e-9)
	suite.NotNil(rows[2].ChangePercentage)
	suite.InDelta(-25.0, *rows[2].ChangePercentage, 1e-9)
}

// TestWeekAndMonthBuckets 周对齐周一，月对齐1日
func (suite *TrendAggregatorTestSuite) TestWeekAndMonthBuckets() {
	org := suite.factory.CreateOrganization("测试组织")
	profile := suite.factory.CreateUserProfile(org.ID, "")
	day := suite.now.Truncate(24 * time.Hour)

	// 6月12-14日，同属周一为6月9日的那一周
	suite.factory.CreateUserScore(profile.UserID, org.ID, "", day.AddDate(0, 0, -3), 10)
	suite.factory.CreateUserScore(profile.UserID, org.ID, "", day.AddDate(0, 0, -2), 12)
	suite.factory.CreateUserScore(profile.UserID, org.ID, "", day.AddDate(0, 0, -1), 9)

	_, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)

	var week models.ScoreTrendAggregation
	err = suite.testDB.DB.
		Where("scope_type = ? AND period_type = ?", models.ScopeOrganization, models.PeriodWeek).
		First(&week).Error
	suite.NoError(err)
	suite.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC), week.PeriodDate.UTC())
	suite.InDelta(31.0/3, week.AvgValue, 1e-9)
	suite.InDelta(9.0, week.MinValue, 1e-9)
	suite.InDelta(12.0, week.MaxValue, 1e-9)
	suite.Equal(3, week.SampleCount)

	var month models.ScoreTrendAggregation
	err = suite.testDB.DB.
		Where("scope_type = ? AND period_type = ?", models.ScopeOrganization, models.PeriodMonth).
		First(&month).Error
	suite.NoError(err)
	suite.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), month.PeriodDate.UTC())
}

// TestZeroPreviousAverage 前期均值为零时环比置空
func (suite *TrendAggregatorTestSuite) TestZeroPreviousAverage() {
	org := suite.factory.CreateOrganization("测试组织")
	profile := suite.factory.CreateUserProfile(org.ID, "")
	day := suite.now.Truncate(24 * time.Hour)

	suite.factory.CreateUserScore(profile.UserID, org.ID, "", day.AddDate(0, 0, -2), 0)
	suite.factory.CreateUserScore(profile.UserID, org.ID, "", day.AddDate(0, 0, -1), 10)

	_, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)

	var rows []models.ScoreTrendAggregation
	suite.testDB.DB.
		Where("scope_type = ? AND period_type = ?", models.ScopeOrganization, models.PeriodDay).
		Order("period_date ASC").
		Find(&rows)
	suite.Len(rows, 2)
	suite.Nil(rows[0].ChangePercentage)
	suite.Nil(rows[1].ChangePercentage)
}

// TestIdempotentUpsert 重复运行覆盖同一批行
func (suite *TrendAggregatorTestSuite) TestIdempotentUpsert() {
	org := suite.factory.CreateOrganization("测试组织")
	profile := suite.factory.CreateUserProfile(org.ID, "")
	day := suite.now.Truncate(24 * time.Hour)
	suite.factory.CreateUserScore(profile.UserID, org.ID, "", day.AddDate(0, 0, -1), 10)

	_, err := suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)
	_, err = suite.aggregator.CalculateOrganization(suite.ctx, org.ID, suite.now)
	suite.NoError(err)

	var count int64
	suite.testDB.DB.Model(&models.ScoreTrendAggregation{}).Count(&count)
	// 组织+用户两个作用域，各1日+1周+1月
	suite.Equal(int64(6), count)
}

func TestTrendAggregatorTestSuite(t *testing.T) {
	suite.Run(t, new(TrendAggregatorTestSuite))
}
