/*
 * @module service/signals/store_test
 * @description 行为信号读取层测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 构造信号 -> 窗口查询 -> 验证边界与去重
 * @rules 使用内存SQLite隔离测试数据
 * @dependencies testify/suite, testutil
 * @refs store.go
 */

package signals

import (
	"context"
	"testing"
	"time"

	"corrix-analytics-service/testutil"

	"github.com/stretchr/testify/suite"
)

type SignalStoreTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDB
	factory *testutil.TestDataFactory
	store   *Store
	ctx     context.Context
	now     time.Time
}

func (suite *SignalStoreTestSuite) SetupSuite() {
	suite.testDB = testutil.NewTestDB()
	suite.factory = testutil.NewTestDataFactory(suite.testDB.DB)
	suite.ctx = context.Background()
	suite.now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (suite *SignalStoreTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

func (suite *SignalStoreTestSuite) SetupTest() {
	suite.testDB.CleanDB()
	suite.store = NewStore(suite.testDB.DB)
}

// TestSignalsInWindowBounds 窗口为左闭右开，结果按时间升序
func (suite *SignalStoreTestSuite) TestSignalsInWindowBounds() {
	org := suite.factory.CreateOrganization("测试组织")
	profile := suite.factory.CreateUserProfile(org.ID, "")
	from := suite.now.AddDate(0, 0, -14)

	suite.factory.CreateSignal(profile.UserID, org.ID, from.Add(-time.Second)) // 窗口前
	suite.factory.CreateSignal(profile.UserID, org.ID, from)                   // 左边界含
	suite.factory.CreateSignal(profile.UserID, org.ID, suite.now.Add(-time.Hour))
	suite.factory.CreateSignal(profile.UserID, org.ID, suite.now) // 右边界不含

	signals, err := suite.store.SignalsInWindow(suite.ctx, profile.UserID, from, suite.now)
	suite.NoError(err)
	suite.Len(signals, 2)
	suite.True(signals[0].Timestamp.Before(signals[1].Timestamp))
}

// TestActiveUserIDsDistinct 活跃用户按组织与窗口去重
func (suite *SignalStoreTestSuite) TestActiveUserIDsDistinct() {
	org := suite.factory.CreateOrganization("测试组织")
	other := suite.factory.CreateOrganization("其他组织")
	userA := suite.factory.CreateUserProfile(org.ID, "")
	userB := suite.factory.CreateUserProfile(org.ID, "")
	outsider := suite.factory.CreateUserProfile(other.ID, "")
	from := suite.now.AddDate(0, 0, -14)

	suite.factory.CreateSignal(userA.UserID, org.ID, suite.now.Add(-time.Hour))
	suite.factory.CreateSignal(userA.UserID, org.ID, suite.now.Add(-2*time.Hour))
	suite.factory.CreateSignal(userB.UserID, org.ID, suite.now.Add(-3*time.Hour))
	suite.factory.CreateSignal(outsider.UserID, other.ID, suite.now.Add(-time.Hour))

	userIDs, err := suite.store.ActiveUserIDs(suite.ctx, org.ID, from, suite.now)
	suite.NoError(err)
	suite.Len(userIDs, 2)
	suite.Contains(userIDs, userA.UserID)
	suite.Contains(userIDs, userB.UserID)
	suite.NotContains(userIDs, outsider.UserID)
}

// TestFirstSignalTime 无信号返回nil而非错误
func (suite *SignalStoreTestSuite) TestFirstSignalTime() {
	org := suite.factory.CreateOrganization("测试组织")
	profile := suite.factory.CreateUserProfile(org.ID, "")

	first, err := suite.store.FirstSignalTime(suite.ctx, profile.UserID)
	suite.NoError(err)
	suite.Nil(first)

	earliest := suite.now.AddDate(0, 0, -30)
	suite.factory.CreateSignal(profile.UserID, org.ID, suite.now.Add(-time.Hour))
	suite.factory.CreateSignal(profile.UserID, org.ID, earliest)

	first, err = suite.store.FirstSignalTime(suite.ctx, profile.UserID)
	suite.NoError(err)
	suite.NotNil(first)
	suite.True(first.Equal(earliest))
}

// TestCountTotals 会话按session_id去重，交互按行计数
func (suite *SignalStoreTestSuite) TestCountTotals() {
	org := suite.factory.CreateOrganization("测试组织")
	profile := suite.factory.CreateUserProfile(org.ID, "")

	suite.factory.CreateSignal(profile.UserID, org.ID, suite.now.Add(-3*time.Hour), testutil.WithSession("s1"))
	suite.factory.CreateSignal(profile.UserID, org.ID, suite.now.Add(-2*time.Hour), testutil.WithSession("s1"))
	suite.factory.CreateSignal(profile.UserID, org.ID, suite.now.Add(-time.Hour), testutil.WithSession("s2"))

	sessions, interactions, err := suite.store.CountTotals(suite.ctx, profile.UserID, suite.now)
	suite.NoError(err)
	suite.Equal(2, sessions)
	suite.Equal(3, interactions)
}

func TestSignalStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SignalStoreTestSuite))
}
