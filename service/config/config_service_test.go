/*
 * @module service/config/config_service_test
 * @description 配置服务测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 空库读默认值 -> 写配置 -> 读覆盖值
 * @rules 使用内存SQLite隔离测试数据
 * @dependencies testify/suite, testutil
 * @refs config_service.go
 */

package config

import (
	"testing"

	"corrix-analytics-service/testutil"

	"github.com/stretchr/testify/suite"
)

type ConfigServiceTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDB
	service *ConfigService
}

func (suite *ConfigServiceTestSuite) SetupSuite() {
	suite.testDB = testutil.NewTestDB()
}

func (suite *ConfigServiceTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

func (suite *ConfigServiceTestSuite) SetupTest() {
	suite.testDB.CleanDB()
	suite.service = NewConfigService(suite.testDB.DB)
}

// TestDefaultsWhenTableEmpty 配置表为空时全部返回默认值
func (suite *ConfigServiceTestSuite) TestDefaultsWhenTableEmpty() {
	suite.Equal(DefaultSignalLookbackDays, suite.service.GetSignalLookbackDays())
	suite.Equal(DefaultBenchmarkWindowDays, suite.service.GetBenchmarkWindowDays())
	suite.Equal(DefaultTrendWindowDays, suite.service.GetTrendWindowDays())
	suite.Equal(DefaultRankingWindowDays, suite.service.GetRankingWindowDays())
	suite.Equal(DefaultWorkerCount, suite.service.GetWorkerCount())
	suite.Equal(DefaultJobLogRetentionDays, suite.service.GetJobLogRetentionDays())
}

// TestStoredValueOverridesDefault 落库配置覆盖默认值
func (suite *ConfigServiceTestSuite) TestStoredValueOverridesDefault() {
	suite.NoError(suite.service.SetConfig(ConfigKeySignalLookbackDays, "30", "延长信号回看窗口"))
	suite.Equal(30, suite.service.GetSignalLookbackDays())
}

// TestInvalidValueFallsBack 非法配置值回退默认值
func (suite *ConfigServiceTestSuite) TestInvalidValueFallsBack() {
	suite.NoError(suite.service.SetConfig(ConfigKeyWorkerCount, "not-a-number", ""))
	suite.Equal(DefaultWorkerCount, suite.service.GetWorkerCount())

	suite.NoError(suite.service.SetConfig(ConfigKeyWorkerCount, "-4", ""))
	suite.Equal(DefaultWorkerCount, suite.service.GetWorkerCount())
}

// TestJobCronDefaults 调度表达式未配置时使用错峰默认
func (suite *ConfigServiceTestSuite) TestJobCronDefaults() {
	suite.Equal("0 0 1 * * *", suite.service.GetJobCron(ConfigKeySnapshotCron))
	suite.Equal("0 0 * * * *", suite.service.GetJobCron(ConfigKeyCalibrationCron))

	suite.NoError(suite.service.SetConfig(ConfigKeySnapshotCron, "0 15 4 * * *", ""))
	suite.Equal("0 15 4 * * *", suite.service.GetJobCron(ConfigKeySnapshotCron))
}

// TestSetConfigUpsert 同键重复写入只保留一行
func (suite *ConfigServiceTestSuite) TestSetConfigUpsert() {
	suite.NoError(suite.service.SetConfig(ConfigKeyTrendWindowDays, "60", ""))
	suite.NoError(suite.service.SetConfig(ConfigKeyTrendWindowDays, "120", ""))
	suite.Equal(120, suite.service.GetTrendWindowDays())
}

func TestConfigServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigServiceTestSuite))
}
