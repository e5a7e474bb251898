/*
 * @module service/calibration/calibrator_test
 * @description 平台校准器测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 准备校准行 -> 调用校准器 -> 验证得分与百分位
 * @rules 使用内存SQLite隔离测试数据
 * @dependencies testify/suite, testutil
 * @refs calibrator.go
 */

package calibration

import (
	"context"
	"sync"
	"testing"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/testutil"

	"github.com/stretchr/testify/suite"
)

type CalibratorTestSuite struct {
	suite.Suite
	testDB     *testutil.TestDB
	factory    *testutil.TestDataFactory
	calibrator *Calibrator
	ctx        context.Context
}

func (suite *CalibratorTestSuite) SetupSuite() {
	suite.testDB = testutil.NewTestDB()
	suite.factory = testutil.NewTestDataFactory(suite.testDB.DB)
	suite.ctx = context.Background()
}

func (suite *CalibratorTestSuite) TearDownSuite() {
	suite.testDB.Close()
}

func (suite *CalibratorTestSuite) SetupTest() {
	suite.testDB.CleanDB()
	suite.calibrator = NewCalibrator(suite.testDB.DB, DefaultCacheTTL)
}

// TestCalibrateScoreDefaultOffsets 无校准数据时使用硬编码默认偏移
func (suite *CalibratorTestSuite) TestCalibrateScoreDefaultOffsets() {
	// 77 - 2.5 = 74.5，四舍五入到75
	suite.Equal(75, suite.calibrator.CalibrateScore(suite.ctx, 77, models.PlatformChatGPT))
	suite.Equal(77, suite.calibrator.CalibrateScore(suite.ctx, 77, models.PlatformClaude))
	// 77 - 1.2 = 75.8，四舍五入到76
	suite.Equal(76, suite.calibrator.CalibrateScore(suite.ctx, 77, models.PlatformGemini))
}

// TestCalibrateScoreUnknownPlatform unknown平台原样透传
func (suite *CalibratorTestSuite) TestCalibrateScoreUnknownPlatform() {
	suite.Equal(77, suite.calibrator.CalibrateScore(suite.ctx, 77, models.PlatformUnknown))
	suite.Equal(77, suite.calibrator.CalibrateScore(suite.ctx, 77, ""))
}

// TestCalibrateScoreClamped 校准结果钳制到[0,100]
func (suite *CalibratorTestSuite) TestCalibrateScoreClamped() {
	suite.factory.CreateCalibration(models.PlatformChatGPT, 200, 75, 5, 8)
	suite.Equal(100, suite.calibrator.CalibrateScore(suite.ctx, 97, models.PlatformChatGPT))

	suite.factory.CreateCalibration(models.PlatformGemini, 200, 75, 5, -10)
	suite.calibrator = NewCalibrator(suite.testDB.DB, DefaultCacheTTL)
	suite.Equal(0, suite.calibrator.CalibrateScore(suite.ctx, 4, models.PlatformGemini))
}

// TestCalibrateScoreUsesStoredOffset 落库偏移优先于默认值
func (suite *CalibratorTestSuite) TestCalibrateScoreUsesStoredOffset() {
	suite.factory.CreateCalibration(models.PlatformChatGPT, 500, 72, 6, 3)
	suite.Equal(80, suite.calibrator.CalibrateScore(suite.ctx, 77, models.PlatformChatGPT))
}

// TestPercentileInsufficientData 样本量不足返回ok=false
func (suite *CalibratorTestSuite) TestPercentileInsufficientData() {
	_, ok := suite.calibrator.Percentile(suite.ctx, 75, models.PlatformClaude)
	suite.False(ok)

	suite.factory.CreateCalibration(models.PlatformClaude, MinPercentileSampleSize-1, 75, 5, 0)
	suite.calibrator = NewCalibrator(suite.testDB.DB, DefaultCacheTTL)
	_, ok = suite.calibrator.Percentile(suite.ctx, 75, models.PlatformClaude)
	suite.False(ok)
}

// TestPercentileNormalEstimate 均值处为50，按正态分布外推并钳制[1,99]
func (suite *CalibratorTestSuite) TestPercentileNormalEstimate() {
	suite.factory.CreateCalibration(models.PlatformClaude, 150, 75, 5, 0)

	p, ok := suite.calibrator.Percentile(suite.ctx, 75, models.PlatformClaude)
	suite.True(ok)
	suite.Equal(50, p)

	// z=1 对应约84%
	p, ok = suite.calibrator.Percentile(suite.ctx, 80, models.PlatformClaude)
	suite.True(ok)
	suite.Equal(84, p)

	p, ok = suite.calibrator.Percentile(suite.ctx, 100, models.PlatformClaude)
	suite.True(ok)
	suite.Equal(99, p)

	p, ok = suite.calibrator.Percentile(suite.ctx, 50, models.PlatformClaude)
	suite.True(ok)
	suite.Equal(1, p)
}

// TestRecordScoreWelford 在线统计量按Welford递推更新
func (suite *CalibratorTestSuite) TestRecordScoreWelford() {
	for _, score := range []float64{70, 80, 90} {
		suite.NoError(suite.calibrator.RecordScore(suite.ctx, models.PlatformChatGPT, score))
	}

	var row models.PlatformCalibration
	err := suite.testDB.DB.Where("platform = ?", models.PlatformChatGPT).First(&row).Error
	suite.NoError(err)

	suite.Equal(int64(3), row.SampleSize)
	suite.InDelta(80.0, row.MeanScore, 1e-9)
	suite.InDelta(100.0, row.Variance, 1e-9)
	suite.InDelta(10.0, row.StdDev, 1e-9)
	// 新建行继承默认偏移
	suite.InDelta(-2.5, row.CalibrationOffset, 1e-9)

	// 同平台同生效日只保留一行
	var count int64
	suite.testDB.DB.Model(&models.PlatformCalibration{}).Count(&count)
	suite.Equal(int64(1), count)
}

// TestRecordScoreConcurrent 并发写入不丢样本，统计量与串行结果一致
func (suite *CalibratorTestSuite) TestRecordScoreConcurrent() {
	const workers = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			score := 70.0
			if i%2 == 1 {
				score = 90.0
			}
			suite.NoError(suite.calibrator.RecordScore(suite.ctx, models.PlatformClaude, score))
		}(i)
	}
	wg.Wait()

	var row models.PlatformCalibration
	suite.NoError(suite.testDB.DB.Where("platform = ?", models.PlatformClaude).First(&row).Error)

	suite.Equal(int64(workers), row.SampleSize)
	suite.InDelta(80.0, row.MeanScore, 1e-6)
	// 100分差的对半分布，样本方差 200*100/199
	suite.InDelta(20000.0/199, row.Variance, 1e-6)
}

// TestRecomputeOffsets 偏移重算对齐各平台均值到全局加权均值
func (suite *CalibratorTestSuite) TestRecomputeOffsets() {
	suite.factory.CreateCalibration(models.PlatformClaude, 200, 80, 5, 0)
	suite.factory.CreateCalibration(models.PlatformChatGPT, 200, 75, 5, -2.5)
	// 样本量不足的平台不参与调整
	suite.factory.CreateCalibration(models.PlatformGemini, 10, 60, 5, -1.2)

	updated, err := suite.calibrator.RecomputeOffsets(suite.ctx)
	suite.NoError(err)
	suite.Equal(2, updated)

	// 全局加权均值 (80*200+75*200+60*10)/410 ≈ 77.195
	var claude, chatgpt, gemini models.PlatformCalibration
	suite.testDB.DB.Where("platform = ?", models.PlatformClaude).First(&claude)
	suite.testDB.DB.Where("platform = ?", models.PlatformChatGPT).First(&chatgpt)
	suite.testDB.DB.Where("platform = ?", models.PlatformGemini).First(&gemini)

	globalMean := (80.0*200 + 75.0*200 + 60.0*10) / 410.0
	suite.InDelta(globalMean-80, claude.CalibrationOffset, 1e-6)
	suite.InDelta(globalMean-75, chatgpt.CalibrationOffset, 1e-6)
	suite.InDelta(-1.2, gemini.CalibrationOffset, 1e-6)
}

func TestCalibratorTestSuite(t *testing.T) {
	suite.Run(t, new(CalibratorTestSuite))
}
