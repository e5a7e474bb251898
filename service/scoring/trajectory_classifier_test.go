/*
 * @module service/scoring/trajectory_classifier_test
 * @description 轨迹分类器测试
 * @architecture 测试层
 * @documentReference .specify/memory/test_plan.md
 * @stateFlow 构造历史得分 -> 分类 -> 断言方向与变化量
 * @rules 覆盖四个方向分支与历史不足的边界
 * @dependencies testing, testify
 * @refs trajectory_classifier.go
 */

package scoring

import (
	"testing"

	"corrix-analytics-service/service/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTrajectoryAccelerating(t *testing.T) {
	// 近期变化 83-80=3 > 1 且大于上期变化 80-78=2
	result := ClassifyTrajectory([]float64{80, 78, 75}, 83)

	assert.Equal(t, models.TrajectoryAccelerating, result.Direction)
	assert.InDelta(t, 3.0, result.Score, 1e-9)
}

func TestClassifyTrajectorySteady(t *testing.T) {
	// 近期变化0.7，未加速但仍在提升
	result := ClassifyTrajectory([]float64{80, 79.8}, 80.7)

	assert.Equal(t, models.TrajectorySteady, result.Direction)
	assert.InDelta(t, 0.7, result.Score, 1e-9)
}

func TestClassifyTrajectorySteadyWhenNotAccelerating(t *testing.T) {
	// 近期变化2 > 1 但不大于上期变化3，不算加速
	result := ClassifyTrajectory([]float64{80, 77}, 82)

	assert.Equal(t, models.TrajectorySteady, result.Direction)
}

func TestClassifyTrajectoryPlateauing(t *testing.T) {
	result := ClassifyTrajectory([]float64{80, 79}, 80.2)

	assert.Equal(t, models.TrajectoryPlateauing, result.Direction)
	assert.InDelta(t, 0.2, result.Score, 1e-9)
}

func TestClassifyTrajectoryDeclining(t *testing.T) {
	result := ClassifyTrajectory([]float64{80, 79}, 78)

	assert.Equal(t, models.TrajectoryDeclining, result.Direction)
	assert.InDelta(t, -2.0, result.Score, 1e-9)
}

func TestClassifyTrajectoryInsufficientHistory(t *testing.T) {
	for _, history := range [][]float64{nil, {75}} {
		result := ClassifyTrajectory(history, 80)

		assert.Equal(t, models.TrajectorySteady, result.Direction)
		assert.Equal(t, 0.0, result.Score)
		assert.Equal(t, 0, result.DaysSinceImprovement)
	}
}

func TestDaysSinceImprovement(t *testing.T) {
	// 今日83，阈值82：首条80已低于阈值
	result := ClassifyTrajectory([]float64{80, 78, 75}, 83)
	assert.Equal(t, 0, result.DaysSinceImprovement)

	// 今日80，阈值79：前三条不低于阈值，第四条中断扫描
	result = ClassifyTrajectory([]float64{80, 79.5, 79, 70, 85}, 80)
	assert.Equal(t, 3, result.DaysSinceImprovement)

	// 全部历史都不低于阈值
	result = ClassifyTrajectory([]float64{80, 80}, 80)
	assert.Equal(t, 2, result.DaysSinceImprovement)
}
