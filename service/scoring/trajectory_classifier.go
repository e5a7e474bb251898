/*
 * @module service/scoring/trajectory_classifier
 * @description 轨迹分类器，根据用户近期快照历史判定技能动量方向
 * @architecture 业务服务层 - 纯函数计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 读取最近7条历史得分 -> 计算近期/上期变化 -> 按固定顺序规则分类
 * @rules 历史不足2条时轨迹字段为零值/steady，分类规则按声明顺序短路求值
 * @dependencies corrix-analytics-service/service/models
 * @refs service/scoring/snapshot_calculator.go
 */

package scoring

import (
	"math"

	"corrix-analytics-service/service/models"
)

// 轨迹历史最多回看的快照条数
const trajectoryHistorySize = 7

// TrajectoryResult 轨迹分类结果
type TrajectoryResult struct {
	Direction            string  `json:"direction"`
	Score                float64 `json:"score"` // 近期变化量
	DaysSinceImprovement int     `json:"days_since_improvement"`
}

// ClassifyTrajectory 根据历史综合得分与今日得分分类技能动量
// history按时间倒序排列，history[0]为更新前最近一条
func ClassifyTrajectory(history []float64, today float64) TrajectoryResult {
	if len(history) < 2 {
		return TrajectoryResult{
			Direction:            models.TrajectorySteady,
			Score:                0,
			DaysSinceImprovement: 0,
		}
	}

	recentChange := today - history[0]
	previousChange := history[0] - history[1]

	// 规则按顺序求值，命中即返回
	var direction string
	switch {
	case recentChange > 1 && recentChange > previousChange:
		direction = models.TrajectoryAccelerating
	case recentChange > 0.5:
		direction = models.TrajectorySteady
	case math.Abs(recentChange) < 0.5:
		direction = models.TrajectoryPlateauing
	default:
		direction = models.TrajectoryDeclining
	}

	return TrajectoryResult{
		Direction:            direction,
		Score:                recentChange,
		DaysSinceImprovement: daysSinceImprovement(history, today),
	}
}

// daysSinceImprovement 从最新往旧扫描，统计得分未明显低于今日的连续条数
// 首条历史即低于today-1时返回0
func daysSinceImprovement(history []float64, today float64) int {
	count := 0
	for _, score := range history {
		if score < today-1 {
			break
		}
		count++
	}
	return count
}
