/*
 * @module service/mstats/descriptive
 * @description 描述统计内核，提供均值、标准差、中位数、线性插值百分位与误差函数
 * @architecture 工具层 - 纯数值计算
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow N/A
 * @rules 所有函数对空输入返回0，不产生NaN或Inf
 * @dependencies math, sort
 * @refs service/benchmark, service/calibration
 */

package mstats

import (
	"math"
	"sort"
)

// Mean 算术平均值，空切片返回0
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev 样本标准差（n-1），样本数不足2返回0
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// Median 中位数，等价于50百分位
func Median(values []float64) float64 {
	return Percentile(values, 50)
}

// Percentile 线性插值百分位估计
// 对排序后的样本，秩 r = p/100*(n-1)，在相邻样本间线性插值
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[n-1]
	}

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1
	frac := rank - float64(lower)
	if upper >= n {
		return sorted[n-1]
	}
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

// 误差函数有理逼近系数（Abramowitz-Stegun 7.1.26）
const (
	erfA1 = 0.254829592
	erfA2 = -0.284496736
	erfA3 = 1.421413741
	erfA4 = -1.453152027
	erfA5 = 1.061405429
	erfP  = 0.3275911
)

// Erf 误差函数的有理逼近，绝对误差约1.5e-7
func Erf(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}

	t := 1.0 / (1.0 + erfP*x)
	y := 1.0 - (((((erfA5*t+erfA4)*t)+erfA3)*t+erfA2)*t+erfA1)*t*math.Exp(-x*x)

	return sign * y
}

// WelfordUpdate 在线均值/方差的单步更新
// 输入先前的样本数、均值与样本方差，返回纳入新样本x后的统计量
func WelfordUpdate(n int64, mean, variance, x float64) (int64, float64, float64) {
	newN := n + 1
	newMean := mean + (x-mean)/float64(newN)

	var newVariance float64
	if newN > 1 {
		newVariance = (float64(newN-2)*variance + (x-mean)*(x-newMean)) / float64(newN-1)
	}

	return newN, newMean, newVariance
}

// Clamp 将v限制在[lo, hi]区间内
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
