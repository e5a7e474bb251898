/*
 * @module service/calibration/calibrator
 * @description 平台校准器，维护各平台的在线运行统计量并提供得分校准与百分位查询
 * @architecture 业务服务层 - 带TTL读缓存的注入式组件
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 新样本 -> Welford在线更新 -> 落库并同步缓存; 查询 -> 缓存(TTL刷新) -> 回退硬编码默认值
 * @rules 存储故障时降级为硬编码默认偏移，记警告日志，永不向调用方抛错
 * @dependencies corrix-analytics-service/service/models, corrix-analytics-service/service/mstats, gorm.io/gorm
 * @refs service/scoring/snapshot_calculator.go, service/jobs/pipeline_jobs.go
 */

package calibration

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"corrix-analytics-service/service/models"
	"corrix-analytics-service/service/mstats"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 百分位查询要求的最小样本量
const MinPercentileSampleSize = 100

// 缓存默认刷新周期
const DefaultCacheTTL = time.Hour

// defaultOffsets 无校准数据时使用的硬编码平台偏移
var defaultOffsets = map[string]float64{
	models.PlatformClaude:  0,
	models.PlatformChatGPT: -2.5,
	models.PlatformGemini:  -1.2,
}

// Calibrator 平台校准器
// 持有全部平台校准行的内存读缓存，按TTL惰性刷新
type Calibrator struct {
	db            *gorm.DB
	mu            sync.RWMutex
	recordMu      sync.Mutex // 串行化RecordScore的读-改-写，防止并发样本丢失
	data          map[string]models.PlatformCalibration
	lastRefreshed time.Time
	ttl           time.Duration
}

// NewCalibrator 创建平台校准器实例
func NewCalibrator(db *gorm.DB, ttl time.Duration) *Calibrator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Calibrator{
		db:  db,
		ttl: ttl,
	}
}

// Refresh 强制重载全部平台校准行到缓存
func (c *Calibrator) Refresh(ctx context.Context) error {
	var rows []models.PlatformCalibration
	err := c.db.WithContext(ctx).
		Order("platform ASC, effective_date DESC").
		Find(&rows).Error
	if err != nil {
		return fmt.Errorf("加载平台校准数据失败: %w", err)
	}

	// 每个平台取生效日期最新的一行
	data := make(map[string]models.PlatformCalibration, len(rows))
	for _, row := range rows {
		if _, ok := data[row.Platform]; !ok {
			data[row.Platform] = row
		}
	}

	c.mu.Lock()
	c.data = data
	c.lastRefreshed = time.Now()
	c.mu.Unlock()

	return nil
}

// ensureFresh 缓存过期时刷新，刷新失败降级为默认值
func (c *Calibrator) ensureFresh(ctx context.Context) {
	c.mu.RLock()
	fresh := c.data != nil && time.Since(c.lastRefreshed) < c.ttl
	c.mu.RUnlock()

	if fresh {
		return
	}

	if err := c.Refresh(ctx); err != nil {
		slog.Warn("平台校准缓存刷新失败，使用硬编码默认值", "error", err)
	}
}

// lookup 查缓存中的平台校准行
func (c *Calibrator) lookup(platform string) (models.PlatformCalibration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.data[platform]
	return row, ok
}

// offsetFor 取平台的校准偏移，无数据回退默认值
func (c *Calibrator) offsetFor(platform string) float64 {
	if row, ok := c.lookup(platform); ok {
		return row.CalibrationOffset
	}
	if offset, ok := defaultOffsets[platform]; ok {
		return offset
	}
	return 0
}

// CalibrateScore 对原始得分施加平台偏移，四舍五入后钳制到[0,100]
// unknown平台不施加偏移
func (c *Calibrator) CalibrateScore(ctx context.Context, raw float64, platform string) int {
	if platform == models.PlatformUnknown || platform == "" {
		return int(mstats.Clamp(math.Round(raw), 0, 100))
	}

	c.ensureFresh(ctx)
	offset := c.offsetFor(platform)
	return int(mstats.Clamp(math.Round(raw+offset), 0, 100))
}

// Percentile 基于平台正态分布估计得分的百分位
// 样本量不足或标准差未知时返回ok=false，表示数据不足而非错误
func (c *Calibrator) Percentile(ctx context.Context, score float64, platform string) (int, bool) {
	c.ensureFresh(ctx)

	row, found := c.lookup(platform)
	if !found || row.SampleSize < MinPercentileSampleSize || row.StdDev <= 0 {
		return 0, false
	}

	z := (score - row.MeanScore) / row.StdDev
	p := math.Round(50 * (1 + mstats.Erf(z/math.Sqrt2)))
	return int(mstats.Clamp(p, 1, 99)), true
}

// RecordScore 将新样本纳入平台的在线运行统计量并落库
// 快照作业从工作池并发调用本方法，整个读-改-写持锁执行，
// 否则同平台的两次更新会基于同一旧行计算，后写覆盖前写丢失样本
func (c *Calibrator) RecordScore(ctx context.Context, platform string, score float64) error {
	c.recordMu.Lock()
	defer c.recordMu.Unlock()

	var row models.PlatformCalibration
	err := c.db.WithContext(ctx).
		Where("platform = ?", platform).
		Order("effective_date DESC").
		First(&row).Error

	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("读取平台校准行失败: %w", err)
		}
		offset := 0.0
		if d, ok := defaultOffsets[platform]; ok {
			offset = d
		}
		row = models.PlatformCalibration{
			ID:                uuid.New().String(),
			Platform:          platform,
			EffectiveDate:     truncateToDay(time.Now()),
			CalibrationOffset: offset,
		}
	}

	n, mean, variance := mstats.WelfordUpdate(row.SampleSize, row.MeanScore, row.Variance, score)
	row.SampleSize = n
	row.MeanScore = mean
	row.Variance = variance
	row.StdDev = math.Sqrt(variance)
	row.UpdatedAt = time.Now()

	err = c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform"}, {Name: "effective_date"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("写入平台校准行失败: %w", err)
	}

	// 同步缓存，避免读到刷新前的旧统计量
	c.mu.Lock()
	if c.data == nil {
		c.data = make(map[string]models.PlatformCalibration)
	}
	c.data[platform] = row
	c.mu.Unlock()

	return nil
}

// RecomputeOffsets 按各平台均值与全局均值的差重算校准偏移
// 仅对样本量达到百分位门槛的平台调整，保持跨平台可比性
func (c *Calibrator) RecomputeOffsets(ctx context.Context) (int, error) {
	if err := c.Refresh(ctx); err != nil {
		return 0, err
	}

	c.mu.RLock()
	rows := make([]models.PlatformCalibration, 0, len(c.data))
	for _, row := range c.data {
		rows = append(rows, row)
	}
	c.mu.RUnlock()

	var totalWeight float64
	var weightedSum float64
	for _, row := range rows {
		if row.SampleSize > 0 {
			weightedSum += row.MeanScore * float64(row.SampleSize)
			totalWeight += float64(row.SampleSize)
		}
	}
	if totalWeight == 0 {
		return 0, nil
	}
	globalMean := weightedSum / totalWeight

	updated := 0
	for _, row := range rows {
		if row.SampleSize < MinPercentileSampleSize {
			continue
		}
		row.CalibrationOffset = globalMean - row.MeanScore
		row.UpdatedAt = time.Now()

		err := c.db.WithContext(ctx).
			Model(&models.PlatformCalibration{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"calibration_offset": row.CalibrationOffset,
				"updated_at":         row.UpdatedAt,
			}).Error
		if err != nil {
			return updated, fmt.Errorf("更新平台校准偏移失败 [%s]: %w", row.Platform, err)
		}

		c.mu.Lock()
		c.data[row.Platform] = row
		c.mu.Unlock()
		updated++
	}

	return updated, nil
}

// truncateToDay 截断到日期
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
