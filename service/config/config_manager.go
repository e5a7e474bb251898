/*
 * @module service/config/config_manager
 * @description 配置管理器，负责系统配置的数据库读写与内存缓存
 * @architecture 分层架构 - 业务服务层
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 配置读取 -> 缓存命中/数据库查询 -> 返回值或默认值
 * @rules 数据库不可用时回退默认值，配置读取永不阻塞作业运行
 * @dependencies corrix-analytics-service/service/models, gorm.io/gorm
 * @refs service/config/config_service.go
 */

package config

import (
	"fmt"
	"sync"

	"corrix-analytics-service/service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 配置所属环境，当前只使用default
const configEnvironment = "default"

// ConfigManager 配置管理器
type ConfigManager struct {
	db    *gorm.DB
	mu    sync.RWMutex
	cache map[string]string
}

// NewConfigManager 创建配置管理器实例
func NewConfigManager(db *gorm.DB) *ConfigManager {
	return &ConfigManager{
		db:    db,
		cache: make(map[string]string),
	}
}

// GetConfig 读取配置值，优先缓存，未命中查数据库
func (m *ConfigManager) GetConfig(key string) (string, error) {
	m.mu.RLock()
	if value, ok := m.cache[key]; ok {
		m.mu.RUnlock()
		return value, nil
	}
	m.mu.RUnlock()

	var record models.SystemConfig
	err := m.db.Where("key = ? AND environment = ?", key, configEnvironment).
		First(&record).Error
	if err != nil {
		return "", fmt.Errorf("读取配置失败 [%s]: %w", key, err)
	}

	m.mu.Lock()
	m.cache[key] = record.Value
	m.mu.Unlock()

	return record.Value, nil
}

// SetConfig 写入配置并同步缓存
func (m *ConfigManager) SetConfig(key, value, description string) error {
	record := models.SystemConfig{
		ID:          uuid.New().String(),
		Key:         key,
		Value:       value,
		Environment: configEnvironment,
		Description: description,
	}

	err := m.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "environment"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("写入配置失败 [%s]: %w", key, err)
	}

	m.mu.Lock()
	m.cache[key] = value
	m.mu.Unlock()

	return nil
}

// InvalidateCache 清空配置缓存
func (m *ConfigManager) InvalidateCache() {
	m.mu.Lock()
	m.cache = make(map[string]string)
	m.mu.Unlock()
}
