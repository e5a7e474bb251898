package logger

import (
	"log/slog"
	"os"
)

// InitLogger 初始化全局日志记录器
// 创建 JSON 格式的日志处理器,输出到 stdout，级别可由 LOG_LEVEL 调整
func InitLogger() {
	level := slog.LevelInfo
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		_ = level.UnmarshalText([]byte(val))
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
}
