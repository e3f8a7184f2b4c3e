package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger 基于开发配置构建 logger，level 与 encoding 为空时分别使用 info 与 console。
func NewZapLogger(level, encoding string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Encoding = "console"
	if enc := strings.TrimSpace(encoding); enc != "" {
		cfg.Encoding = enc
	}
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
			return nil, fmt.Errorf("无效的日志级别 %q: %w", level, err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if lvl > zapcore.DebugLevel {
		cfg.Development = false
	}
	return cfg.Build()
}
