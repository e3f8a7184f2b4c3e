package ioc

import (
	"fathomupload/internal/app"
	"fathomupload/pkg/logging"
	"go.uber.org/zap"
)

// InitLogger 构建全局 logger。
func InitLogger(cfg app.Config) (*zap.Logger, error) {
	return logging.NewZapLogger(cfg.Log.Level, cfg.Log.Encoding)
}
