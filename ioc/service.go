package ioc

import (
	"fathomupload/internal/app"
	"fathomupload/internal/document"
	"fathomupload/internal/ingest"
	"fathomupload/internal/stats"
	"fathomupload/internal/store"
	"go.uber.org/zap"
)

// InitIngestService 构建上传服务。
func InitIngestService(cfg app.Config, s store.Store, reporter stats.Reporter, logger *zap.Logger) *ingest.Service {
	decoder := ingest.NewDecoder(cfg.Ingest.MaxBodyBytes, cfg.Ingest.MaxParts, logger)
	coordinator := ingest.NewCoordinator(s, reporter, cfg.Ingest.ParallelDestinations, logger)
	return ingest.NewService(decoder, document.NewNormalizer(), coordinator, cfg.CommitTimeout(), logger)
}

// InitIndexFlow 构建索引创建流程。
func InitIndexFlow(cfg app.Config, s store.Store, logger *zap.Logger) *app.IndexFlow {
	return &app.IndexFlow{Store: s, Destinations: cfg.Indexes.Destinations, Logger: logger}
}
