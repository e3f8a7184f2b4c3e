package ioc

import (
	"fathomupload/internal/app"
	"fathomupload/internal/ingest"
	"fathomupload/internal/metrics"
	"fathomupload/internal/router"
	"fathomupload/internal/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// InitUploadHandler 构建上传 HTTP 处理器。
func InitUploadHandler(svc *ingest.Service, logger *zap.Logger) *router.UploadHandler {
	return router.NewUploadHandler(svc, logger)
}

// InitStatusHandler 构建 /status 处理器。
func InitStatusHandler(snapshotter stats.Snapshotter, logger *zap.Logger) *router.StatusHandler {
	return router.NewStatusHandler(snapshotter, logger)
}

// InitGinEngine 构建 gin 引擎。
func InitGinEngine(cfg app.Config, upload *router.UploadHandler, status *router.StatusHandler, m *metrics.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	return router.NewEngine(upload, status, router.Options{
		TrustProxy: cfg.HTTP.TrustProxy,
		Metrics:    m,
		Gatherer:   gatherer,
		Logger:     logger,
	})
}
