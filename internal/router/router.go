package router

import (
	"net/http"

	"fathomupload/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const notFoundBody = "Sorry cant find that!"

// Options 控制引擎的可选行为。
type Options struct {
	TrustProxy bool
	Metrics    *metrics.Metrics
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
}

// NewEngine 构建 gin 引擎并注册所有模块路由。
func NewEngine(upload *UploadHandler, status *StatusHandler, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID(opts.Logger))
	if opts.Metrics != nil {
		engine.Use(opts.Metrics.Middleware())
	}
	if !opts.TrustProxy {
		engine.ForwardedByClientIP = false
		_ = engine.SetTrustedProxies(nil)
	}

	status.RegisterRoutes(engine)
	if opts.Gatherer != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	upload.RegisterRoutes(engine)

	engine.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, notFoundBody)
	})
	return engine
}
