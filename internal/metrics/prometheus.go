package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"fathomupload/internal/stats"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}

// Metrics 汇总上传相关的 Prometheus 指标，同时实现 stats.Reporter。
type Metrics struct {
	UploadDocuments prometheus.Counter
	UploadErrors    prometheus.Counter
	LastUpload      prometheus.Gauge
	LastError       prometheus.Gauge
	RequestTotal    *prometheus.CounterVec
	RequestLatency  *prometheus.HistogramVec
}

var _ stats.Reporter = (*Metrics)(nil)

// New 创建指标并注册到 reg，已注册的同名指标会被复用。
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		UploadDocuments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fathom",
			Subsystem: "upload",
			Name:      "documents_total",
			Help:      "成功写入的文档数",
		}),
		UploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fathom",
			Subsystem: "upload",
			Name:      "errors_total",
			Help:      "失败的上传请求数",
		}),
		LastUpload: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fathom",
			Subsystem: "upload",
			Name:      "last_upload_timestamp_seconds",
			Help:      "最近一次成功上传的时间",
		}),
		LastError: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fathom",
			Subsystem: "upload",
			Name:      "last_error_timestamp_seconds",
			Help:      "最近一次失败上传的时间",
		}),
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fathom",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP 请求数",
		}, []string{"method", "route", "status"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fathom",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}
	if reg != nil {
		m.UploadDocuments = register(reg, m.UploadDocuments)
		m.UploadErrors = register(reg, m.UploadErrors)
		m.LastUpload = register(reg, m.LastUpload)
		m.LastError = register(reg, m.LastError)
		m.RequestTotal = register(reg, m.RequestTotal)
		m.RequestLatency = register(reg, m.RequestLatency)
	}
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// IncrementUpload 实现 stats.Reporter。
func (m *Metrics) IncrementUpload(_ context.Context, count int) error {
	m.UploadDocuments.Add(float64(count))
	m.LastUpload.SetToCurrentTime()
	return nil
}

// IncrementError 实现 stats.Reporter。
func (m *Metrics) IncrementError(context.Context) error {
	m.UploadErrors.Inc()
	m.LastError.SetToCurrentTime()
	return nil
}

// Middleware 记录请求数与耗时，未匹配路由的 route 标签统一为 "unmatched"。
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.RequestTotal.With(labels).Inc()
		m.RequestLatency.With(labels).Observe(time.Since(start).Seconds())
	}
}
