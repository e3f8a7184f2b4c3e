package router

import (
	"encoding/json"
	"net/http"
	"time"

	"fathomupload/internal/stats"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	statusDesc    = "Fathom upload server"
	statusCopy    = "Copyright 2014-2015 MUSE Inria Paris-Rocquencourt"
	statusContact = "muse.fathom@inria.fr"
)

// StatusHandler 输出运行时计数。
type StatusHandler struct {
	stats  stats.Snapshotter
	now    func() time.Time
	logger *zap.Logger
}

// NewStatusHandler 构建 StatusHandler。
func NewStatusHandler(snapshotter stats.Snapshotter, logger *zap.Logger) *StatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusHandler{stats: snapshotter, now: time.Now, logger: logger}
}

func (h *StatusHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/status", h.handleStatus)
}

func (h *StatusHandler) handleStatus(c *gin.Context) {
	obj := map[string]string{}
	if h.stats != nil {
		snap, err := h.stats.Snapshot(c.Request.Context())
		if err != nil {
			h.logger.Warn("read stats snapshot failed", zap.Error(err))
		}
		for k, v := range snap {
			obj[k] = v
		}
	}
	if started, ok := stats.Started(obj); ok {
		obj["uptime"] = "Started " + h.now().Sub(started).Round(time.Second).String() + " ago"
	}
	obj["desc"] = statusDesc
	obj["copy"] = statusCopy
	obj["contact"] = statusContact

	data, err := json.MarshalIndent(obj, "", "    ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "details": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", data)
}
