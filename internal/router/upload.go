package router

import (
	"context"
	"errors"
	"net/http"

	"fathomupload/internal/ingest"
	"fathomupload/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ingester 处理一次上传请求。
type Ingester interface {
	Ingest(ctx context.Context, req ingest.Request) (ingest.Result, error)
}

// UploadHandler 负责任意路径的 POST 上传。
type UploadHandler struct {
	service Ingester
	logger  *zap.Logger
}

// NewUploadHandler 构建一个新的 UploadHandler。
func NewUploadHandler(service Ingester, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{service: service, logger: logger}
}

// RegisterRoutes 注册上传路由，路径不参与处理。
func (h *UploadHandler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/*path", h.handleUpload)
}

func (h *UploadHandler) handleUpload(c *gin.Context) {
	ctx := c.Request.Context()
	res, err := h.service.Ingest(ctx, ingest.Request{
		ContentType:   c.GetHeader("Content-Type"),
		Body:          c.Request.Body,
		SourceAddress: c.ClientIP(),
	})
	if err != nil {
		status, body := errorResponse(err)
		logging.FromContext(ctx, h.logger).Warn("upload failed", zap.Int("status", status), zap.Error(err))
		c.JSON(status, body)
		return
	}
	logging.FromContext(ctx, h.logger).Debug("upload stored", zap.Int(logging.FieldCount, res.Total))
	c.Status(http.StatusOK)
}

func errorResponse(err error) (int, gin.H) {
	var (
		decodeErr *ingest.DecodeError
		commitErr *ingest.CommitError
	)
	switch {
	case errors.Is(err, ingest.ErrNoValidDocuments):
		return http.StatusInternalServerError, gin.H{"error": ingest.ErrNoValidDocuments.Error()}
	case errors.Is(err, ingest.ErrBodyTooLarge):
		return http.StatusRequestEntityTooLarge, gin.H{"error": ingest.ErrBodyTooLarge.Error()}
	case errors.Is(err, ingest.ErrUnsupportedContentType):
		return http.StatusInternalServerError, gin.H{"error": err.Error()}
	case errors.Is(err, ingest.ErrInvalidData):
		return http.StatusInternalServerError, gin.H{"error": ingest.ErrInvalidData.Error()}
	case errors.As(err, &commitErr):
		return http.StatusInternalServerError, gin.H{"error": "internal server error", "details": commitErr.Cause.Error()}
	case errors.As(err, &decodeErr):
		return http.StatusInternalServerError, gin.H{"error": "internal server error", "details": decodeErr.Err.Error()}
	default:
		return http.StatusInternalServerError, gin.H{"error": "internal server error", "details": err.Error()}
	}
}
