package router

import (
	"fathomupload/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// RequestID 为每个请求生成 request id，并把带该字段的 logger 放入请求 ctx。
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		reqLogger := logger.With(zap.String(logging.FieldRequestID, id))
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), reqLogger))
		c.Next()
	}
}
