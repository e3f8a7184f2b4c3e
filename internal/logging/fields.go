package logging

import (
	"context"

	"go.uber.org/zap"
)

// 统一的日志字段名。
const (
	FieldRequestID     = "request_id"
	FieldDestination   = "destination"
	FieldCount         = "count"
	FieldInserted      = "inserted"
	FieldContentType   = "content_type"
	FieldSourceAddress = "source_address"
	FieldErrorClass    = "error_class"
	FieldState         = "state"
	FieldDuration      = "duration"
)

type ctxKey struct{}

// WithContext 将 logger 绑定到 ctx。
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext 返回 ctx 上的 logger，不存在时返回 fallback，fallback 为 nil 时返回 Nop。
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && logger != nil {
			return logger
		}
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}
