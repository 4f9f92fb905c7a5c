package logger

import (
	"context"

	"rawmart-be/internal/utils"

	"go.uber.org/zap"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger enriched with request_id and, once
// the auth middleware has run, the caller's account id and role.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if id, ok := utils.GetUserIDFromContext(ctx); ok {
		l = l.With(
			zap.Uint("account_id", id),
			zap.String("role", utils.GetUserRoleFromContext(ctx)),
		)
	}
	return l
}
