// Package log carries a request-scoped zap logger through context.Context
// and provides the HTTP middleware that installs it.
package log

import (
	"context"

	"go.uber.org/zap"
)

type ctxMarker struct{}

type requestIDMarker struct{}

var (
	ctxMarkerKey = &ctxMarker{}
	requestIDKey = &requestIDMarker{}
	nullLogger   = zap.NewNop()
)

// FromContext retrieves a *zap.Logger embedded in a context.Context using ToContext.
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(ctxMarkerKey).(*zap.Logger)
	if !ok {
		return nullLogger
	}
	return logger.With() // copy
}

// ToContext embeds a *zap.Logger in a context.Context
func ToContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxMarkerKey, logger)
}

// RequestID returns the id WrapHandler assigned to the current request, or
// "" outside of a request.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
