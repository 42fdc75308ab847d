package logging

import (
	"context"

	"go.uber.org/zap"
)

// Context key types
type scanCtxKey struct{}
type remoteCtxKey struct{}
type loggerCtxKey struct{}

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)

	if scanID := ScanIDFromContext(ctx); scanID != "" {
		fields = append(fields, zap.String("scan.id", scanID))
	}
	if remoteKey := RemoteKeyFromContext(ctx); remoteKey != "" {
		fields = append(fields, zap.String("remote.key", remoteKey))
	}

	return fields
}

// WithScanID adds a scan correlation id to the context. One scan id
// covers a single extract/enrich/render pipeline run.
func WithScanID(ctx context.Context, scanID string) context.Context {
	return context.WithValue(ctx, scanCtxKey{}, scanID)
}

// ScanIDFromContext extracts the scan id from context.
func ScanIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(scanCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithRemoteKey adds the active remote's cache key to the context.
func WithRemoteKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, remoteCtxKey{}, key)
}

// RemoteKeyFromContext extracts the remote key from context.
func RemoteKeyFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(remoteCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
