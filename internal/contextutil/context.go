// internal/contextutil/context.go
package contextutil

import (
	"context"

	"acspmembers/internal/identity"
	"acspmembers/internal/observability/logging"
	"acspmembers/internal/permissions"
)

// Key is a type-safe key for context values
type Key string

const (
	// LoggerKey is the key for the logger
	LoggerKey Key = "context:logger"

	// TraceIDKey is the key for the trace ID
	TraceIDKey Key = "context:trace_id"

	// SpanIDKey is the key for the span ID
	SpanIDKey Key = "context:span_id"

	// IdentityKey is the key for the caller identity
	IdentityKey Key = "context:identity"

	// TokenPermissionsKey is the key for the parsed capability claim
	TokenPermissionsKey Key = "context:token_permissions"

	// AdminPrivilegeKey is the key for the admin override flag
	AdminPrivilegeKey Key = "context:admin_privilege"

	// RequestIDKey is the key for the request correlation ID
	RequestIDKey Key = "context:request_id"
)

// WithLogger adds a logger to a context
func WithLogger(ctx context.Context, logger *logging.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// GetLogger retrieves a logger from a context
func GetLogger(ctx context.Context) *logging.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*logging.Logger); ok {
		return logger
	}
	return nil
}

// WithTraceID adds a trace ID to a context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

// GetTraceID retrieves a trace ID from a context
func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

// WithSpanID adds a span ID to a context
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, SpanIDKey, spanID)
}

// GetSpanID retrieves a span ID from a context
func GetSpanID(ctx context.Context) string {
	if spanID, ok := ctx.Value(SpanIDKey).(string); ok {
		return spanID
	}
	return ""
}

// WithIdentity adds a caller identity to a context
func WithIdentity(ctx context.Context, ident *identity.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}

// GetIdentity retrieves a caller identity from a context
func GetIdentity(ctx context.Context) *identity.Identity {
	if ident, ok := ctx.Value(IdentityKey).(*identity.Identity); ok {
		return ident
	}
	return nil
}

// WithTokenPermissions adds a parsed capability claim to a context
func WithTokenPermissions(ctx context.Context, perms *permissions.TokenPermissions) context.Context {
	return context.WithValue(ctx, TokenPermissionsKey, perms)
}

// GetTokenPermissions retrieves a parsed capability claim from a context
func GetTokenPermissions(ctx context.Context) *permissions.TokenPermissions {
	if perms, ok := ctx.Value(TokenPermissionsKey).(*permissions.TokenPermissions); ok {
		return perms
	}
	return nil
}

// WithAdminPrivilege records the admin override flag on a context
func WithAdminPrivilege(ctx context.Context, granted bool) context.Context {
	return context.WithValue(ctx, AdminPrivilegeKey, granted)
}

// GetAdminPrivilege retrieves the admin override flag from a context.
// Absence reads as false.
func GetAdminPrivilege(ctx context.Context) bool {
	if granted, ok := ctx.Value(AdminPrivilegeKey).(bool); ok {
		return granted
	}
	return false
}

// WithRequestID adds a request correlation ID to a context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves a request correlation ID from a context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// EnrichContext adds standard observability items to a context
func EnrichContext(ctx context.Context, logger *logging.Logger) context.Context {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = logging.NewTraceID()
		ctx = WithTraceID(ctx, traceID)
	}

	spanID := logging.NewSpanID()
	ctx = WithSpanID(ctx, spanID)

	if logger != nil {
		logger = logger.With(
			logging.TraceIDKey, traceID,
			logging.SpanIDKey, spanID,
		)
		ctx = WithLogger(ctx, logger)
	}

	return ctx
}
