package middleware

import (
	"context"

	"github.com/florista/bouquet-bff/internal/backend"
)

type contextKey string

const (
	ctxUserID       contextKey = "user_id"
	ctxRole         contextKey = "actor_role"
	ctxAccessID     contextKey = "access_id"
	ctxBackendToken contextKey = "backend_token"
	ctxRequestID    contextKey = "request_id"
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

// AccessIDFromContext returns the session id carried in the JWT jti.
func AccessIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessID)
}

func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRequestID)
}

// CredentialsFromContext builds what services need to call the backend on the
// caller's behalf. Anonymous requests yield credentials without a token.
func CredentialsFromContext(ctx context.Context) backend.Credentials {
	return backend.Credentials{
		Token:     stringValue(ctx, ctxBackendToken),
		RequestID: stringValue(ctx, ctxRequestID),
	}
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithSession seeds the context the way Auth does; handy for handler tests.
func WithSession(ctx context.Context, userID, role, accessID, backendToken string) context.Context {
	ctx = WithUserID(ctx, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	ctx = context.WithValue(ctx, ctxAccessID, accessID)
	return context.WithValue(ctx, ctxBackendToken, backendToken)
}
