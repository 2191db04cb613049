package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	tierKey      contextKey = "tier"
	attemptIDKey contextKey = "attempt_id"
)

// WithRequestID injects the request id into context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithUserID injects the billed user id into context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// WithTier injects the usage tier into context.
func WithTier(ctx context.Context, tier string) context.Context {
	return context.WithValue(ctx, tierKey, tier)
}

// WithAttemptID injects the settlement attempt id into context.
func WithAttemptID(ctx context.Context, attemptID string) context.Context {
	return context.WithValue(ctx, attemptIDKey, attemptID)
}

// GetRequestID extracts the request id from context.
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// GetUserID extracts the billed user id from context.
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

// GetTier extracts the usage tier from context.
func GetTier(ctx context.Context) string {
	return stringValue(ctx, tierKey)
}

// GetAttemptID extracts the settlement attempt id from context.
func GetAttemptID(ctx context.Context) string {
	return stringValue(ctx, attemptIDKey)
}

// GenerateRequestID generates a unique request identifier (UUID).
func GenerateRequestID() string {
	return uuid.New().String()
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
