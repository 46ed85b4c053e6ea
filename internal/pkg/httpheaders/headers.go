// Package httpheaders names the request headers shared by the API and its
// clients, and the context keys they are stored under.
package httpheaders

import "context"

// contextKey is unexported so no other package can collide with these keys.
type contextKey string

const (
	HeaderXRequestID      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"

	ContextKeyRequestID      contextKey = "x-request-id"
	ContextKeyIdempotencyKey contextKey = "x-idempotency-key"
)

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyRequestID).(string)
	return id
}

func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeyIdempotencyKey, key)
}

func IdempotencyKey(ctx context.Context) string {
	key, _ := ctx.Value(ContextKeyIdempotencyKey).(string)
	return key
}
