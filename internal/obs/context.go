package obs

import "context"

type ctxKey int

const (
	ctxKeyRequestID ctxKey = iota
)

// ContextWithRequestID stores the request id for later retrieval by
// handlers and the changelog.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID, id)
}

// RequestIDFromContext returns the request id or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyRequestID).(string)
	return v
}
