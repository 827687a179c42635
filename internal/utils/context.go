package utils

import "context"

type ctxKey int

const requestIDKey ctxKey = iota

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey, reqID)
}

// RequestID returns the id stored by WithRequestID, or nil so it can be
// passed straight to the Logger.
func RequestID(ctx context.Context) *string {
	if ctx == nil {
		return nil
	}
	if reqID, ok := ctx.Value(requestIDKey).(string); ok && reqID != "" {
		return &reqID
	}
	return nil
}
