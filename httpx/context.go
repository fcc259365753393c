package httpx

import "context"

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyCorrelationID
)

// WithRequestID returns a new context that carries the server's id for
// the exchange.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, keyRequestID)
}

// WithCorrelationID returns a new context that carries the peer supplied
// X-Request-ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyCorrelationID, id)
}

func CorrelationIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, keyCorrelationID)
}

func stringFrom(ctx context.Context, k ctxKey) (string, bool) {
	s, ok := ctx.Value(k).(string)
	return s, ok && s != ""
}
