package httpx

import (
	"context"
)

// Request is one parsed HTTP request. It is created per connection and is
// not modified after parsing.
type Request struct {
	Method string
	// Target is the raw request-target, e.g. "/echo/abc". It always
	// starts with "/" and is not unescaped.
	Target string
	Proto  string
	Header Header
	Body   []byte
	// RemoteAddr is the peer address of the connection.
	RemoteAddr string
	// RequestID is the server generated identifier for this request.
	RequestID string
	// CorrelationID is a propagated ID from the peer (X-Request-ID).
	CorrelationID string
	ctx           context.Context
}

// Context returns the request's context. If nil, returns Background.
func (r *Request) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func WithContext(r *Request, ctx context.Context) *Request {
	if r == nil {
		return nil
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}
