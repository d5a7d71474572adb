package dashauth

import "context"

type requestIDContextKey struct{}

// WithRequestID attaches a correlation ID to ctx. The Manager propagates it
// to backend calls and audit events; the authclient generates one when the
// caller did not provide any.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the correlation ID attached with
// [WithRequestID], or "" when none is present.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
