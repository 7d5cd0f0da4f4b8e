package testutil

import (
	"net/http"

	"devicegate/pkg/requestcontext"
)

// WithRequestID stamps a request ID on the request context, simulating the
// request-id middleware.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithClientMetadata stamps client IP and user agent on the request context,
// simulating the client-metadata middleware.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	ctx := requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent)
	return req.WithContext(ctx)
}
