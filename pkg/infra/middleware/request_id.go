// Package middleware provides the gin middleware chain of the HTTP server.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	ctxlog "github.com/kart-io/iwac-chat/pkg/infra/logger"
	mwopts "github.com/kart-io/iwac-chat/pkg/options/middleware"
)

// HeaderXRequestID is the default request ID header.
const HeaderXRequestID = "X-Request-ID"

// maxRequestIDLength 超过该长度的外部请求 ID 会被替换。
const maxRequestIDLength = 128

// GenerateRequestID returns a new ULID string.
func GenerateRequestID() string {
	return ulid.Make().String()
}

// RequestID returns a middleware that adds a unique request ID to each request.
// The request ID is added to the response header and to the request context,
// where it is picked up by every log line written through ctxlog.L.
func RequestID(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = HeaderXRequestID
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(header)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = GenerateRequestID()
		}

		c.Header(header, requestID)
		c.Set(ctxlog.FieldRequestID, requestID)
		c.Request = c.Request.WithContext(ctxlog.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// GetRequestID returns the request ID of the current request, or "".
func GetRequestID(c *gin.Context) string {
	return ctxlog.RequestID(c.Request.Context())
}
