// Package middleware provides the gin middleware chain for the HTTP surface:
// request IDs, structured request logging, CORS, per-client rate limiting,
// panic recovery, and prometheus instrumentation.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key under which the request ID is stored.
const RequestIDKey = "request_id"

// requestIDHeader is the wire header carrying the request ID in both directions.
const requestIDHeader = "X-Request-ID"

// RequestID returns middleware that assigns every request a unique ID. An
// inbound X-Request-ID header is honored so that IDs propagate across
// services; otherwise a fresh UUID is generated. The ID is echoed back in the
// response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the request ID assigned by RequestID, or "" when the
// middleware is not installed.
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
