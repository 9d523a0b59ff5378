package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the correlation header the relay reads from callers and
// echoes on every response.
const HeaderRequestID = "X-Request-Id"

const contextRequestIDKey = "requestId"

// maxRequestIDLength caps caller-supplied IDs. An oversized value is replaced
// with a fresh one instead of being echoed into logs and error envelopes.
const maxRequestIDLength = 128

// RequestID adopts the caller's correlation ID when it is usable and mints a
// fresh UUID otherwise. The resolved ID rides the gin context and the
// response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		c.Set(contextRequestIDKey, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the correlation ID resolved by RequestID, or "" when
// the middleware did not run.
func GetRequestID(c *gin.Context) string {
	if value, ok := c.Get(contextRequestIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
