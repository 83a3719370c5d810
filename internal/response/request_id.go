package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is the HTTP header the request id is read from and echoed
// back on.
const HeaderRequestID = "X-Request-ID"

// ContextKeyRequestID is the Gin context key the id is stored under, picked
// up by the response envelope metadata.
const ContextKeyRequestID = "request_id"

// RequestIDMiddleware tags every request with an id so a single upload,
// question, or answer round-trip can be correlated across logs. A
// client-supplied id is kept; otherwise one is generated.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header(HeaderRequestID, reqID)
		c.Next()
	}
}
