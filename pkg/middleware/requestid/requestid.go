package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderName is the HTTP header carrying the request ID.
const HeaderName = "X-Request-ID"

const ctxKey = "request_id"

// Middleware tags every request with an ID. An inbound X-Request-ID is kept
// so IDs survive proxy hops; otherwise a fresh UUID is minted. The ID is
// echoed back on the response and stored in the Gin context for log fields.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxKey, id)
		c.Writer.Header().Set(HeaderName, id)
		c.Next()
	}
}

// Value reads the request ID from the context, or "" when the middleware has
// not run.
func Value(c *gin.Context) string {
	v, _ := c.Get(ctxKey)
	id, _ := v.(string)
	return id
}
