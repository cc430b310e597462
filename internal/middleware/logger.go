package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDKey is the context key the access logger reads the id back from.
const requestIDKey = "request_id"

// RequestID tags each request with an X-Request-ID, minting one when the
// caller did not send one. Job trigger responses echo it so the id can be
// matched against the server log.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// Logger writes one access line per request after the handler chain runs.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		id := c.GetString(requestIDKey)
		log.Printf("http: %s %s %d %s request_id=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Round(time.Millisecond),
			id,
		)
	}
}

// Recovery turns handler panics into 500 responses instead of killing the
// long-running jobs the server is supervising.
func Recovery() gin.HandlerFunc {
	return gin.Recovery()
}
