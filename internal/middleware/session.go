package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionHeader = "X-Session-ID"

// SessionMiddleware binds every request to a client session. A missing or
// malformed X-Session-ID gets a fresh one, echoed back in the response
// header so the client can keep it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}

		c.Set("sessionID", id)
		c.Header(SessionHeader, id)
		c.Next()
	}
}

// SessionID returns the session bound by SessionMiddleware.
func SessionID(c *gin.Context) string {
	return c.GetString("sessionID")
}
