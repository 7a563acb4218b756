// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionContextKey = "session_id"

// SessionID resolves the caller's session: the X-Session-ID header wins
// (storefront tabs hold their own ID), then the session cookie, and a brand
// new ID is minted otherwise. Each tab gets its own cart and guard.
func SessionID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" {
			sessionID, _ = c.Cookie("session_id")
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
			// Session cookie (24 hours)
			c.SetCookie("session_id", sessionID, 86400, "/", "", false, true)
		}

		c.Set(sessionContextKey, sessionID)
		c.Header("X-Session-ID", sessionID)

		c.Next()
	}
}

// GetSessionIDFromContext extracts the session ID from gin context
func GetSessionIDFromContext(c *gin.Context) (string, bool) {
	sessionID, exists := c.Get(sessionContextKey)
	if !exists {
		return "", false
	}
	return sessionID.(string), true
}
