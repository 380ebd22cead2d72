package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

const (
	sessionCookie = "sunplan_sid"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// SessionMiddleware pins every visitor to a wizard session. The session key
// is the only identity the quote flow has; no login is involved.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(sessionCookie)
		if err != nil || !validSessionID(sessionID) {
			sessionID = ulid.Make().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(sessionCookie, sessionID, sessionMaxAge, "/", "", false, true)
		}
		c.Set("session_id", sessionID)
		c.Next()
	}
}

func validSessionID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func sessionID(c *gin.Context) string {
	return c.GetString("session_id")
}
