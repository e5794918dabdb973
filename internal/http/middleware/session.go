// README: Session middleware; assigns every browser a random session cookie.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripcrew/internal/modules/session"
)

const (
	SessionCookie = "tripcrew_session"
	sessionIDKey  = "session_id"
)

// Session reads the session cookie, issuing a new one when it is absent or malformed.
// maxAge is the cookie lifetime in seconds.
func Session(maxAge int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || !session.ValidID(id) {
			id = session.NewID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, maxAge, "/", "", false, true)
		}
		c.Set(sessionIDKey, id)
		c.Next()
	}
}

// SessionID returns the session identifier set by Session.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
