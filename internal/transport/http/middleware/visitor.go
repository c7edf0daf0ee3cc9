package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	VisitorCookie       = "visitor_id"
	ContextVisitorIDKey = "visitor_id"
	visitorCookieMaxAge = 365 * 24 * 60 * 60
)

// Visitor identifies the browser by a visitor_id cookie, issuing a new UUID
// when the cookie is missing or malformed.
func Visitor(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(VisitorCookie)
		id, parseErr := uuid.Parse(raw)
		if err != nil || parseErr != nil {
			id = uuid.New()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(VisitorCookie, id.String(), visitorCookieMaxAge, "/", "", secure, true)
		}
		c.Set(ContextVisitorIDKey, id.String())
		c.Next()
	}
}

func VisitorID(c *gin.Context) string {
	return c.GetString(ContextVisitorIDKey)
}
