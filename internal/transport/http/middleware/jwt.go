package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chemsite/internal/pkg/jwtutil"
	"chemsite/internal/transport/http/response"
)

const ContextUsernameKey = "admin_username"

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Abort(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Abort(c, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}
