package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/service"
)

const sessionKey = "session"

// RequireSession creates middleware that rejects requests while nobody is logged in
func RequireSession(auth *service.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := auth.CurrentSession(c.Request.Context())
		if err != nil {
			if errors.Is(err, core.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not logged in"})
			}
			return
		}

		c.Set(sessionKey, session)
		c.Next()
	}
}
