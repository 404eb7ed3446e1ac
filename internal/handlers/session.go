package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/internal/service"
)

// SessionGuard enforces the server-side idle timeout on every
// authenticated request. It runs after JWT authentication, so the token
// in the context is already signature-checked; this middleware only asks
// whether the session behind it is still alive, and touching it restarts
// the idle clock.
func SessionGuard(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, exists := c.Get("token")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
			c.Abort()
			return
		}

		token, _ := raw.(string)
		if err := authService.ValidateSession(c.Request.Context(), token); err != nil {
			if errors.Is(err, models.ErrSessionExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			c.Abort()
			return
		}

		c.Next()
	}
}
