package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireConfigured fails every request with 500 while the process is
// missing required configuration.
func RequireConfigured(configErr error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if configErr != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server configuration error"})
			return
		}
		c.Next()
	}
}
