package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeventure/warden/service"
)

const subjectKey = "subjectID"

// AuthMiddleware creates middleware that validates bearer access tokens and
// stores the subject id in the request context.
func AuthMiddleware(authService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")

		subjectID, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(subjectKey, subjectID)

		c.Next()
	}
}
