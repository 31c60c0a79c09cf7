package http

import (
	"github.com/gin-gonic/gin"

	"github.com/codeventure/warden/service"
)

// SetupRouter sets up the Gin router.
func SetupRouter(authService *service.SessionService, google *GoogleOAuth) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	auth := router.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
		auth.POST("/refresh", handlers.Refresh)
		auth.POST("/logout", handlers.Logout)

		if google != nil {
			auth.GET("/google", google.Redirect)
			auth.GET("/google/callback", google.Callback)
		}
	}

	users := router.Group("/users")
	{
		users.GET("/me", AuthMiddleware(authService), handlers.Me)
		users.GET("/:id", handlers.User)
	}

	return router
}
