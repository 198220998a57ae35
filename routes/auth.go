package routes

import (
	"verifix/controllers"
	"verifix/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes mounts login and the session endpoints; requireAuth must attach the session
func SetupAuthRoutes(router gin.IRouter, ac *controllers.AuthController, requireAuth gin.HandlerFunc, authz *middlewares.Authorizer) {
	router.POST("/login", ac.Login)

	auth := router.Group("/")
	auth.Use(requireAuth)
	{
		auth.POST("/logout", authz.RBACMiddleware("session", "delete"), ac.Logout)
		auth.GET("/session", authz.RBACMiddleware("session", "read"), ac.Session)
	}
}
