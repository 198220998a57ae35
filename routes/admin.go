package routes

import (
	"verifix/controllers"
	"verifix/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up the dashboard API
func SetupAdminRoutes(router gin.IRouter, adc *controllers.AdminController, requireAuth gin.HandlerFunc, authz *middlewares.Authorizer) {
	admin := router.Group("/admin")
	admin.Use(requireAuth)
	{
		admin.GET("/verifications", authz.RBACMiddleware("verification", "read"), adc.Verifications)
		admin.GET("/analytics", authz.RBACMiddleware("analytics", "read"), adc.Analytics)
	}
}
