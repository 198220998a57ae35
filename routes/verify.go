package routes

import (
	"verifix/controllers"
	"verifix/internal/ratelimit"
	"verifix/middlewares"

	"github.com/gin-gonic/gin"
)

// SetupVerifyRoutes mounts the public upload relay. A bearer token is optional
// and only attributes the upload in the verification log.
func SetupVerifyRoutes(router gin.IRouter, vc *controllers.VerifyController, identify gin.HandlerFunc, limiter *ratelimit.RateLimiter) {
	router.POST("/verify", identify, middlewares.UploadRateLimit(limiter), vc.Verify)
}
