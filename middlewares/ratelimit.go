package middlewares

import (
	"log"
	"net/http"

	"verifix/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// UploadRateLimit throttles uploads per session email, or per client IP for anonymous callers.
// Redis failures let the request through.
func UploadRateLimit(rl *ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Enabled() {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if user := CurrentUser(c); user != nil {
			key = "user:" + user.Email
		}

		allowed, err := rl.Allow(c.Request.Context(), key)
		if err != nil {
			log.Printf("UploadRateLimit: redis error, allowing request: %v", err)
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many uploads, please wait"})
			return
		}
		c.Next()
	}
}
