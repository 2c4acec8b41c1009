package ratelimit

import (
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Middleware rejects requests over the client's limit with 429 and a
// Retry-After header. Clients are keyed by gin's ClientIP.
func Middleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		if rl.AllowRequest(client) {
			c.Next()
			return
		}

		wait := rl.RetryAfter(client)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		log.Printf("[ratelimit] client=%s path=%s rejected, retry in %s", client, c.FullPath(), wait)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
}
