package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"property-search/internal/ratelimit"
	"property-search/internal/session"
	"property-search/internal/upstream"
)

// HealthHandler reports liveness plus basic runtime stats
type HealthHandler struct {
	store   *session.Store
	breaker *upstream.CircuitBreaker
	limiter *ratelimit.RateLimiter
}

// NewHealthHandler creates a new health handler. breaker and limiter may be nil.
func NewHealthHandler(store *session.Store, breaker *upstream.CircuitBreaker, limiter *ratelimit.RateLimiter) *HealthHandler {
	return &HealthHandler{store: store, breaker: breaker, limiter: limiter}
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":   "ok",
		"time":     time.Now(),
		"sessions": h.store.Len(),
	}
	if h.breaker != nil {
		open, failures, total := h.breaker.GetStatus()
		resp["upstream"] = gin.H{
			"circuit_open":         open,
			"failures":             failures,
			"consecutive_failures": h.breaker.ConsecutiveFailures(),
			"total_requests":       total,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RateLimitStats returns the caller's own rate limit usage
func (h *HealthHandler) RateLimitStats(c *gin.Context) {
	if h.limiter == nil {
		c.JSON(http.StatusOK, ratelimit.Stats{})
		return
	}
	c.JSON(http.StatusOK, h.limiter.GetStats(c.ClientIP()))
}
