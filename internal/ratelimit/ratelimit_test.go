package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute, perHour int) (*RateLimiter, *clock) {
	c := &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(perMinute, perHour, true)
	rl.now = c.Now
	return rl, c
}

func TestAllowRequestMinuteWindow(t *testing.T) {
	t.Parallel()

	rl, c := newTestLimiter(2, 0)
	assert.True(t, rl.AllowRequest("a"))
	c.Advance(10 * time.Second)
	assert.True(t, rl.AllowRequest("a"))
	assert.False(t, rl.AllowRequest("a"))
	assert.True(t, rl.AllowRequest("b"), "clients are limited independently")

	assert.Equal(t, 50*time.Second, rl.RetryAfter("a"))

	c.Advance(51 * time.Second)
	assert.True(t, rl.AllowRequest("a"))
	assert.False(t, rl.AllowRequest("a"))
}

func TestAllowRequestHourWindow(t *testing.T) {
	t.Parallel()

	rl, c := newTestLimiter(0, 3)
	for i := 0; i < 3; i++ {
		require.True(t, rl.AllowRequest("a"))
		c.Advance(5 * time.Minute)
	}
	assert.False(t, rl.AllowRequest("a"))
	assert.Equal(t, 45*time.Minute, rl.RetryAfter("a"))

	stats := rl.GetStats("a")
	assert.Equal(t, 3, stats.RequestsLastHour)
	assert.Equal(t, 0, stats.RemainingThisHour)
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, false)
	for i := 0; i < 10; i++ {
		assert.True(t, rl.AllowRequest("a"))
	}
	assert.Zero(t, rl.RetryAfter("a"))
	assert.False(t, rl.GetStats("a").Enabled)
}

func TestPrune(t *testing.T) {
	t.Parallel()

	rl, c := newTestLimiter(10, 10)
	rl.AllowRequest("a")
	c.Advance(30 * time.Minute)
	rl.AllowRequest("b")
	c.Advance(31 * time.Minute)

	assert.Equal(t, 1, rl.Prune())
	assert.Equal(t, 1, rl.GetStats("b").RequestsLastHour)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl, _ := newTestLimiter(1, 0)
	r := gin.New()
	r.GET("/x", Middleware(rl), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}
