package ratelimit

import (
	"slices"
	"sync"
	"time"
)

// RateLimiter enforces per-client request limits over sliding minute and
// hour windows.
type RateLimiter struct {
	requestsPerMinute int
	requestsPerHour   int
	enabled           bool
	now               func() time.Time

	// Request tracking, keyed by client
	clients map[string]*window
	mu      sync.Mutex
}

type window struct {
	minute []time.Time
	hour   []time.Time
}

// NewRateLimiter creates a new rate limiter with the given limits. A
// limit of 0 disables that window.
func NewRateLimiter(requestsPerMinute, requestsPerHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		enabled:           enabled,
		now:               time.Now,
		clients:           make(map[string]*window),
	}
}

// AllowRequest records a request from client and reports whether it is
// within the limits. Rejected requests are not recorded.
func (rl *RateLimiter) AllowRequest(client string) bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.window(client)
	w.cleanup(now)

	if rl.requestsPerMinute > 0 && len(w.minute) >= rl.requestsPerMinute {
		return false
	}
	if rl.requestsPerHour > 0 && len(w.hour) >= rl.requestsPerHour {
		return false
	}

	w.minute = append(w.minute, now)
	w.hour = append(w.hour, now)
	return true
}

// RetryAfter is how long client must wait before its next request can
// succeed. It is zero when a request would be allowed now.
func (rl *RateLimiter) RetryAfter(client string) time.Duration {
	if !rl.enabled {
		return 0
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.window(client)
	w.cleanup(now)

	var wait time.Duration
	if rl.requestsPerMinute > 0 && len(w.minute) >= rl.requestsPerMinute {
		wait = max(wait, w.minute[len(w.minute)-rl.requestsPerMinute].Add(time.Minute).Sub(now))
	}
	if rl.requestsPerHour > 0 && len(w.hour) >= rl.requestsPerHour {
		wait = max(wait, w.hour[len(w.hour)-rl.requestsPerHour].Add(time.Hour).Sub(now))
	}
	return wait
}

func (rl *RateLimiter) window(client string) *window {
	w, ok := rl.clients[client]
	if !ok {
		w = &window{}
		rl.clients[client] = w
	}
	return w
}

// cleanup removes expired entries from the time windows
func (w *window) cleanup(now time.Time) {
	w.minute = filterTimes(w.minute, now.Add(-time.Minute))
	w.hour = filterTimes(w.hour, now.Add(-time.Hour))
}

// filterTimes keeps only times after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	i, _ := slices.BinarySearchFunc(times, cutoff, func(t, c time.Time) int {
		if t.After(c) {
			return 1
		}
		return -1
	})
	return times[i:]
}

// Prune drops clients with no requests in the last hour
func (rl *RateLimiter) Prune() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for k, w := range rl.clients {
		w.cleanup(now)
		if len(w.hour) == 0 {
			delete(rl.clients, k)
			removed++
		}
	}
	return removed
}

// GetStats returns current rate limiter statistics for client
func (rl *RateLimiter) GetStats(client string) Stats {
	if !rl.enabled {
		return Stats{Enabled: false}
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.window(client)
	w.cleanup(rl.now())

	return Stats{
		Enabled:             true,
		RequestsLastMinute:  len(w.minute),
		RequestsLastHour:    len(w.hour),
		LimitPerMinute:      rl.requestsPerMinute,
		LimitPerHour:        rl.requestsPerHour,
		RemainingThisMinute: max(0, rl.requestsPerMinute-len(w.minute)),
		RemainingThisHour:   max(0, rl.requestsPerHour-len(w.hour)),
	}
}

// Stats contains rate limiter statistics
type Stats struct {
	Enabled             bool `json:"enabled"`
	RequestsLastMinute  int  `json:"requests_last_minute"`
	RequestsLastHour    int  `json:"requests_last_hour"`
	LimitPerMinute      int  `json:"limit_per_minute"`
	LimitPerHour        int  `json:"limit_per_hour"`
	RemainingThisMinute int  `json:"remaining_this_minute"`
	RemainingThisHour   int  `json:"remaining_this_hour"`
}

// Reset clears all tracked requests (useful for testing)
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.clients = make(map[string]*window)
}
