package handlers

import (
	"github.com/gin-gonic/gin"
)

// Routes holds everything mounted by Mount. Proxy, Health and
// RateLimit may be nil.
type Routes struct {
	Sessions  *SessionHandler
	Proxy     *ProxyHandler
	Health    *HealthHandler
	RateLimit gin.HandlerFunc
}

// Mount registers the API on r
func Mount(r gin.IRouter, rt Routes) {
	limited := []gin.HandlerFunc{}
	if rt.RateLimit != nil {
		limited = append(limited, rt.RateLimit)
	}

	if rt.Health != nil {
		r.GET("/health", rt.Health.Health)
		r.GET("/api/ratelimit/stats", rt.Health.RateLimitStats)
	}
	if rt.Proxy != nil {
		r.GET("/api/listings", append(limited, rt.Proxy.Listings)...)
	}

	r.GET("/api/markers", MarkerTiers)
	r.GET("/api/markers/:file", MarkerGlyph)

	sessions := r.Group("/api/sessions", limited...)
	rt.Sessions.Register(sessions)
}
