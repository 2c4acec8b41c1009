package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"property-search/internal/query"
	"property-search/internal/session"
	"property-search/internal/upstream"
)

// Forwarder passes a raw /listings query string to the listings service
type Forwarder interface {
	Forward(ctx context.Context, rawQuery string) (*upstream.ProxyResponse, error)
}

// FetcherForwarder answers proxy requests from a ListingsFetcher, for
// backends that do not speak the listings HTTP contract themselves.
type FetcherForwarder struct {
	Fetcher session.ListingsFetcher
	Base    query.State
}

func (f FetcherForwarder) Forward(ctx context.Context, rawQuery string) (*upstream.ProxyResponse, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
	st, err := query.Decode(f.Base, values)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
	page, err := f.Fetcher.FetchListings(ctx, st)
	if err != nil {
		return nil, err
	}
	return jsonResponse(http.StatusOK, page)
}

func jsonResponse(status int, v any) (*upstream.ProxyResponse, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &upstream.ProxyResponse{StatusCode: status, ContentType: "application/json", Body: body}, nil
}

// ProxyHandler serves GET /api/listings for pages that talk to the
// listings contract directly
type ProxyHandler struct {
	forwarder Forwarder
	timeout   time.Duration
}

func NewProxyHandler(f Forwarder, timeout time.Duration) *ProxyHandler {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ProxyHandler{forwarder: f, timeout: timeout}
}

// Listings mirrors the upstream status, content type and body
func (h *ProxyHandler) Listings(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	resp, err := h.forwarder.Forward(ctx, c.Request.URL.RawQuery)
	if err != nil {
		log.Printf("[Proxy API] duration_ms=%d error=%v", time.Since(start).Milliseconds(), err)
		abortWithError(c, err)
		return
	}
	log.Printf("[Proxy API] duration_ms=%d status=%d bytes=%d", time.Since(start).Milliseconds(), resp.StatusCode, len(resp.Body))
	if resp.ContentType == "" {
		// nil suppresses net/http content sniffing
		c.Writer.Header()["Content-Type"] = nil
		c.Status(resp.StatusCode)
		_, _ = c.Writer.Write(resp.Body)
		return
	}
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}
