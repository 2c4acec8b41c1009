package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"property-search/internal/models"
	"property-search/internal/query"
)

const maxBodyBytes = 8 << 20

// Client talks to the listings service (GET /listings) and its
// opinions endpoint (GET /listings/{id}/opinions).
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *CircuitBreaker
	validate *validator.Validate
}

// NewClient creates a client for the service at baseURL. breaker may be nil.
func NewClient(baseURL string, timeout time.Duration, breaker *CircuitBreaker) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		breaker:  breaker,
		validate: validator.New(),
	}
}

// FetchListings requests the page described by s
func (c *Client) FetchListings(ctx context.Context, s query.State) (*models.ListingsPage, error) {
	const op = "fetch listings"

	body, err := c.get(ctx, op, c.baseURL+"/listings?"+query.Encode(s))
	if err != nil {
		return nil, err
	}

	var page models.ListingsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, malformedError(op, err)
	}
	if err := c.validate.Struct(&page); err != nil {
		return nil, malformedError(op, err)
	}
	if len(page.Items) > page.PageSize {
		return nil, malformedError(op, fmt.Errorf("%d items exceed page_size %d", len(page.Items), page.PageSize))
	}
	return &page, nil
}

// FetchOpinions requests up to limit opinions for listingID
func (c *Client) FetchOpinions(ctx context.Context, listingID string, limit int) (*models.OpinionsResponse, error) {
	const op = "fetch opinions"

	u := fmt.Sprintf("%s/listings/%s/opinions?n=%s", c.baseURL, url.PathEscape(listingID), strconv.Itoa(limit))
	body, err := c.get(ctx, op, u)
	if err != nil {
		return nil, err
	}

	var resp models.OpinionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, malformedError(op, err)
	}
	if err := c.validate.Struct(&resp); err != nil {
		return nil, malformedError(op, err)
	}
	if limit > 0 && len(resp.Opinions) > limit {
		resp.Opinions = resp.Opinions[:limit]
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	if c.breaker != nil && !c.breaker.CanProceed() {
		return nil, networkError(op, ErrCircuitOpen)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, networkError(op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(0)
		return nil, networkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.recordFailure(0)
		return nil, networkError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode >= 500 {
			c.recordFailure(resp.StatusCode)
		}
		return nil, upstreamError(op, resp.StatusCode, snippet(body))
	}

	c.recordSuccess()
	return body, nil
}

func (c *Client) recordFailure(status int) {
	if c.breaker != nil {
		c.breaker.RecordFailure(status)
	}
}

func (c *Client) recordSuccess() {
	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		s = "empty body"
	}
	return s
}
