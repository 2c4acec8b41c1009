package upstream

import (
	"context"
	"io"
	"net/http"
)

// ProxyResponse is an upstream answer to mirror back verbatim. An empty
// ContentType means upstream sent none.
type ProxyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forward passes rawQuery unchanged to GET /listings and returns the
// upstream status, content type and body as-is. Only transport failures
// are errors; non-2xx answers are returned for mirroring.
func (c *Client) Forward(ctx context.Context, rawQuery string) (*ProxyResponse, error) {
	const op = "proxy listings"

	target := c.baseURL + "/listings"
	if rawQuery != "" {
		target += "?" + rawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, networkError(op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, networkError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(op, err)
	}

	return &ProxyResponse{StatusCode: resp.StatusCode, ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}
