package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/models"
	"property-search/internal/query"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchListings(t *testing.T) {
	var gotQuery, gotAccept string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listings", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"listing_id":"A","city":"Kraków","price":500000,"latitude":50.06,"longitude":19.94,
			"price_history":[{"date":"2025-01-01","price":510000}]}],"total":1,"page":1,"page_size":24}`))
	})

	c := NewClient(srv.URL, time.Second, nil)
	s := query.New(24, models.SortPriceDesc, true)
	s.City = "Kraków"

	page, err := c.FetchListings(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].ListingID)
	assert.Equal(t, 500000.0, *page.Items[0].Price)
	assert.Len(t, page.Items[0].PriceHistory, 1)
	assert.Equal(t, query.Encode(s), gotQuery)
	assert.Equal(t, "application/json", gotAccept)
}

func TestFetchListingsErrorTaxonomy(t *testing.T) {
	for _, tt := range []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, `{"detail":"boom"}`, ErrUpstream},
		{"not found", http.StatusNotFound, ``, ErrUpstream},
		{"bad json", http.StatusOK, `{"items":`, ErrMalformedResponse},
		{"wrong shape", http.StatusOK, `{"items":"nope","total":1,"page":1,"page_size":24}`, ErrMalformedResponse},
		{"missing id", http.StatusOK, `{"items":[{"city":"X"}],"total":1,"page":1,"page_size":24}`, ErrMalformedResponse},
		{"negative total", http.StatusOK, `{"items":[],"total":-1,"page":1,"page_size":24}`, ErrMalformedResponse},
		{"too many items", http.StatusOK, `{"items":[{"listing_id":"A"},{"listing_id":"B"}],"total":2,"page":1,"page_size":1}`, ErrMalformedResponse},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := NewClient(srv.URL, time.Second, nil)

			_, err := c.FetchListings(context.Background(), query.New(24, models.SortRecent, true))
			require.ErrorIs(t, err, tt.want)

			var uerr *Error
			require.True(t, errors.As(err, &uerr))
			if tt.want == ErrUpstream {
				assert.Equal(t, tt.status, uerr.StatusCode)
			}
		})
	}
}

func TestFetchListingsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, time.Second, nil)
	_, err := c.FetchListings(context.Background(), query.New(24, models.SortRecent, true))
	require.ErrorIs(t, err, ErrNetworkFailure)
	assert.False(t, errors.Is(err, ErrUpstream))
}

func TestFetchListingsTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	c := NewClient(srv.URL, 50*time.Millisecond, nil)
	_, err := c.FetchListings(context.Background(), query.New(24, models.SortRecent, true))
	require.ErrorIs(t, err, ErrNetworkFailure)
}

func TestCircuitBreakerShortCircuits(t *testing.T) {
	calls := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	cb := NewCircuitBreaker(2, time.Minute)
	c := NewClient(srv.URL, time.Second, cb)
	s := query.New(24, models.SortRecent, true)

	for i := 0; i < 2; i++ {
		_, err := c.FetchListings(context.Background(), s)
		require.ErrorIs(t, err, ErrUpstream)
	}
	_, err := c.FetchListings(context.Background(), s)
	require.ErrorIs(t, err, ErrNetworkFailure)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, calls)

	open, failures, total := cb.GetStatus()
	assert.True(t, open)
	assert.Equal(t, 2, failures)
	assert.Equal(t, 2, total)
}

func TestCircuitBreakerConsecutiveFailuresResetOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	cb.RecordFailure(502)
	cb.RecordFailure(503)
	assert.Equal(t, 2, cb.ConsecutiveFailures())

	cb.RecordSuccess()
	assert.Equal(t, 0, cb.ConsecutiveFailures())

	cb.RecordFailure(500)
	open, failures, total := cb.GetStatus()
	assert.False(t, open)
	assert.Equal(t, 3, failures, "failures is cumulative")
	assert.Equal(t, 1, cb.ConsecutiveFailures())
	assert.Equal(t, 4, total)
}

func TestCircuitBreakerHalfOpens(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure(502)
	assert.False(t, cb.CanProceed())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.CanProceed())
	open, _, _ := cb.GetStatus()
	assert.False(t, open)
}

func TestFetchOpinions(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/listings/abc%2F1/opinions", r.URL.EscapedPath())
		assert.Equal(t, "2", r.URL.Query().Get("n"))
		_, _ = w.Write([]byte(`{"listing_id":"abc/1","opinions":[
			{"opinion_id":"o1","listing_id":"abc/1","source":"synthetic_v1","review_text":"ok","cleanliness":4,"safety":3,"parking":2,"noise":3,"transit_access":5,"sunlight":4,"overall":4},
			{"opinion_id":"o2","listing_id":"abc/1","source":"synthetic_v1","review_text":"meh","cleanliness":2,"safety":3,"parking":2,"noise":3,"transit_access":5,"sunlight":4,"overall":3},
			{"opinion_id":"o3","listing_id":"abc/1","source":"synthetic_v1","review_text":"extra","cleanliness":2,"safety":3,"parking":2,"noise":3,"transit_access":5,"sunlight":4,"overall":3}]}`))
	})
	c := NewClient(srv.URL, time.Second, nil)

	resp, err := c.FetchOpinions(context.Background(), "abc/1", 2)
	require.NoError(t, err)
	require.Len(t, resp.Opinions, 2)
	assert.Equal(t, "o1", resp.Opinions[0].OpinionID)
	assert.Equal(t, 5, resp.Opinions[0].TransitAccess)
}

func TestFetchOpinionsMalformed(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"listing_id":"A","opinions":[{"opinion_id":"o1","listing_id":"A","overall":9}]}`))
	})
	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.FetchOpinions(context.Background(), "A", 3)
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestForwardMirrorsUpstream(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "city=Krak%C3%B3w&page=2", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"bad sort"}`))
	})
	c := NewClient(srv.URL, time.Second, nil)

	resp, err := c.Forward(context.Background(), "city=Krak%C3%B3w&page=2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.ContentType)
	assert.Equal(t, `{"detail":"bad sort"}`, string(resp.Body))
}

func TestForwardKeepsMissingContentType(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte(`plain`))
	})
	c := NewClient(srv.URL, time.Second, nil)

	resp, err := c.Forward(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.ContentType)
	assert.Equal(t, "plain", string(resp.Body))
}
