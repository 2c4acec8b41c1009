package search

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/meilisearch/meilisearch-go"

	"property-search/internal/models"
	"property-search/internal/query"
	"property-search/internal/upstream"
)

// SearchClient serves ListingsPages straight from a Meilisearch index
// holding listing documents (with a _geo field for viewport filtering).
type SearchClient struct {
	client *meilisearch.Client
	index  string
}

func NewSearchClient(host, apiKey, index string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})
	if index == "" {
		index = "listings"
	}

	return &SearchClient{
		client: client,
		index:  index,
	}
}

// InitIndex declares the attributes the listing filters and sorts need
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "listing_id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	filterable := []string{"city", "type", "square_m", "price", "rooms", "_geo"}
	filterable = append(filterable, slices.Sorted(maps.Values(amenityAttributes))...)
	if _, err := s.client.Index(s.index).UpdateFilterableAttributes(&filterable); err != nil {
		return err
	}

	if _, err := s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"square_m",
		"snapshot_date",
	}); err != nil {
		return err
	}

	return nil
}

// document is an indexed listing; _geo is Meilisearch's position field
type document struct {
	models.Listing
	Geo *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"_geo,omitempty"`
}

// FetchListings runs the search described by st
func (s *SearchClient) FetchListings(ctx context.Context, st query.State) (*models.ListingsPage, error) {
	const op = "search listings"

	if err := ctx.Err(); err != nil {
		return nil, upstream.UpstreamFailure(op, err)
	}

	params := BuildFilter(st)
	req := &meilisearch.SearchRequest{
		Limit:  params.Limit,
		Offset: params.Offset,
		Sort:   params.Sort,
	}
	if params.Filter != "" {
		req.Filter = params.Filter
	}

	res, err := s.client.Index(s.index).Search("", req)
	if err != nil {
		return nil, upstream.UpstreamFailure(op, err)
	}

	includeHistory := st.IncludeHistory != nil && *st.IncludeHistory
	items := make([]models.Listing, 0, len(res.Hits))
	for _, hit := range res.Hits {
		// Convert hit to JSON then to Listing struct
		hitJSON, err := json.Marshal(hit)
		if err != nil {
			return nil, upstream.MalformedFailure(op, err)
		}
		var doc document
		if err := json.Unmarshal(hitJSON, &doc); err != nil {
			return nil, upstream.MalformedFailure(op, fmt.Errorf("hit: %w", err))
		}
		l := doc.Listing
		if l.Latitude == nil && doc.Geo != nil {
			l.Latitude, l.Longitude = &doc.Geo.Lat, &doc.Geo.Lng
		}
		if l.ListingID == "" {
			return nil, upstream.MalformedFailure(op, fmt.Errorf("hit without listing_id"))
		}
		if !includeHistory {
			l.PriceHistory = nil
		}
		items = append(items, l)
	}

	return &models.ListingsPage{
		Items:    items,
		Total:    int(res.EstimatedTotalHits),
		Page:     st.Page,
		PageSize: st.PageSize,
	}, nil
}
