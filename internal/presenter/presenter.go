package presenter

import (
	"property-search/internal/dedupe"
	"property-search/internal/models"
	"property-search/internal/query"
	"property-search/internal/selection"
)

// Card is one rendered result in the list
type Card struct {
	ListingID string              `json:"listing_id"`
	Title     string              `json:"title"`
	Details   string              `json:"details"`
	Price     string              `json:"price"`
	Amenities []string            `json:"amenities,omitempty"`
	History   *HistorySummary     `json:"history,omitempty"`
	State     selection.CardState `json:"state"`
}

// ResultView is everything the list needs to draw one page
type ResultView struct {
	Cards      []Card     `json:"cards"`
	Pagination Pagination `json:"pagination"`
}

// Render builds the list view for page. Items are deduplicated. The
// pager uses the page and size echoed by the service, falling back to
// the query when the response omits them.
func Render(page *models.ListingsPage, state query.State, cardState func(id string) selection.CardState) ResultView {
	if page == nil {
		return ResultView{Cards: []Card{}, Pagination: Paginate(state.Page, state.PageSize, 0)}
	}
	if cardState == nil {
		cardState = func(string) selection.CardState { return selection.CardNormal }
	}

	unique := dedupe.Listings(page.Items)
	cards := make([]Card, 0, len(unique))
	for i := range unique {
		l := &unique[i]
		cards = append(cards, Card{
			ListingID: l.ListingID,
			Title:     Title(l),
			Details:   Details(l),
			Price:     FormatPrice(l.Price),
			Amenities: l.Amenities(),
			History:   SummarizeHistory(l.PriceHistory),
			State:     cardState(l.ListingID),
		})
	}

	num, size := page.Page, page.PageSize
	if num < 1 {
		num = state.Page
	}
	if size < 1 {
		size = state.PageSize
	}
	return ResultView{Cards: cards, Pagination: Paginate(num, size, page.Total)}
}
