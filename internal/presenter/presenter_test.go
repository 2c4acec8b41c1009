package presenter

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/models"
	"property-search/internal/query"
	"property-search/internal/selection"
)

func TestPaginate(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name               string
		page, size, total  int
		wantPrev, wantNext bool
		wantTotalPages     int
	}{
		{"last partial page", 5, 24, 100, true, false, 5},
		{"middle page", 2, 24, 100, true, true, 5},
		{"first page", 1, 24, 100, false, true, 5},
		{"exact fit", 4, 25, 100, true, false, 4},
		{"empty", 1, 24, 0, false, false, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Paginate(tt.page, tt.size, tt.total)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantTotalPages, p.TotalPages)
		})
	}
}

func TestPaginationRequestHonoursGuards(t *testing.T) {
	t.Parallel()

	last := Paginate(5, 24, 100)
	_, ok := last.Request(Next)
	assert.False(t, ok)
	page, ok := last.Request(Prev)
	require.True(t, ok)
	assert.Equal(t, 4, page)

	first := Paginate(1, 24, 100)
	_, ok = first.Request(Prev)
	assert.False(t, ok, "never produce page 0")
	page, ok = first.Request(Next)
	require.True(t, ok)
	assert.Equal(t, 2, page)

	_, ok = first.Request("sideways")
	assert.False(t, ok)
}

func TestPaginationAllows(t *testing.T) {
	t.Parallel()

	p := Paginate(1, 24, 100)
	assert.True(t, p.Allows(1))
	assert.True(t, p.Allows(5))
	assert.False(t, p.Allows(6))
	assert.False(t, p.Allows(0))
	assert.False(t, p.Allows(-1))
	assert.True(t, Paginate(1, 24, 0).Allows(1))
}

var digits = regexp.MustCompile(`\D`)

func TestRenderCards(t *testing.T) {
	t.Parallel()

	area, rooms, price, oldPrice := 54.5, 3, 650000.0, 700000.0
	yes := true
	page := &models.ListingsPage{
		Items: []models.Listing{
			{ListingID: "A", City: "kraków", Price: &oldPrice},
			{ListingID: "B", City: "Kraków", Type: models.PropertyTypeTenement, SquareM: &area, Rooms: &rooms, Price: &price, HasBalcony: &yes,
				PriceHistory: []models.PricePoint{{Date: "2025-01-01", Price: 700000}, {Date: "2025-03-01", Price: 650000}}},
			{ListingID: "A", City: "Kraków", Price: &price},
		},
		Total: 3, Page: 1, PageSize: 24,
	}
	state := query.New(24, models.SortRecent, true)

	view := Render(page, state, func(id string) selection.CardState {
		if id == "B" {
			return selection.CardHighlighted
		}
		return selection.CardNormal
	})

	require.Len(t, view.Cards, 2)
	b, a := view.Cards[0], view.Cards[1]
	assert.Equal(t, "B", b.ListingID)
	assert.Equal(t, "Kraków · TENEMENT", b.Title)
	assert.Equal(t, "54.5 m² · 3 rooms", b.Details)
	assert.Equal(t, "650000", digits.ReplaceAllString(b.Price, ""))
	assert.Contains(t, b.Price, "PLN")
	assert.Equal(t, []string{"balcony"}, b.Amenities)
	assert.Equal(t, selection.CardHighlighted, b.State)
	require.NotNil(t, b.History)
	assert.Equal(t, -50000.0, b.History.Change)
	assert.False(t, b.History.Rising)

	assert.Equal(t, "A", a.ListingID)
	assert.Equal(t, "Kraków · —", a.Title)
	assert.Equal(t, "? m² · ? rooms", a.Details)
	assert.Equal(t, "650000", digits.ReplaceAllString(a.Price, ""), "later duplicate wins")
	assert.Nil(t, a.History)

	assert.False(t, view.Pagination.HasNext)
	assert.False(t, view.Pagination.HasPrev)
}

func TestRenderNilPage(t *testing.T) {
	t.Parallel()

	view := Render(nil, query.New(24, models.SortRecent, true), nil)
	assert.Empty(t, view.Cards)
	assert.NotNil(t, view.Cards)
	assert.False(t, view.Pagination.HasNext)
}

func TestSummarizeHistory(t *testing.T) {
	t.Parallel()

	assert.Nil(t, SummarizeHistory(nil))
	assert.Nil(t, SummarizeHistory([]models.PricePoint{{Date: "2025-01-01", Price: 1}}))

	s := SummarizeHistory([]models.PricePoint{
		{Date: "2025-01-01", Price: 400000},
		{Date: "2025-02-01", Price: 390000},
		{Date: "2025-05-01", Price: 440000},
	})
	require.NotNil(t, s)
	assert.Equal(t, 3, s.Points)
	assert.Equal(t, "2025-01-01", s.FirstDate)
	assert.Equal(t, "2025-05-01", s.LastDate)
	assert.Equal(t, 40000.0, s.Change)
	require.NotNil(t, s.ChangePct)
	assert.InDelta(t, 10.0, *s.ChangePct, 1e-9)
	assert.True(t, s.Rising)

	free := SummarizeHistory([]models.PricePoint{{Date: "a", Price: 0}, {Date: "b", Price: 10}})
	assert.Nil(t, free.ChangePct)
}

func TestRenderOpinions(t *testing.T) {
	t.Parallel()

	cards := RenderOpinions([]models.Opinion{{OpinionID: "o1", Source: "synthetic_v1", ReviewText: "Quiet street", Cleanliness: 4, Overall: 5}})
	require.Len(t, cards, 1)
	assert.Equal(t, "Synthetic • synthetic_v1", cards[0].Source)
	assert.Equal(t, "5/5", cards[0].Overall)
	assert.Equal(t, OpinionMetric{"Clean", 4}, cards[0].Metrics[0])
	assert.Len(t, cards[0].Metrics, 6)
}

func TestFormatPriceUnknown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "? PLN", FormatPrice(nil))
}
