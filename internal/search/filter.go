package search

import (
	"fmt"
	"strconv"
	"strings"

	"property-search/internal/models"
	"property-search/internal/query"
)

// amenityAttributes maps filter keys to the boolean listing attributes
var amenityAttributes = map[string]string{
	"balcony":  "has_balcony",
	"elevator": "has_elevator",
	"parking":  "has_parking_space",
	"security": "has_security",
	"storage":  "has_storage_room",
}

var sortAttributes = map[models.SortOrder]string{
	models.SortRecent:    "snapshot_date:desc",
	models.SortPriceAsc:  "price:asc",
	models.SortPriceDesc: "price:desc",
	models.SortM2Asc:     "square_m:asc",
	models.SortM2Desc:    "square_m:desc",
}

// FilterParams is a QueryState translated into Meilisearch terms
type FilterParams struct {
	Filter string
	Sort   []string
	Offset int64
	Limit  int64
}

// BuildFilter translates s into a Meilisearch filter expression, sort
// and offset/limit window.
func BuildFilter(s query.State) FilterParams {
	var filters []string

	if s.City != "" {
		filters = append(filters, fmt.Sprintf("city = %s", quote(s.City)))
	}
	if s.Type != "" {
		filters = append(filters, fmt.Sprintf("type = %s", quote(string(s.Type))))
	}

	// Area / price ranges
	if s.MinM2 != nil {
		filters = append(filters, "square_m >= "+num(*s.MinM2))
	}
	if s.MaxM2 != nil {
		filters = append(filters, "square_m <= "+num(*s.MaxM2))
	}
	if s.MinPrice != nil {
		filters = append(filters, "price >= "+num(*s.MinPrice))
	}
	if s.MaxPrice != nil {
		filters = append(filters, "price <= "+num(*s.MaxPrice))
	}
	if s.Rooms != nil {
		filters = append(filters, fmt.Sprintf("rooms = %d", *s.Rooms))
	}

	for _, a := range s.Amenities {
		if attr, ok := amenityAttributes[a]; ok {
			filters = append(filters, attr+" = true")
		}
	}

	// Viewport; _geoBoundingBox takes [top-right], [bottom-left]
	if b := s.Bounds; b != nil {
		filters = append(filters, fmt.Sprintf("_geoBoundingBox([%s, %s], [%s, %s])",
			num(b.North), num(b.East), num(b.South), num(b.West)))
	}

	sort := sortAttributes[s.Sort]
	if sort == "" {
		sort = sortAttributes[models.SortRecent]
	}

	return FilterParams{
		Filter: strings.Join(filters, " AND "),
		Sort:   []string{sort},
		Offset: int64((s.Page - 1) * s.PageSize),
		Limit:  int64(s.PageSize),
	}
}

func quote(v string) string {
	return "'" + strings.ReplaceAll(strings.ReplaceAll(v, `\`, `\\`), "'", `\'`) + "'"
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
