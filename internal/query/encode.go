package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"property-search/internal/models"
)

// Values serializes s into the parameter set expected by GET /listings.
// Unset and empty fields are omitted; amenities are comma-joined.
func Values(s State) url.Values {
	v := url.Values{}
	if s.City != "" {
		v.Set("city", s.City)
	}
	if s.Type != "" {
		v.Set("type", string(s.Type))
	}
	setFloat(v, "min_m2", s.MinM2)
	setFloat(v, "max_m2", s.MaxM2)
	setFloat(v, "min_price", s.MinPrice)
	setFloat(v, "max_price", s.MaxPrice)
	if s.Rooms != nil {
		v.Set("rooms", strconv.Itoa(*s.Rooms))
	}
	if len(s.Amenities) > 0 {
		v.Set("amenities", strings.Join(s.Amenities, ","))
	}
	if b := s.Bounds; b != nil {
		v.Set("bbox_south", formatFloat(b.South))
		v.Set("bbox_west", formatFloat(b.West))
		v.Set("bbox_north", formatFloat(b.North))
		v.Set("bbox_east", formatFloat(b.East))
	}
	if s.Page > 0 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if s.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(s.PageSize))
	}
	if s.Sort != "" {
		v.Set("sort", string(s.Sort))
	}
	if s.IncludeHistory != nil {
		v.Set("include_history", strconv.FormatBool(*s.IncludeHistory))
	}
	return v
}

// Encode returns the query string for s, keys sorted
func Encode(s State) string {
	return Values(s).Encode()
}

// Decode parses a /listings query string into a State, starting from base
// for anything the query does not mention.
func Decode(base State, v url.Values) (State, error) {
	var p Patch
	var err error

	if city := v.Get("city"); city != "" {
		p.City = &city
	}
	if t := v.Get("type"); t != "" {
		pt := models.PropertyType(t)
		p.Type = &pt
	}
	if p.MinM2, err = parseFloat(v, "min_m2"); err != nil {
		return base, err
	}
	if p.MaxM2, err = parseFloat(v, "max_m2"); err != nil {
		return base, err
	}
	if p.MinPrice, err = parseFloat(v, "min_price"); err != nil {
		return base, err
	}
	if p.MaxPrice, err = parseFloat(v, "max_price"); err != nil {
		return base, err
	}
	if p.Rooms, err = parseInt(v, "rooms"); err != nil {
		return base, err
	}
	if raw, ok := v["amenities"]; ok {
		var keys []string
		for _, r := range raw {
			for _, a := range strings.Split(r, ",") {
				if a = strings.TrimSpace(a); a != "" {
					keys = append(keys, a)
				}
			}
		}
		p.Amenities = &keys
	}
	if b, err := parseBounds(v); err != nil {
		return base, err
	} else if b != nil {
		p.Bounds = b
	}
	if sort := v.Get("sort"); sort != "" {
		so := models.SortOrder(sort)
		p.Sort = &so
	}
	if p.PageSize, err = parseInt(v, "page_size"); err != nil {
		return base, err
	}
	if raw := v.Get("include_history"); raw != "" {
		b, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return base, fmt.Errorf("include_history: %w", parseErr)
		}
		p.IncludeHistory = &b
	}

	next, err := Apply(base, p)
	if err != nil {
		return base, err
	}

	// page is applied last so an explicit page survives the filter reset
	page, err := parseInt(v, "page")
	if err != nil {
		return base, err
	}
	if page != nil {
		return WithPage(next, *page)
	}
	return next, nil
}

func parseBounds(v url.Values) (*models.Bounds, error) {
	keys := []string{"bbox_south", "bbox_west", "bbox_north", "bbox_east"}
	vals := make([]float64, len(keys))
	present := 0
	for i, k := range keys {
		f, err := parseFloat(v, k)
		if err != nil {
			return nil, err
		}
		if f != nil {
			vals[i] = *f
			present++
		}
	}
	switch present {
	case 0:
		return nil, nil
	case len(keys):
		return &models.Bounds{South: vals[0], West: vals[1], North: vals[2], East: vals[3]}, nil
	default:
		return nil, fmt.Errorf("%w: all four bbox_* parameters are required", models.ErrInvalidBounds)
	}
}

func setFloat(v url.Values, key string, f *float64) {
	if f != nil {
		v.Set(key, formatFloat(*f))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parseFloat(v url.Values, key string) (*float64, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &f, nil
}

func parseInt(v url.Values, key string) (*int, error) {
	raw := v.Get(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &n, nil
}
