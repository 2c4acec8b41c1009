package query

import (
	"fmt"
	"slices"

	"property-search/internal/models"
)

// Field names accepted in Patch.Clear
const (
	FieldCity      = "city"
	FieldType      = "type"
	FieldMinM2     = "min_m2"
	FieldMaxM2     = "max_m2"
	FieldMinPrice  = "min_price"
	FieldMaxPrice  = "max_price"
	FieldRooms     = "rooms"
	FieldAmenities = "amenities"
	FieldBounds    = "bbox"
)

var filterFields = []string{
	FieldCity, FieldType, FieldMinM2, FieldMaxM2, FieldMinPrice,
	FieldMaxPrice, FieldRooms, FieldAmenities, FieldBounds,
}

// Patch is a partial update of a State. Nil fields are left untouched;
// Clear names filter fields to unset.
type Patch struct {
	City           *string              `json:"city,omitempty"`
	Type           *models.PropertyType `json:"type,omitempty"`
	MinM2          *float64             `json:"min_m2,omitempty"`
	MaxM2          *float64             `json:"max_m2,omitempty"`
	MinPrice       *float64             `json:"min_price,omitempty"`
	MaxPrice       *float64             `json:"max_price,omitempty"`
	Rooms          *int                 `json:"rooms,omitempty"`
	Amenities      *[]string            `json:"amenities,omitempty"`
	Bounds         *models.Bounds       `json:"bbox,omitempty"`
	Sort           *models.SortOrder    `json:"sort,omitempty"`
	Page           *int                 `json:"page,omitempty"`
	PageSize       *int                 `json:"page_size,omitempty"`
	IncludeHistory *bool                `json:"include_history,omitempty"`
	Clear          []string             `json:"clear,omitempty"`
}

// TouchesFilters reports whether applying p changes the result set
// itself (as opposed to which page of it is shown).
func (p Patch) TouchesFilters() bool {
	if p.City != nil || p.Type != nil || p.MinM2 != nil || p.MaxM2 != nil ||
		p.MinPrice != nil || p.MaxPrice != nil || p.Rooms != nil ||
		p.Amenities != nil || p.Bounds != nil || p.PageSize != nil {
		return true
	}
	for _, f := range p.Clear {
		if slices.Contains(filterFields, f) {
			return true
		}
	}
	return false
}

// Apply merges p into s and returns the new state. Any filter, bbox or
// page size change forces page 1. The returned state is validated; on
// error s is returned unchanged.
func Apply(s State, p Patch) (State, error) {
	next := s.Clone()

	for _, f := range p.Clear {
		switch f {
		case FieldCity:
			next.City = ""
		case FieldType:
			next.Type = ""
		case FieldMinM2:
			next.MinM2 = nil
		case FieldMaxM2:
			next.MaxM2 = nil
		case FieldMinPrice:
			next.MinPrice = nil
		case FieldMaxPrice:
			next.MaxPrice = nil
		case FieldRooms:
			next.Rooms = nil
		case FieldAmenities:
			next.Amenities = nil
		case FieldBounds:
			next.Bounds = nil
		default:
			return s, fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}

	if p.City != nil {
		next.City = *p.City
	}
	if p.Type != nil {
		next.Type = *p.Type
	}
	if p.MinM2 != nil {
		next.MinM2 = cloneFloat(p.MinM2)
	}
	if p.MaxM2 != nil {
		next.MaxM2 = cloneFloat(p.MaxM2)
	}
	if p.MinPrice != nil {
		next.MinPrice = cloneFloat(p.MinPrice)
	}
	if p.MaxPrice != nil {
		next.MaxPrice = cloneFloat(p.MaxPrice)
	}
	if p.Rooms != nil {
		v := *p.Rooms
		next.Rooms = &v
	}
	if p.Amenities != nil {
		next.Amenities = normalizeAmenities(*p.Amenities)
	}
	if p.Bounds != nil {
		b := *p.Bounds
		next.Bounds = &b
	}
	if p.Sort != nil {
		next.Sort = *p.Sort
	}
	if p.PageSize != nil {
		next.PageSize = *p.PageSize
	}
	if p.IncludeHistory != nil {
		v := *p.IncludeHistory
		next.IncludeHistory = &v
	}
	if p.Page != nil {
		next.Page = *p.Page
	}

	if p.TouchesFilters() {
		next.Page = DefaultPage
	}

	if err := next.Validate(); err != nil {
		return s, err
	}
	return next, nil
}

// WithPage is shorthand for Apply(s, Patch{Page: &page})
func WithPage(s State, page int) (State, error) {
	return Apply(s, Patch{Page: &page})
}

// WithBounds sets the viewport filter and resets to the first page
func WithBounds(s State, b models.Bounds) (State, error) {
	return Apply(s, Patch{Bounds: &b})
}

// SetAmenity adds (on=true) or removes an amenity key. Adding a key that
// is already present or removing one that is absent is a no-op: the
// original state is returned with changed=false and the page untouched.
func SetAmenity(s State, key string, on bool) (next State, changed bool, err error) {
	if !slices.Contains(KnownAmenities, key) {
		return s, false, fmt.Errorf("%w: %q", ErrUnknownAmenity, key)
	}
	if s.HasAmenity(key) == on {
		return s, false, nil
	}

	amenities := slices.Clone(s.Amenities)
	if on {
		amenities = append(amenities, key)
	} else {
		amenities = slices.DeleteFunc(amenities, func(a string) bool { return a == key })
	}
	next, err = Apply(s, Patch{Amenities: &amenities})
	if err != nil {
		return s, false, err
	}
	return next, true, nil
}

// normalizeAmenities sorts and de-duplicates keys so equal sets encode equally
func normalizeAmenities(keys []string) []string {
	if len(keys) == 0 {
		return nil
	}
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}
