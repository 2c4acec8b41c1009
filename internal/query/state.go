package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"property-search/internal/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 24
	MaxPageSize     = 100
)

var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = fmt.Errorf("page_size must be between 1 and %d", MaxPageSize)
	ErrInvalidSort     = errors.New("unknown sort order")
	ErrInvalidType     = errors.New("unknown property type")
	ErrInvalidRange    = errors.New("min must not exceed max")
	ErrUnknownAmenity  = errors.New("unknown amenity")
	ErrUnknownField    = errors.New("unknown field")
)

// KnownAmenities lists the amenity keys understood by the listings service
var KnownAmenities = []string{"balcony", "elevator", "parking", "security", "storage"}

// State is the current search criteria. Treat it as a value: every
// transition in this package returns a fresh copy and never mutates
// its input, so snapshots can be shared between consumers.
type State struct {
	City           string              `json:"city,omitempty"`
	Type           models.PropertyType `json:"type,omitempty"`
	MinM2          *float64            `json:"min_m2,omitempty"`
	MaxM2          *float64            `json:"max_m2,omitempty"`
	MinPrice       *float64            `json:"min_price,omitempty"`
	MaxPrice       *float64            `json:"max_price,omitempty"`
	Rooms          *int                `json:"rooms,omitempty"`
	Amenities      []string            `json:"amenities,omitempty"`
	Sort           models.SortOrder    `json:"sort"`
	Page           int                 `json:"page"`
	PageSize       int                 `json:"page_size"`
	Bounds         *models.Bounds      `json:"bbox,omitempty"`
	IncludeHistory *bool               `json:"include_history,omitempty"`
}

// New returns the initial state of a search session
func New(pageSize int, sort models.SortOrder, includeHistory bool) State {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	if !sort.Valid() {
		sort = models.SortRecent
	}
	return State{
		Sort:           sort,
		Page:           DefaultPage,
		PageSize:       pageSize,
		IncludeHistory: &includeHistory,
	}
}

// Clone returns a deep copy of s
func (s State) Clone() State {
	out := s
	out.MinM2 = cloneFloat(s.MinM2)
	out.MaxM2 = cloneFloat(s.MaxM2)
	out.MinPrice = cloneFloat(s.MinPrice)
	out.MaxPrice = cloneFloat(s.MaxPrice)
	if s.Rooms != nil {
		v := *s.Rooms
		out.Rooms = &v
	}
	if s.Amenities != nil {
		out.Amenities = slices.Clone(s.Amenities)
	}
	if s.Bounds != nil {
		b := *s.Bounds
		out.Bounds = &b
	}
	if s.IncludeHistory != nil {
		v := *s.IncludeHistory
		out.IncludeHistory = &v
	}
	return out
}

// HasAmenity reports whether key is part of the amenity filter
func (s State) HasAmenity(key string) bool {
	return slices.Contains(s.Amenities, key)
}

// Validate checks the invariants every State handed to a fetcher must hold
func (s State) Validate() error {
	if s.Page < 1 {
		return ErrInvalidPage
	}
	if s.PageSize < 1 || s.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	if !s.Sort.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSort, s.Sort)
	}
	if s.Type != "" && !s.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, s.Type)
	}
	if s.MinM2 != nil && s.MaxM2 != nil && *s.MinM2 > *s.MaxM2 {
		return fmt.Errorf("%w: m2", ErrInvalidRange)
	}
	if s.MinPrice != nil && s.MaxPrice != nil && *s.MinPrice > *s.MaxPrice {
		return fmt.Errorf("%w: price", ErrInvalidRange)
	}
	for _, a := range s.Amenities {
		if !slices.Contains(KnownAmenities, a) {
			return fmt.Errorf("%w: %q", ErrUnknownAmenity, a)
		}
	}
	if s.Bounds != nil {
		if err := s.Bounds.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Key is a canonical string identifying the criteria; two states with
// the same Key request the same page from the listings service.
func (s State) Key() string {
	return Encode(s)
}

func (s State) String() string {
	var parts []string
	if s.City != "" {
		parts = append(parts, "city="+s.City)
	}
	if s.Type != "" {
		parts = append(parts, "type="+string(s.Type))
	}
	if len(s.Amenities) > 0 {
		parts = append(parts, "amenities="+strings.Join(s.Amenities, ","))
	}
	if s.Bounds != nil {
		parts = append(parts, "bbox=set")
	}
	parts = append(parts, fmt.Sprintf("sort=%s page=%d/%d", s.Sort, s.Page, s.PageSize))
	return strings.Join(parts, " ")
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
