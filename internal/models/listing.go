package models

import (
	"math"
	"strings"
)

// PropertyType is the building type filter accepted by the listings service
type PropertyType string

const (
	PropertyTypeApartmentBuilding PropertyType = "apartmentBuilding"
	PropertyTypeBlockOfFlats      PropertyType = "blockOfFlats"
	PropertyTypeTenement          PropertyType = "tenement"
)

// Valid reports whether t is one of the known building types
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyTypeApartmentBuilding, PropertyTypeBlockOfFlats, PropertyTypeTenement:
		return true
	}
	return false
}

// SortOrder is the ordering requested from the listings service
type SortOrder string

const (
	SortRecent    SortOrder = "recent"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortM2Asc     SortOrder = "m2_asc"
	SortM2Desc    SortOrder = "m2_desc"
)

// Valid reports whether s is one of the supported sort orders
func (s SortOrder) Valid() bool {
	switch s {
	case SortRecent, SortPriceAsc, SortPriceDesc, SortM2Asc, SortM2Desc:
		return true
	}
	return false
}

// PricePoint is a single entry of a listing's price history
type PricePoint struct {
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

type Listing struct {
	// 識別子
	ListingID string `json:"listing_id" validate:"required"`

	// 基本情報
	City       string       `json:"city,omitempty"`
	Type       PropertyType `json:"type,omitempty"`
	SquareM    *float64     `json:"square_m,omitempty"`
	Rooms      *int         `json:"rooms,omitempty"`
	Floor      *int         `json:"floor,omitempty"`
	FloorCount *int         `json:"floor_count,omitempty"`
	BuildYear  *int         `json:"build_year,omitempty"`
	Price      *float64     `json:"price,omitempty"`
	Latitude   *float64     `json:"latitude,omitempty"`
	Longitude  *float64     `json:"longitude,omitempty"`

	// 設備
	HasParkingSpace *bool `json:"has_parking_space,omitempty"`
	HasBalcony      *bool `json:"has_balcony,omitempty"`
	HasElevator     *bool `json:"has_elevator,omitempty"`
	HasSecurity     *bool `json:"has_security,omitempty"`
	HasStorageRoom  *bool `json:"has_storage_room,omitempty"`

	// 周辺指標（メートル / 件数）
	CentreDistance     *float64 `json:"centre_distance,omitempty"`
	SchoolDistance     *float64 `json:"school_distance,omitempty"`
	ClinicDistance     *float64 `json:"clinic_distance,omitempty"`
	RestaurantDistance *float64 `json:"restaurant_distance,omitempty"`
	PoiCount           *int     `json:"poi_count,omitempty"`

	PriceHistory []PricePoint `json:"price_history,omitempty"`
}

// Coordinates returns the listing position. ok is false when either
// coordinate is missing or not a finite number.
func (l *Listing) Coordinates() (LatLng, bool) {
	if l.Latitude == nil || l.Longitude == nil {
		return LatLng{}, false
	}
	lat, lng := *l.Latitude, *l.Longitude
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return LatLng{}, false
	}
	return LatLng{Lat: lat, Lng: lng}, true
}

// Amenities returns the amenity keys the listing has, in filter order
func (l *Listing) Amenities() []string {
	var out []string
	add := func(key string, v *bool) {
		if v != nil && *v {
			out = append(out, key)
		}
	}
	add("balcony", l.HasBalcony)
	add("elevator", l.HasElevator)
	add("parking", l.HasParkingSpace)
	add("security", l.HasSecurity)
	add("storage", l.HasStorageRoom)
	return out
}

// TypeLabel is the upper-cased building type, or an em dash placeholder
func (l *Listing) TypeLabel() string {
	if l.Type == "" {
		return "—"
	}
	return strings.ToUpper(string(l.Type))
}

// ListingsPage is one page of results as returned by the listings service
type ListingsPage struct {
	Items    []Listing `json:"items" validate:"dive"`
	Total    int       `json:"total" validate:"gte=0"`
	Page     int       `json:"page" validate:"gte=1"`
	PageSize int       `json:"page_size" validate:"gte=1"`
}
