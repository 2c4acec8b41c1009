package models

import (
	"errors"
	"math"
)

var ErrInvalidBounds = errors.New("invalid bounds")

// LatLng is a WGS84 position in degrees
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds is the geographic rectangle visible on the map.
// West may be greater than East when the box crosses the antimeridian.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Validate checks latitude/longitude ranges and that South < North
func (b Bounds) Validate() error {
	for _, v := range []float64{b.South, b.West, b.North, b.East} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidBounds
		}
	}
	if b.South < -90 || b.North > 90 || b.South >= b.North {
		return ErrInvalidBounds
	}
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		return ErrInvalidBounds
	}
	if b.West == b.East {
		return ErrInvalidBounds
	}
	return nil
}

// CrossesAntimeridian reports whether the box wraps past 180°
func (b Bounds) CrossesAntimeridian() bool {
	return b.West > b.East
}

// Contains reports whether p lies inside the box (edges inclusive)
func (b Bounds) Contains(p LatLng) bool {
	if p.Lat < b.South || p.Lat > b.North {
		return false
	}
	if b.CrossesAntimeridian() {
		return p.Lng >= b.West || p.Lng <= b.East
	}
	return p.Lng >= b.West && p.Lng <= b.East
}

// Center returns the midpoint of the box
func (b Bounds) Center() LatLng {
	lat := (b.South + b.North) / 2
	if !b.CrossesAntimeridian() {
		return LatLng{Lat: lat, Lng: (b.West + b.East) / 2}
	}
	lng := (b.West + b.East + 360) / 2
	if lng > 180 {
		lng -= 360
	}
	return LatLng{Lat: lat, Lng: lng}
}

// CoordinatePolicy decides which listings have a usable map position.
// ZeroIsUnset reproduces the legacy truthiness check that treated a 0
// latitude or longitude as missing. The zero value accepts 0 as a
// valid coordinate.
type CoordinatePolicy struct {
	ZeroIsUnset bool
}

// Position returns the map position of l under the policy
func (p CoordinatePolicy) Position(l *Listing) (LatLng, bool) {
	pos, ok := l.Coordinates()
	if !ok {
		return LatLng{}, false
	}
	if p.ZeroIsUnset && (pos.Lat == 0 || pos.Lng == 0) {
		return LatLng{}, false
	}
	return pos, true
}
