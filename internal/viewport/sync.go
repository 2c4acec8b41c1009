package viewport

import (
	"errors"
	"fmt"
	"math"

	"property-search/internal/markers"
	"property-search/internal/models"
	"property-search/internal/query"
)

// ErrNoMap is returned when a map event arrives before the map has loaded
var ErrNoMap = errors.New("map not loaded")

// Provider is the capability set the core needs from a map widget.
// Load completion and settled-viewport notifications arrive as calls
// to Sync.Load and Sync.Settled.
type Provider interface {
	FitBounds(b models.Bounds)
	SetView(center models.LatLng, zoom int)
	VisibleBounds() (models.Bounds, bool)
	RenderMarkers(layer markers.Layer)
}

// Phase is the ViewportSync lifecycle state
type Phase int

const (
	Uninitialized Phase = iota
	Fitted
	Tracking
)

func (p Phase) String() string {
	switch p {
	case Fitted:
		return "fitted"
	case Tracking:
		return "tracking"
	default:
		return "uninitialized"
	}
}

// Config holds the fallback view used when no listing can be located
type Config struct {
	DefaultCenter models.LatLng
	DefaultZoom   int
	Coordinates   models.CoordinatePolicy
}

// Sync keeps the map viewport and the query bounds consistent. The map
// is fitted to the results exactly once, when it loads; after that the
// user's viewport is authoritative and only flows map -> query.
type Sync struct {
	cfg      Config
	phase    Phase
	provider Provider
}

func NewSync(cfg Config) *Sync {
	return &Sync{cfg: cfg}
}

func (s *Sync) Phase() Phase {
	return s.phase
}

// Load attaches a freshly loaded map and fits it to items, or to the
// default center/zoom when none of them has coordinates. Loading a
// second map instance replaces the first and starts a new lifetime.
func (s *Sync) Load(p Provider, items []models.Listing) {
	s.provider = p
	if b, ok := ComputeBounds(items, s.cfg.Coordinates); ok {
		p.FitBounds(b)
	} else {
		p.SetView(s.cfg.DefaultCenter, s.cfg.DefaultZoom)
	}
	s.phase = Fitted
}

// Detach forgets the current map instance
func (s *Sync) Detach() {
	s.provider = nil
	s.phase = Uninitialized
}

// Settled handles the end of a pan/zoom interaction: it reads the
// visible bounds and returns the query patch that filters on them
// (which also resets the page). It never refits the map.
func (s *Sync) Settled() (query.Patch, error) {
	if s.phase == Uninitialized || s.provider == nil {
		return query.Patch{}, ErrNoMap
	}
	b, ok := s.provider.VisibleBounds()
	if !ok {
		return query.Patch{}, fmt.Errorf("%w: provider reported no bounds", models.ErrInvalidBounds)
	}
	if err := b.Validate(); err != nil {
		return query.Patch{}, err
	}
	s.phase = Tracking
	return query.Patch{Bounds: &b}, nil
}

// Render pushes a new marker layer to the attached map. Result updates
// only redraw markers; they never move the viewport.
func (s *Sync) Render(layer markers.Layer) {
	if s.provider != nil {
		s.provider.RenderMarkers(layer)
	}
}

// ComputeBounds returns the smallest box containing every located
// listing. ok is false when no listing has usable coordinates.
func ComputeBounds(items []models.Listing, policy models.CoordinatePolicy) (models.Bounds, bool) {
	b := models.Bounds{South: math.Inf(1), West: math.Inf(1), North: math.Inf(-1), East: math.Inf(-1)}
	found := false
	for i := range items {
		pos, ok := policy.Position(&items[i])
		if !ok {
			continue
		}
		found = true
		b.South = math.Min(b.South, pos.Lat)
		b.North = math.Max(b.North, pos.Lat)
		b.West = math.Min(b.West, pos.Lng)
		b.East = math.Max(b.East, pos.Lng)
	}
	if !found {
		return models.Bounds{}, false
	}
	return b, true
}
