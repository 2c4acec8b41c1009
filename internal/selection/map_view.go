package selection

import "property-search/internal/models"

// Overlay is the info popup anchored at the selected listing
type Overlay struct {
	ListingID string        `json:"listing_id"`
	Position  models.LatLng `json:"position"`
	Summary   string        `json:"summary"`
	Action    OverlayAction `json:"action"`
}

// OverlayAction is the popup button. Pressing it selects ListingID
// again, which is idempotent.
type OverlayAction struct {
	Label     string `json:"label"`
	ListingID string `json:"listing_id"`
}

// MapView tracks the map-side effect of selection: the info overlay
type MapView struct {
	lookup    func(id string) (*models.Listing, bool)
	summarize func(l *models.Listing) string
	policy    models.CoordinatePolicy

	overlay *Overlay
}

func NewMapView(lookup func(id string) (*models.Listing, bool), summarize func(*models.Listing) string, policy models.CoordinatePolicy) *MapView {
	return &MapView{lookup: lookup, summarize: summarize, policy: policy}
}

// Selected opens the overlay for id. Listings that are not on the map
// (unknown or without coordinates) close it instead.
func (v *MapView) Selected(id string) {
	v.overlay = nil
	l, ok := v.lookup(id)
	if !ok {
		return
	}
	pos, ok := v.policy.Position(l)
	if !ok {
		return
	}
	v.overlay = &Overlay{
		ListingID: id,
		Position:  pos,
		Summary:   v.summarize(l),
		Action:    OverlayAction{Label: "Show in list", ListingID: id},
	}
}

func (v *MapView) Cleared() {
	v.overlay = nil
}

// Overlay returns the open popup, nil when closed
func (v *MapView) Overlay() *Overlay {
	return v.overlay
}
