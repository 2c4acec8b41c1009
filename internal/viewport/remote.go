package viewport

import (
	"property-search/internal/markers"
	"property-search/internal/models"
)

// Instruction tells the browser map what to do after it loads
type Instruction struct {
	Kind   string         `json:"kind"` // "fit" or "center"
	Bounds *models.Bounds `json:"bounds,omitempty"`
	Center *models.LatLng `json:"center,omitempty"`
	Zoom   int            `json:"zoom,omitempty"`
}

// Remote is a Provider for a map that lives in the browser. Commands are
// recorded for the HTTP response and bounds are whatever the page
// reported with its settled event.
type Remote struct {
	instruction *Instruction
	bounds      *models.Bounds
	layer       markers.Layer
}

func NewRemote() *Remote {
	return &Remote{}
}

func (r *Remote) FitBounds(b models.Bounds) {
	r.instruction = &Instruction{Kind: "fit", Bounds: &b}
}

func (r *Remote) SetView(center models.LatLng, zoom int) {
	r.instruction = &Instruction{Kind: "center", Center: &center, Zoom: zoom}
}

func (r *Remote) VisibleBounds() (models.Bounds, bool) {
	if r.bounds == nil {
		return models.Bounds{}, false
	}
	return *r.bounds, true
}

func (r *Remote) RenderMarkers(layer markers.Layer) {
	r.layer = layer
}

// Report records the bounds sent by the page with a settled event
func (r *Remote) Report(b models.Bounds) {
	r.bounds = &b
}

// Instruction returns the last fit/center command, nil if none was issued
func (r *Remote) Instruction() *Instruction {
	return r.instruction
}

// Layer returns the markers most recently rendered
func (r *Remote) Layer() markers.Layer {
	return r.layer
}
