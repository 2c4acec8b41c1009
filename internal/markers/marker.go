package markers

import (
	"fmt"

	"property-search/internal/dedupe"
	"property-search/internal/models"
)

// Marker is one pin on the map
type Marker struct {
	ListingID string        `json:"listing_id"`
	Position  models.LatLng `json:"position"`
	Tier      Tier          `json:"tier"`
	Icon      string        `json:"icon"`
	Title     string        `json:"title"`
}

// Layer is the full marker set handed to the map provider
type Layer struct {
	Metric    Metric   `json:"metric"`
	Clustered bool     `json:"clustered"`
	Markers   []Marker `json:"markers"`
}

// Colorizer styles markers by a configured metric
type Colorizer struct {
	Metric      Metric
	Clustered   bool
	Coordinates models.CoordinatePolicy
}

// Build dedupes items and returns a marker for every listing with a
// usable position. Listings without coordinates are skipped, not errors.
func (c Colorizer) Build(items []models.Listing) Layer {
	unique := dedupe.Listings(items)
	layer := Layer{Metric: c.Metric, Clustered: c.Clustered, Markers: make([]Marker, 0, len(unique))}
	for i := range unique {
		l := &unique[i]
		pos, ok := c.Coordinates.Position(l)
		if !ok {
			continue
		}
		tier := TierFor(l, c.Metric)
		layer.Markers = append(layer.Markers, Marker{
			ListingID: l.ListingID,
			Position:  pos,
			Tier:      tier,
			Icon:      GlyphDataURI(tier),
			Title:     title(l),
		})
	}
	return layer
}

func title(l *models.Listing) string {
	if l.City == "" {
		return l.TypeLabel()
	}
	return fmt.Sprintf("%s · %s", l.City, l.TypeLabel())
}
