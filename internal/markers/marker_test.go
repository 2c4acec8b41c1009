package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/models"
)

func located(id string, lat, lng float64, centre *float64) models.Listing {
	return models.Listing{ListingID: id, City: "Kraków", Type: models.PropertyTypeTenement, Latitude: &lat, Longitude: &lng, CentreDistance: centre}
}

func TestBuildDedupesAndSkipsUnlocated(t *testing.T) {
	c := Colorizer{Metric: MetricCentreDistance, Clustered: true}
	items := []models.Listing{
		located("A", 50.06, 19.94, f(100)),
		{ListingID: "B"},
		located("C", 50.07, 19.95, nil),
		located("A", 50.08, 19.96, f(2000)),
	}

	layer := c.Build(items)

	require.Len(t, layer.Markers, 2)
	assert.True(t, layer.Clustered)
	assert.Equal(t, "C", layer.Markers[0].ListingID)
	assert.Equal(t, TierUnknown, layer.Markers[0].Tier)
	assert.Equal(t, "A", layer.Markers[1].ListingID)
	assert.Equal(t, 50.08, layer.Markers[1].Position.Lat)
	assert.Equal(t, TierFar, layer.Markers[1].Tier)
	assert.Equal(t, "Kraków · TENEMENT", layer.Markers[1].Title)
	assert.Equal(t, GlyphDataURI(TierFar), layer.Markers[1].Icon)
}

func TestBuildZeroCoordinates(t *testing.T) {
	items := []models.Listing{located("EQ", 0, 32.5, nil), located("GW", 51.48, 0, nil)}

	layer := Colorizer{Metric: MetricPoiCount}.Build(items)
	assert.Len(t, layer.Markers, 2, "0 is a valid coordinate")

	legacy := Colorizer{Metric: MetricPoiCount, Coordinates: models.CoordinatePolicy{ZeroIsUnset: true}}.Build(items)
	assert.Empty(t, legacy.Markers)
}
