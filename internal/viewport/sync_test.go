package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/markers"
	"property-search/internal/models"
	"property-search/internal/query"
)

type fakeMap struct {
	fits    []models.Bounds
	views   []models.LatLng
	zoom    int
	visible *models.Bounds
	layers  []markers.Layer
}

func (m *fakeMap) FitBounds(b models.Bounds) { m.fits = append(m.fits, b) }
func (m *fakeMap) SetView(c models.LatLng, zoom int) { m.views = append(m.views, c); m.zoom = zoom }
func (m *fakeMap) RenderMarkers(l markers.Layer) { m.layers = append(m.layers, l) }
func (m *fakeMap) VisibleBounds() (models.Bounds, bool) {
	if m.visible == nil {
		return models.Bounds{}, false
	}
	return *m.visible, true
}

var krakow = Config{DefaultCenter: models.LatLng{Lat: 50.0647, Lng: 19.945}, DefaultZoom: 12}

func at(id string, lat, lng float64) models.Listing {
	return models.Listing{ListingID: id, Latitude: &lat, Longitude: &lng}
}

func TestLoadFitsToLocatedListings(t *testing.T) {
	s := NewSync(krakow)
	m := &fakeMap{}
	require.Equal(t, Uninitialized, s.Phase())

	s.Load(m, []models.Listing{at("A", 50.1, 19.9), {ListingID: "nowhere"}, at("B", 49.9, 20.2), at("C", 50.0, 19.7)})

	require.Len(t, m.fits, 1)
	assert.Equal(t, models.Bounds{South: 49.9, West: 19.7, North: 50.1, East: 20.2}, m.fits[0])
	assert.Empty(t, m.views)
	assert.Equal(t, Fitted, s.Phase())
}

func TestLoadWithoutCoordinatesFallsBackToDefault(t *testing.T) {
	for _, items := range [][]models.Listing{nil, {{ListingID: "A"}, {ListingID: "B"}}} {
		s := NewSync(krakow)
		m := &fakeMap{}

		s.Load(m, items)

		assert.Empty(t, m.fits)
		require.Len(t, m.views, 1)
		assert.Equal(t, krakow.DefaultCenter, m.views[0])
		assert.Equal(t, 12, m.zoom)
		assert.Equal(t, Fitted, s.Phase())
	}
}

func TestSettledEmitsBoundsPatchAndNeverRefits(t *testing.T) {
	s := NewSync(krakow)
	m := &fakeMap{}
	s.Load(m, []models.Listing{at("A", 50, 19)})

	view := models.Bounds{South: 49.8, West: 19.6, North: 50.3, East: 20.3}
	m.visible = &view

	for i := 0; i < 3; i++ {
		p, err := s.Settled()
		require.NoError(t, err)
		require.NotNil(t, p.Bounds)
		assert.Equal(t, view, *p.Bounds)
		assert.Equal(t, Tracking, s.Phase())

		s.Render(markers.Layer{Markers: []markers.Marker{{ListingID: "A"}}})
	}

	assert.Len(t, m.fits, 1, "the map is fitted only on load")
	assert.Len(t, m.layers, 3)

	st, err := query.WithPage(query.New(24, models.SortRecent, true), 5)
	require.NoError(t, err)
	p, err := s.Settled()
	require.NoError(t, err)
	next, err := query.Apply(st, p)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Page)
}

func TestSettledBeforeLoad(t *testing.T) {
	s := NewSync(krakow)
	_, err := s.Settled()
	require.ErrorIs(t, err, ErrNoMap)

	s.Load(&fakeMap{}, nil)
	s.Detach()
	_, err = s.Settled()
	require.ErrorIs(t, err, ErrNoMap)
}

func TestSettledRejectsBadBounds(t *testing.T) {
	s := NewSync(krakow)
	m := &fakeMap{}
	s.Load(m, nil)

	_, err := s.Settled()
	require.ErrorIs(t, err, models.ErrInvalidBounds)

	m.visible = &models.Bounds{South: 10, West: 0, North: 5, East: 1}
	_, err = s.Settled()
	require.ErrorIs(t, err, models.ErrInvalidBounds)
	assert.Equal(t, Fitted, s.Phase())
}

func TestComputeBoundsZeroCoordinates(t *testing.T) {
	items := []models.Listing{at("EQ", 0, 0), at("B", 1, 1)}

	b, ok := ComputeBounds(items, models.CoordinatePolicy{})
	require.True(t, ok)
	assert.Equal(t, models.Bounds{South: 0, West: 0, North: 1, East: 1}, b)

	b, ok = ComputeBounds(items, models.CoordinatePolicy{ZeroIsUnset: true})
	require.True(t, ok)
	assert.Equal(t, models.Bounds{South: 1, West: 1, North: 1, East: 1}, b)

	_, ok = ComputeBounds([]models.Listing{at("EQ", 0, 5)}, models.CoordinatePolicy{ZeroIsUnset: true})
	assert.False(t, ok)
}

func TestRemoteRecordsInstructions(t *testing.T) {
	r := NewRemote()
	s := NewSync(krakow)

	s.Load(r, nil)
	require.NotNil(t, r.Instruction())
	assert.Equal(t, "center", r.Instruction().Kind)
	assert.Equal(t, 12, r.Instruction().Zoom)

	r2 := NewRemote()
	s.Load(r2, []models.Listing{at("A", 50, 19)})
	assert.Equal(t, "fit", r2.Instruction().Kind)

	r2.Report(models.Bounds{South: 49, West: 18, North: 51, East: 20})
	p, err := s.Settled()
	require.NoError(t, err)
	assert.Equal(t, 51.0, p.Bounds.North)
}
