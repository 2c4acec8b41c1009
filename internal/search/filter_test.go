package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-search/internal/models"
	"property-search/internal/query"
)

func ptr[T any](v T) *T { return &v }

func TestBuildFilterEmpty(t *testing.T) {
	p := BuildFilter(query.New(24, models.SortRecent, true))

	assert.Empty(t, p.Filter)
	assert.Equal(t, []string{"snapshot_date:desc"}, p.Sort)
	assert.Equal(t, int64(0), p.Offset)
	assert.Equal(t, int64(24), p.Limit)
}

func TestBuildFilterFull(t *testing.T) {
	s, err := query.Apply(query.New(20, models.SortM2Asc, true), query.Patch{
		City:      ptr("O'Brien"),
		Type:      ptr(models.PropertyTypeApartmentBuilding),
		MinM2:     ptr(35.5),
		MaxPrice:  ptr(800000.0),
		Rooms:     ptr(3),
		Amenities: &[]string{"parking", "elevator"},
		Bounds:    &models.Bounds{South: 49.9, West: 19.8, North: 50.2, East: 20.1},
	})
	require.NoError(t, err)
	s, err = query.WithPage(s, 3)
	require.NoError(t, err)

	p := BuildFilter(s)

	assert.Equal(t, `city = 'O\'Brien' AND type = 'apartmentBuilding' AND square_m >= 35.5 AND price <= 800000`+
		` AND rooms = 3 AND has_elevator = true AND has_parking_space = true`+
		` AND _geoBoundingBox([50.2, 20.1], [49.9, 19.8])`, p.Filter)
	assert.Equal(t, []string{"square_m:asc"}, p.Sort)
	assert.Equal(t, int64(40), p.Offset)
	assert.Equal(t, int64(20), p.Limit)
}
