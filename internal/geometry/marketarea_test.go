package geometry

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compstone/server/config"
	"compstone/server/internal/models"
)

func coord(lat, lon float64) *models.Property {
	return &models.Property{Latitude: &lat, Longitude: &lon}
}

func TestGenerateConvexHull(t *testing.T) {
	// A unit square plus an interior point; the hull must drop the interior
	points := []orb.Point{
		{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0.5, 0.5},
	}

	hull := generateConvexHull(points)
	require.NotNil(t, hull)

	// Closed ring: first and last point coincide
	assert.Equal(t, hull[0], hull[len(hull)-1])

	for _, p := range hull {
		assert.NotEqual(t, orb.Point{0.5, 0.5}, p)
	}
	// Four corners plus the closing point
	assert.Len(t, hull, 5)
}

func TestGenerateConvexHull_TooFewPoints(t *testing.T) {
	assert.Nil(t, generateConvexHull([]orb.Point{{0, 0}, {1, 1}}))
}

func TestBuildMarketArea(t *testing.T) {
	b := NewMarketAreaBuilder(logrus.New())

	comps := []*models.Property{
		coord(40.670, -73.940),
		coord(40.675, -73.935),
		coord(40.672, -73.945),
		coord(40.678, -73.938),
		{Address: "no coordinates"},
	}

	fc := b.BuildMarketArea(comps)
	require.Len(t, fc.Features, 1)

	feature := fc.Features[0]
	assert.Equal(t, "convex", feature.Properties["hull_type"])
	assert.Equal(t, 4, feature.Properties["point_count"])
}

func TestBuildMarketArea_TooFewGeocoded(t *testing.T) {
	b := NewMarketAreaBuilder(logrus.New())

	fc := b.BuildMarketArea([]*models.Property{
		coord(40.670, -73.940),
		coord(40.675, -73.935),
	})
	assert.Empty(t, fc.Features)
}

func TestDistanceFeet(t *testing.T) {
	// Zero distance to itself
	assert.Zero(t, DistanceFeet(40.67, -73.94, 40.67, -73.94))

	// One degree of latitude is about 364,000 feet
	d := DistanceFeet(40.0, -73.94, 41.0, -73.94)
	assert.InDelta(t, 364_000, d, 2_000)
}

func TestNearestAmenityFeet(t *testing.T) {
	p := coord(40.670, -73.940)
	amenities := []config.Amenity{
		{Name: "Far Stop", Kind: config.AmenityTransit, Latitude: 40.700, Longitude: -73.900},
		{Name: "Near Stop", Kind: config.AmenityTransit, Latitude: 40.671, Longitude: -73.941},
	}

	d, ok := NearestAmenityFeet(p, amenities)
	require.True(t, ok)

	near := DistanceFeet(40.670, -73.940, 40.671, -73.941)
	assert.InDelta(t, near, d, 1e-6)

	_, ok = NearestAmenityFeet(&models.Property{}, amenities)
	assert.False(t, ok)

	_, ok = NearestAmenityFeet(p, nil)
	assert.False(t, ok)
}
