package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withTempAmenityConfig(t *testing.T) {
	t.Helper()

	orig := amenityPath
	amenityPath = filepath.Join(t.TempDir(), "amenities.json")
	t.Cleanup(func() {
		amenityPath = orig
		amenityConfig = nil
	})
	amenityConfig = nil
}

func TestAmenityConfig_UpdateAndGet(t *testing.T) {
	withTempAmenityConfig(t)

	stop := Amenity{Name: "Kingston-Throop", Kind: AmenityTransit, Latitude: 40.680, Longitude: -73.941}
	require.NoError(t, UpdateAmenity(stop))

	corridor := Amenity{Name: "Nostrand Corridor", Kind: AmenityCommercial, Latitude: 40.670, Longitude: -73.950}
	require.NoError(t, UpdateAmenity(corridor))

	assert.Len(t, GetAmenities(), 2)
	transit := GetAmenitiesByKind(AmenityTransit)
	require.Len(t, transit, 1)
	assert.Equal(t, "Kingston-Throop", transit[0].Name)

	// Updating by name replaces in place
	stop.Latitude = 40.681
	require.NoError(t, UpdateAmenity(stop))
	assert.Len(t, GetAmenities(), 2)
	assert.Equal(t, 40.681, GetAmenitiesByKind(AmenityTransit)[0].Latitude)
}

func TestAmenityConfig_RoundTrip(t *testing.T) {
	withTempAmenityConfig(t)

	require.NoError(t, UpdateAmenity(Amenity{Name: "Kingston-Throop", Kind: AmenityTransit}))

	// A fresh load sees what was saved
	amenityConfig = nil
	require.NoError(t, LoadAmenityConfig())
	assert.Len(t, GetAmenities(), 1)
}

func TestAmenityConfig_Delete(t *testing.T) {
	withTempAmenityConfig(t)

	require.NoError(t, UpdateAmenity(Amenity{Name: "Kingston-Throop", Kind: AmenityTransit}))
	require.NoError(t, DeleteAmenity("Kingston-Throop"))
	assert.Empty(t, GetAmenities())

	assert.Error(t, DeleteAmenity("never-existed"))
}

func TestAmenityConfig_EmptyState(t *testing.T) {
	withTempAmenityConfig(t)

	assert.Nil(t, GetAmenities())
	assert.Nil(t, GetAmenitiesByKind(AmenityTransit))
	assert.Error(t, SaveAmenityConfig())
	assert.Error(t, DeleteAmenity("anything"))
	assert.Error(t, LoadAmenityConfig())
}
