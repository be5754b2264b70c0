package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropertyAreas(t *testing.T) {
	p := &Property{
		PropertyWidth: 20, PropertyDepth: 100,
		BuildingWidth: 20, BuildingDepth: 50,
		Stories: 3, Floors: 2,
	}

	assert.Equal(t, 2000.0, p.PropertySQFT())
	// Stories and floors are distinct multipliers over the same footprint
	assert.Equal(t, 3000.0, p.BuildingSQFT())
	assert.Equal(t, 2000.0, p.FloorArea())
	assert.Equal(t, 5000.0, p.TotalSQFT())
}

func TestClone(t *testing.T) {
	lat, lon := 40.67, -73.94
	p := &Property{
		ID: 1, Address: "104 Brooklyn Ave",
		AdjustedSalePrice: 1_200_000, WeightPercent: 40,
		Latitude: &lat, Longitude: &lon,
	}

	clone := p.Clone()
	assert.Equal(t, p, clone)

	// Rewriting the original never shows through the copy
	p.AdjustedSalePrice = 1_500_000
	p.WeightPercent = 10
	*p.Latitude = 41.0
	assert.Equal(t, 1_200_000.0, clone.AdjustedSalePrice)
	assert.Equal(t, 40.0, clone.WeightPercent)
	assert.Equal(t, 40.67, *clone.Latitude)
}

func TestHasCoordinates(t *testing.T) {
	lat, lon := 40.67, -73.94

	assert.False(t, (&Property{}).HasCoordinates())
	assert.False(t, (&Property{Latitude: &lat}).HasCoordinates())
	assert.True(t, (&Property{Latitude: &lat, Longitude: &lon}).HasCoordinates())
}
