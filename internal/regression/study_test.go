package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// studyObservations generates prices from an exact linear rule over
// building area, lot area, and renovation, so every model that includes
// those three features fits perfectly and the lot-only rung does not.
func studyObservations(withDistances bool) []Observation {
	specs := []struct {
		lot, building, renovated, width, transit, commercial float64
	}{
		{2000, 2200, 0, 20, 800, 1200},
		{2500, 2600, 1, 25, 1500, 900},
		{1800, 2000, 0, 18, 400, 2000},
		{2200, 3000, 1, 22, 2500, 600},
		{2000, 1800, 0, 20, 1000, 1500},
		{2700, 3200, 1, 27, 600, 1100},
		{1900, 2400, 0, 19, 1900, 700},
		{2400, 2100, 1, 24, 1200, 1800},
	}

	obs := make([]Observation, len(specs))
	for i, s := range specs {
		obs[i] = Observation{
			Price:        50_000 + 100*s.lot + 300*s.building + 80_000*s.renovated,
			LotSQFT:      s.lot,
			BuildingSQFT: s.building,
			Renovated:    s.renovated,
			Width:        s.width,
		}
		if withDistances {
			obs[i].TransitDistance = s.transit
			obs[i].CommercialDistance = s.commercial
			obs[i].HasAmenityDistance = true
		}
	}
	return obs
}

func TestRunStudy_LadderWithoutDistances(t *testing.T) {
	reports, err := RunStudy(studyObservations(false))
	require.NoError(t, err)

	// Amenity rungs are skipped when no observation carries distances
	require.Len(t, reports, 4)
	names := make(map[string]bool)
	for _, r := range reports {
		names[r.Name] = true
	}
	assert.True(t, names["lot-only"])
	assert.True(t, names["building+lot"])
	assert.True(t, names["building+lot+renovation"])
	assert.True(t, names["building+lot+renovation+width"])
}

func TestRunStudy_LadderWithDistances(t *testing.T) {
	reports, err := RunStudy(studyObservations(true))
	require.NoError(t, err)
	require.Len(t, reports, 8)

	names := make(map[string]bool)
	for _, r := range reports {
		names[r.Name] = true
	}
	assert.True(t, names["base+transit"])
	assert.True(t, names["base+commercial"])
	assert.True(t, names["base+both-amenities"])
	assert.True(t, names["base+amenity-blend"])
}

func TestRunStudy_RankedByRSquared(t *testing.T) {
	reports, err := RunStudy(studyObservations(false))
	require.NoError(t, err)

	prev := 2.0
	for _, r := range reports {
		require.NoError(t, r.Err, r.Name)
		require.NotNil(t, r.Fit, r.Name)
		assert.LessOrEqual(t, r.Fit.RSquared, prev)
		prev = r.Fit.RSquared
	}

	// The generating rule includes building and renovation, so lot-only
	// must rank last
	assert.Equal(t, "lot-only", reports[len(reports)-1].Name)
	assert.Less(t, reports[len(reports)-1].Fit.RSquared, 1.0)
}

func TestRunStudy_RecoversGeneratingCoefficients(t *testing.T) {
	reports, err := RunStudy(studyObservations(false))
	require.NoError(t, err)

	var report *ModelReport
	for i := range reports {
		if reports[i].Name == "building+lot+renovation" {
			report = &reports[i]
		}
	}
	require.NotNil(t, report)
	require.NoError(t, report.Err)

	// Features are ordered building, lot, renovated after the intercept
	coefs := report.Fit.Coefficients
	require.Len(t, coefs, 4)
	assert.InDelta(t, 50_000, coefs[0], 1)
	assert.InDelta(t, 300, coefs[1], 1e-3)
	assert.InDelta(t, 100, coefs[2], 1e-3)
	assert.InDelta(t, 80_000, coefs[3], 1)
	assert.InDelta(t, 1, report.Fit.RSquared, 1e-9)
}

func TestRunStudy_MixedDistanceCoverageSkipsAmenityModels(t *testing.T) {
	obs := studyObservations(true)
	obs[0].HasAmenityDistance = false

	reports, err := RunStudy(obs)
	require.NoError(t, err)
	assert.Len(t, reports, 4)
}

func TestRunStudy_Empty(t *testing.T) {
	_, err := RunStudy(nil)
	assert.Error(t, err)
}
