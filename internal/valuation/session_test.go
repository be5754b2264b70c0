package valuation

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *Session {
	t.Helper()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	s := NewSession(testTarget(), testComps(now))
	s.Now = func() time.Time { return now }
	s.Recompute()
	return s
}

func TestNewSession(t *testing.T) {
	s := testSession(t)

	require.NotNil(t, s.Estimate)
	assert.Equal(t, StrategySimple, s.Strategy)
	assert.Equal(t, DefaultAppreciationRate, s.AppreciationRate)
	assert.Equal(t, 3, s.Estimate.CompCount)
	assert.Nil(t, s.Estimate.HighInfluence)
	assert.Nil(t, s.Estimate.DirectComp)

	for _, c := range s.Comps {
		assert.True(t, c.Included)
		assert.Greater(t, c.AdjustedSalePrice, 0.0)
		assert.Greater(t, c.BuildingPriceSQFT, 0.0)
		assert.Greater(t, c.TotalPriceSQFT, 0.0)
	}
}

func TestSession_ToggleInclusion(t *testing.T) {
	s := testSession(t)

	require.NoError(t, s.ToggleInclusion(2))
	assert.Equal(t, 2, s.Estimate.CompCount)
	assert.False(t, s.Comps[1].Included)

	// Toggling back re-admits the comp
	require.NoError(t, s.ToggleInclusion(2))
	assert.Equal(t, 3, s.Estimate.CompCount)

	assert.Error(t, s.ToggleInclusion(99))
}

func TestSession_ExcludingDirectCompClearsFlag(t *testing.T) {
	s := testSession(t)

	require.NoError(t, s.ToggleDirectComp(1))
	require.NotNil(t, s.DirectCompID)
	require.NotNil(t, s.Estimate.DirectComp)

	require.NoError(t, s.ToggleInclusion(1))
	assert.Nil(t, s.DirectCompID)
	assert.Nil(t, s.Estimate.DirectComp)
}

func TestSession_ToggleDirectComp(t *testing.T) {
	s := testSession(t)

	// Flagging sets the single direct comp
	require.NoError(t, s.ToggleDirectComp(1))
	require.NotNil(t, s.DirectCompID)
	assert.Equal(t, int64(1), *s.DirectCompID)
	assert.True(t, s.Comps[0].IsDirectComp)

	// Flagging a second comp moves the flag, never duplicates it
	require.NoError(t, s.ToggleDirectComp(2))
	assert.Equal(t, int64(2), *s.DirectCompID)
	assert.False(t, s.Comps[0].IsDirectComp)
	assert.True(t, s.Comps[1].IsDirectComp)

	// Flagging the current one clears it
	require.NoError(t, s.ToggleDirectComp(2))
	assert.Nil(t, s.DirectCompID)
	assert.Nil(t, s.Estimate.DirectComp)

	assert.Error(t, s.ToggleDirectComp(99))
}

func TestSession_SetRate(t *testing.T) {
	s := testSession(t)
	before := s.Comps[0].AdjustedSalePrice

	s.SetRate(0.10)

	assert.Equal(t, 0.10, s.AppreciationRate)
	assert.Greater(t, s.Comps[0].AdjustedSalePrice, before)
	// The unknown-date comp is never adjusted, at any rate
	assert.Equal(t, s.Comps[2].OriginalSalePrice, s.Comps[2].AdjustedSalePrice)
}

func TestSession_SetStrategy(t *testing.T) {
	s := testSession(t)

	s.SetStrategy(StrategyRenovated)
	assert.Equal(t, StrategyRenovated, s.Strategy)

	// The renovated comp carries triple weight, so its share is 3/(3+1+1)
	assert.InDelta(t, 60, s.Comps[0].WeightPercent, 1e-9)
	assert.InDelta(t, 20, s.Comps[1].WeightPercent, 1e-9)
}

func TestSession_MedianIsStrategyInvariant(t *testing.T) {
	s := testSession(t)
	simpleMedian := s.BuildingPrices.Median

	for _, strat := range Strategies() {
		s.SetStrategy(strat)
		assert.Equal(t, simpleMedian, s.BuildingPrices.Median, strat.String())
	}
}

func TestSession_IneligibleCompFiltered(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	comps := testComps(now)
	// A comp without building dimensions cannot produce a unit price
	comps[2].BuildingWidth = 0

	s := NewSession(testTarget(), comps)
	s.Now = func() time.Time { return now }
	s.Recompute()

	assert.Equal(t, 2, s.Estimate.CompCount)
	assert.Len(t, s.IncludedComps(), 2)
	// Filtered, not weighted at zero
	for _, w := range s.Weights {
		assert.NotEqual(t, comps[2].ID, w.CompID)
	}
}

func TestSession_HighInfluenceEstimate(t *testing.T) {
	s := testSession(t)

	// Dominant price share under the price strategy produces the
	// high-influence sub-estimate
	s.Comps[0].OriginalSalePrice = 10_000_000
	s.SetStrategy(StrategyPrice)

	require.NotNil(t, s.Estimate.HighInfluence)
	assert.Equal(t, 1, s.Estimate.HighInfluence.CompCount)
	// The sub-estimate never nests further
	assert.Nil(t, s.Estimate.HighInfluence.HighInfluence)
}

func TestSession_CompsSnapshotIsDetached(t *testing.T) {
	s := testSession(t)

	snapshot := s.CompsSnapshot()
	require.Len(t, snapshot, 3)
	before := snapshot[0].AdjustedSalePrice

	// A recompute on the live session never reaches into the snapshot
	s.SetRate(0.10)
	assert.Equal(t, before, snapshot[0].AdjustedSalePrice)
	assert.NotEqual(t, s.Comps[0].AdjustedSalePrice, snapshot[0].AdjustedSalePrice)
	for i := range snapshot {
		assert.NotSame(t, s.Comps[i], snapshot[i])
	}
}

func TestSession_IncludedCompsSnapshot(t *testing.T) {
	s := testSession(t)
	require.NoError(t, s.ToggleInclusion(2))

	snapshot := s.IncludedCompsSnapshot()
	require.Len(t, snapshot, 2)

	// Excluding another comp on the live session leaves the snapshot alone
	require.NoError(t, s.ToggleInclusion(1))
	assert.Len(t, snapshot, 2)
	assert.Equal(t, int64(1), snapshot[0].ID)
}

// Snapshots taken under a lock stay readable after it is released, even
// while recomputes keep rewriting the live comp records under that lock.
func TestSession_SnapshotReadableDuringRecompute(t *testing.T) {
	s := testSession(t)

	var mu sync.Mutex
	done := make(chan struct{})
	go func() {
		defer close(done)
		for _, strat := range Strategies() {
			mu.Lock()
			s.SetStrategy(strat)
			mu.Unlock()
		}
	}()

	for i := 0; i < 100; i++ {
		mu.Lock()
		snapshot := s.CompsSnapshot()
		mu.Unlock()

		sum := 0.0
		for _, c := range snapshot {
			sum += c.WeightPercent
		}
		assert.InDelta(t, 100, sum, 1e-9)
	}
	<-done
}

func TestSession_NoCompsYieldsNilEstimate(t *testing.T) {
	s := NewSession(testTarget(), nil)
	assert.Nil(t, s.Estimate)
	assert.Empty(t, s.Weights)
}
