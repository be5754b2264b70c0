package valuation

import (
	"fmt"
	"time"

	"compstone/server/internal/models"
)

// Session is the explicit valuation context: the target, the comp list, the
// active strategy, and the appreciation rate. Every mutation runs a full
// idempotent recompute of derived statistics; there is no incremental
// update path. The session itself is not goroutine-safe — callers that
// share one across goroutines wrap each mutate-then-recompute transaction
// in a single mutex so no reader sees weights computed against a partially
// toggled inclusion set.
type Session struct {
	Target           *models.Property
	Comps            []*models.Property
	Strategy         Strategy
	AppreciationRate float64

	// DirectCompID is the single optional direct-comp reference. Holding
	// it here, rather than as a flag per record, makes the at-most-one
	// invariant structural.
	DirectCompID *int64

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	// Recomputed outputs.
	Weights        []CompWeight
	Estimate       *Estimate
	BuildingPrices Summary
	TotalPrices    Summary
}

// NewSession builds a session over the given target and comps and runs the
// initial recompute. Comps start included.
func NewSession(target *models.Property, comps []*models.Property) *Session {
	for _, c := range comps {
		c.Included = true
	}
	s := &Session{
		Target:           target,
		Comps:            comps,
		Strategy:         StrategySimple,
		AppreciationRate: DefaultAppreciationRate,
		Now:              time.Now,
	}
	s.Recompute()
	return s
}

// SetRate changes the annual appreciation rate and re-normalizes every
// comp's adjusted price and dependent unit prices.
func (s *Session) SetRate(rate float64) {
	s.AppreciationRate = rate
	s.Recompute()
}

// SetStrategy switches the active weighting strategy.
func (s *Session) SetStrategy(strategy Strategy) {
	s.Strategy = strategy
	s.Recompute()
}

// SetTarget replaces the target record wholesale.
func (s *Session) SetTarget(target *models.Property) {
	s.Target = target
	s.Recompute()
}

// ToggleInclusion flips a comp's participation in aggregation. A comp that
// leaves the included set also loses the direct-comp flag.
func (s *Session) ToggleInclusion(compID int64) error {
	comp := s.comp(compID)
	if comp == nil {
		return fmt.Errorf("no comp with id %d", compID)
	}
	comp.Included = !comp.Included
	if !comp.Included && s.DirectCompID != nil && *s.DirectCompID == compID {
		s.DirectCompID = nil
	}
	s.Recompute()
	return nil
}

// ToggleDirectComp flags a comp as the single direct comparable. Flagging a
// second comp moves the flag; flagging the current one clears it.
func (s *Session) ToggleDirectComp(compID int64) error {
	comp := s.comp(compID)
	if comp == nil {
		return fmt.Errorf("no comp with id %d", compID)
	}
	if s.DirectCompID != nil && *s.DirectCompID == compID {
		s.DirectCompID = nil
	} else {
		id := compID
		s.DirectCompID = &id
	}
	s.Recompute()
	return nil
}

func (s *Session) comp(id int64) *models.Property {
	for _, c := range s.Comps {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// eligible reports whether a comp may enter the aggregation step. Records
// with non-positive derived areas or adjusted price are filtered here, not
// defaulted to zero weight.
func eligible(c *models.Property) bool {
	return c.Included &&
		c.PropertySQFT() > 0 &&
		c.BuildingSQFT() > 0 &&
		c.FloorArea() > 0 &&
		c.AdjustedSalePrice > 0
}

// Recompute rebuilds every derived figure from scratch: appreciation
// adjustments, unit prices, weights, summaries, and the estimate object.
func (s *Session) Recompute() {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	for _, c := range s.Comps {
		adj := Appreciate(c.OriginalSalePrice, c.SaleDate, s.AppreciationRate, now)
		c.AdjustedSalePrice = adj.AdjustedPrice
		c.AppreciationAmount = adj.AppreciationAmount
		c.YearsAgo = adj.YearsAgo

		c.BuildingPriceSQFT = 0
		if fa := c.FloorArea(); fa > 0 {
			c.BuildingPriceSQFT = c.AdjustedSalePrice / fa
		}
		c.TotalPriceSQFT = 0
		if total := c.TotalSQFT(); total > 0 {
			c.TotalPriceSQFT = c.AdjustedSalePrice / total
		}

		c.WeightPercent = 0
		c.HighInfluence = false
		c.HeatIntensity = 0
		c.IsDirectComp = s.DirectCompID != nil && *s.DirectCompID == c.ID
	}

	included := make([]*models.Property, 0, len(s.Comps))
	for _, c := range s.Comps {
		if eligible(c) {
			included = append(included, c)
		}
	}

	s.Weights = ComputeWeights(s.Strategy, s.Target, included, now)
	heat := HeatIntensities(s.Weights)
	for i, c := range included {
		c.WeightPercent = s.Weights[i].Percent
		c.HighInfluence = s.Weights[i].HighInfluence
		c.HeatIntensity = heat[i]
	}

	building := make([]float64, len(included))
	total := make([]float64, len(included))
	raw := make([]float64, len(included))
	for i, c := range included {
		building[i] = c.BuildingPriceSQFT
		total[i] = c.TotalPriceSQFT
		raw[i] = s.Weights[i].Weight
	}
	s.BuildingPrices = Summarize(building, raw)
	s.TotalPrices = Summarize(total, raw)

	s.Estimate = BuildEstimate(s.Target, included, s.Weights)
	if s.Estimate == nil {
		return
	}

	if s.Strategy != StrategySimple {
		s.Estimate.HighInfluence = s.highInfluenceEstimate(included, now)
	}

	if s.DirectCompID != nil {
		if direct := s.comp(*s.DirectCompID); direct != nil && eligible(direct) {
			s.Estimate.DirectComp = BuildDirectCompEstimate(s.Strategy, s.Target, direct, included, s.Weights, now)
		}
	}
}

// highInfluenceEstimate re-runs the blend restricted to comps over the
// 150%-of-average threshold; nil when none qualify.
func (s *Session) highInfluenceEstimate(included []*models.Property, now time.Time) *Estimate {
	subset := make([]*models.Property, 0, len(included))
	for i, c := range included {
		if s.Weights[i].HighInfluence {
			subset = append(subset, c)
		}
	}
	if len(subset) == 0 {
		return nil
	}
	weights := ComputeWeights(s.Strategy, s.Target, subset, now)
	return BuildEstimate(s.Target, subset, weights)
}

// IncludedComps returns the comps currently eligible for aggregation.
func (s *Session) IncludedComps() []*models.Property {
	out := make([]*models.Property, 0, len(s.Comps))
	for _, c := range s.Comps {
		if eligible(c) {
			out = append(out, c)
		}
	}
	return out
}

// CompsSnapshot returns a deep copy of the comp list. Handlers serialize the
// snapshot after releasing the session lock while recomputes keep rewriting
// the live records in place.
func (s *Session) CompsSnapshot() []*models.Property {
	out := make([]*models.Property, len(s.Comps))
	for i, c := range s.Comps {
		out[i] = c.Clone()
	}
	return out
}

// IncludedCompsSnapshot is CompsSnapshot restricted to the aggregation-
// eligible comps.
func (s *Session) IncludedCompsSnapshot() []*models.Property {
	out := make([]*models.Property, 0, len(s.Comps))
	for _, c := range s.Comps {
		if eligible(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}
