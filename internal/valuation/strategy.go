package valuation

import (
	"fmt"
	"math"
	"time"

	"compstone/server/internal/models"
)

// Strategy selects the formula that turns comp attributes into relative
// influence on the aggregate estimate.
type Strategy int

const (
	StrategySimple Strategy = iota
	StrategyPrice
	StrategySize
	StrategyTotalSize
	StrategyDate
	StrategyRenovated
	StrategyCombined
	StrategyAllWeighted
)

// Weighting policy constants. These are named so tests and callers can
// assert on the policy rather than re-derive a magic number.
const (
	// MissingDatePenaltyWeight is assigned under the date strategy when a
	// comp's sale date cannot be parsed. The comp still counts, heavily
	// discounted, rather than being excluded.
	MissingDatePenaltyWeight = 0.1

	// DateDecayDays is the exponential recency decay constant; weight
	// halves roughly every 364 days.
	DateDecayDays = 525.0

	// RenovatedBonusWeight is the renovated-strategy weight for comps
	// marked renovated; all others get 1.
	RenovatedBonusWeight = 3.0

	// Combined-strategy multipliers for attribute matches with the target.
	CombinedRenovatedFactor = 3.0
	CombinedDetailsFactor   = 2.0

	// All-weighted multipliers for attribute matches with the target.
	AllWeightedRenovatedFactor = 1.5
	AllWeightedDetailsFactor   = 1.3

	// HighInfluenceFactor flags a comp whose weight share exceeds this
	// multiple of the equal-share average.
	HighInfluenceFactor = 1.5

	// DirectCompMaxRatio caps how far a single flagged comp can pull the
	// blended estimate toward itself.
	DirectCompMaxRatio = 0.85
)

var strategyNames = map[Strategy]string{
	StrategySimple:      "simple",
	StrategyPrice:       "price",
	StrategySize:        "size",
	StrategyTotalSize:   "total-size",
	StrategyDate:        "date",
	StrategyRenovated:   "renovated",
	StrategyCombined:    "combined",
	StrategyAllWeighted: "all-weighted",
}

// String returns the strategy token used on the wire.
func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseStrategy maps a strategy token onto its enum value.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}
	return StrategySimple, fmt.Errorf("unknown weighting strategy: %q", name)
}

// Strategies lists every selectable strategy in display order.
func Strategies() []Strategy {
	return []Strategy{
		StrategySimple,
		StrategyPrice,
		StrategySize,
		StrategyTotalSize,
		StrategyDate,
		StrategyRenovated,
		StrategyCombined,
		StrategyAllWeighted,
	}
}

// CompWeight is the per-comp output of the weighting engine.
type CompWeight struct {
	CompID        int64   `json:"comp_id"`
	Weight        float64 `json:"weight"`
	Percent       float64 `json:"percent"`
	HighInfluence bool    `json:"high_influence"`
}

// ComputeWeights computes one non-negative weight per comp under the given
// strategy, together with its share of 100 and the high-influence flag.
// The comps slice is expected to already be the included, aggregation-valid
// set; callers filter before weighting, the engine never defaults a bad
// record to zero.
func ComputeWeights(s Strategy, target *models.Property, comps []*models.Property, now time.Time) []CompWeight {
	if len(comps) == 0 {
		return nil
	}

	raw := make([]float64, len(comps))
	if s == StrategyAllWeighted {
		allWeightedRaw(target, comps, now, raw)
	} else {
		for i, c := range comps {
			raw[i] = s.rawWeight(target, c, now)
		}
	}

	total := 0.0
	for _, w := range raw {
		total += w
	}

	threshold := 100.0 / float64(len(comps)) * HighInfluenceFactor

	weights := make([]CompWeight, len(comps))
	for i, c := range comps {
		pct := 0.0
		if total > 0 {
			pct = raw[i] / total * 100
		}
		weights[i] = CompWeight{
			CompID:        c.ID,
			Weight:        raw[i],
			Percent:       pct,
			HighInfluence: s != StrategySimple && pct > threshold,
		}
	}

	return weights
}

// rawWeight computes the un-normalized weight of a single comp for every
// strategy except all-weighted, which needs the whole set.
func (s Strategy) rawWeight(target, comp *models.Property, now time.Time) float64 {
	switch s {
	case StrategyPrice:
		return comp.AdjustedSalePrice
	case StrategySize:
		return similarityWeight(comp.FloorArea(), target.FloorArea())
	case StrategyTotalSize:
		return similarityWeight(comp.TotalSQFT(), target.TotalSQFT())
	case StrategyDate:
		return recencyWeight(comp.SaleDate, now)
	case StrategyRenovated:
		if comp.Renovated == models.RenovatedYes {
			return RenovatedBonusWeight
		}
		return 1
	case StrategyCombined:
		w := 1.0
		if comp.Renovated == target.Renovated {
			w *= CombinedRenovatedFactor
		}
		if comp.OriginalDetails == target.OriginalDetails {
			w *= CombinedDetailsFactor
		}
		return w
	default:
		return 1
	}
}

// allWeightedRaw fills raw with the all-weighted strategy: the product of
// the price, size-similarity, and date-recency shares, each pre-multiplied
// by the comp count so the shares average to 1 across the set, then scaled
// by the attribute-match factors. Whether the ×count normalization drifts
// under skewed distributions is an open empirical question, not something
// to fix here.
func allWeightedRaw(target *models.Property, comps []*models.Property, now time.Time, raw []float64) {
	n := float64(len(comps))

	price := make([]float64, len(comps))
	size := make([]float64, len(comps))
	date := make([]float64, len(comps))
	var sumPrice, sumSize, sumDate float64
	for i, c := range comps {
		price[i] = c.AdjustedSalePrice
		size[i] = similarityWeight(c.FloorArea(), target.FloorArea())
		date[i] = recencyWeight(c.SaleDate, now)
		sumPrice += price[i]
		sumSize += size[i]
		sumDate += date[i]
	}

	for i, c := range comps {
		w := share(price[i], sumPrice, n) * share(size[i], sumSize, n) * share(date[i], sumDate, n)
		if c.Renovated == target.Renovated {
			w *= AllWeightedRenovatedFactor
		}
		if c.OriginalDetails == target.OriginalDetails {
			w *= AllWeightedDetailsFactor
		}
		raw[i] = w
	}
}

// share returns value/total scaled by the comp count, or 1 when the
// denominator degenerates. The guard keeps a zero-sum factor from zeroing
// the whole product on the live recompute path.
func share(value, total, n float64) float64 {
	if total <= 0 {
		return 1
	}
	return value / total * n
}

// similarityWeight is the inverse-distance kernel 1/(1+|comp-target|/target).
// A non-positive target size makes the ratio undefined, so every comp is
// weighted equally in that case.
func similarityWeight(compSize, targetSize float64) float64 {
	if targetSize <= 0 {
		return 1
	}
	return 1 / (1 + math.Abs(compSize-targetSize)/targetSize)
}

// recencyWeight decays exp(-days/DateDecayDays) from the sale date, with
// the fixed penalty weight for unparseable dates.
func recencyWeight(saleDate string, now time.Time) float64 {
	days, ok := DaysSinceSale(saleDate, now)
	if !ok {
		return MissingDatePenaltyWeight
	}
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / DateDecayDays)
}

// DirectCompRatio computes the blend ratio for the single flagged direct
// comp: its strategy weight is normalized against the average weight of the
// included set rather than the total, then capped at DirectCompMaxRatio so
// one trusted comparable can pull the estimate toward itself without ever
// fully overriding the market average.
func DirectCompRatio(s Strategy, target, direct *models.Property, comps []*models.Property, now time.Time) float64 {
	if len(comps) == 0 {
		return 0
	}

	weights := ComputeWeights(s, target, comps, now)
	total := 0.0
	var directWeight float64
	found := false
	for _, w := range weights {
		total += w.Weight
		if w.CompID == direct.ID {
			directWeight = w.Weight
			found = true
		}
	}
	if !found {
		directWeight = s.rawWeight(target, direct, now)
	}

	avg := total / float64(len(comps))
	if avg <= 0 || directWeight <= 0 {
		return 0
	}

	ratio := directWeight / (directWeight + avg)
	if ratio > DirectCompMaxRatio {
		ratio = DirectCompMaxRatio
	}
	return ratio
}

// HeatIntensities maps weights onto a 0-100 scale for the map collaborator,
// with the heaviest comp pinned at 100.
func HeatIntensities(weights []CompWeight) []float64 {
	out := make([]float64, len(weights))
	maxW := 0.0
	for _, w := range weights {
		if w.Weight > maxW {
			maxW = w.Weight
		}
	}
	if maxW <= 0 {
		return out
	}
	for i, w := range weights {
		out[i] = w.Weight / maxW * 100
	}
	return out
}
