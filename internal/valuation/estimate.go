package valuation

import (
	"time"

	"compstone/server/internal/models"
)

// Fixed mixing ratio between the building-based and total-area-based
// price-per-area models.
const (
	MethodAWeight = 0.6
	MethodBWeight = 0.4
)

// Interval is a confidence band around the blended estimate.
type Interval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// MethodEstimate is one price-per-area model applied to the target's area:
// Method A uses floors × building footprint and the building $/SQFT series,
// Method B uses lot + building SQFT and the total $/SQFT series.
type MethodEstimate struct {
	Area         float64  `json:"area_sqft"`
	Mean         float64  `json:"mean"`
	Median       float64  `json:"median"`
	Band68       Interval `json:"band_68"`
	Band95       Interval `json:"band_95"`
	PricePerSQFT Summary  `json:"price_per_sqft"`
}

// DirectCompEstimate anchors the market estimate on the single flagged
// direct comp, blended at up to DirectCompMaxRatio.
type DirectCompEstimate struct {
	CompID            int64   `json:"comp_id"`
	Ratio             float64 `json:"ratio"`
	BuildingPriceSQFT float64 `json:"building_price_sqft"`
	TotalPriceSQFT    float64 `json:"total_price_sqft"`
	Estimate          float64 `json:"estimate"`
}

// Estimate is the final value object for the estimate-display panel.
type Estimate struct {
	Blended       float64        `json:"blended"`
	BlendedMedian float64        `json:"blended_median"`
	Band68        Interval       `json:"band_68"`
	Band95        Interval       `json:"band_95"`
	MethodA       MethodEstimate `json:"method_a"`
	MethodB       MethodEstimate `json:"method_b"`
	CompCount     int            `json:"comp_count"`

	// HighInfluence restricts the blend to comps above the 150%-of-average
	// weight threshold; omitted when no comp qualifies or the strategy is
	// simple.
	HighInfluence *Estimate `json:"high_influence,omitempty"`

	// DirectComp is present only while a direct comp is flagged.
	DirectComp *DirectCompEstimate `json:"direct_comp,omitempty"`
}

// BuildEstimate blends the two per-area models over the given comps and
// their weights. The comps slice must be the included, aggregation-valid
// set with derived unit prices already populated; weights must be parallel
// to it. An empty set yields nil.
func BuildEstimate(target *models.Property, comps []*models.Property, weights []CompWeight) *Estimate {
	if len(comps) == 0 {
		return nil
	}

	building := make([]float64, len(comps))
	total := make([]float64, len(comps))
	raw := make([]float64, len(comps))
	for i, c := range comps {
		building[i] = c.BuildingPriceSQFT
		total[i] = c.TotalPriceSQFT
		if i < len(weights) {
			raw[i] = weights[i].Weight
		}
	}

	sumA := Summarize(building, raw)
	sumB := Summarize(total, raw)
	areaA := target.FloorArea()
	areaB := target.TotalSQFT()

	methodA := methodEstimate(areaA, sumA)
	methodB := methodEstimate(areaB, sumB)

	// Interval bounds are blends of the already-blended per-method bounds,
	// not intervals recomputed from blended raw values.
	return &Estimate{
		Blended:       blend(methodA.Mean, methodB.Mean),
		BlendedMedian: blend(methodA.Median, methodB.Median),
		Band68: Interval{
			Low:  blend(methodA.Band68.Low, methodB.Band68.Low),
			High: blend(methodA.Band68.High, methodB.Band68.High),
		},
		Band95: Interval{
			Low:  blend(methodA.Band95.Low, methodB.Band95.Low),
			High: blend(methodA.Band95.High, methodB.Band95.High),
		},
		MethodA:   methodA,
		MethodB:   methodB,
		CompCount: len(comps),
	}
}

func methodEstimate(area float64, psf Summary) MethodEstimate {
	return MethodEstimate{
		Area:   area,
		Mean:   area * psf.Mean,
		Median: area * psf.Median,
		Band68: Interval{
			Low:  area * (psf.Mean - psf.StdDev),
			High: area * (psf.Mean + psf.StdDev),
		},
		Band95: Interval{
			Low:  area * (psf.Mean - 2*psf.StdDev),
			High: area * (psf.Mean + 2*psf.StdDev),
		},
		PricePerSQFT: psf,
	}
}

func blend(a, b float64) float64 {
	return MethodAWeight*a + MethodBWeight*b
}

// BuildDirectCompEstimate linearly interpolates the direct comp's own
// per-area prices with the market averages at the strategy-specific ratio,
// then applies the standard 0.6/0.4 area blend to the target.
func BuildDirectCompEstimate(s Strategy, target, direct *models.Property, comps []*models.Property, weights []CompWeight, now time.Time) *DirectCompEstimate {
	if len(comps) == 0 {
		return nil
	}

	building := make([]float64, len(comps))
	total := make([]float64, len(comps))
	raw := make([]float64, len(comps))
	for i, c := range comps {
		building[i] = c.BuildingPriceSQFT
		total[i] = c.TotalPriceSQFT
		if i < len(weights) {
			raw[i] = weights[i].Weight
		}
	}

	ratio := DirectCompRatio(s, target, direct, comps, now)
	marketBuilding := Summarize(building, raw).Mean
	marketTotal := Summarize(total, raw).Mean

	blendedBuilding := direct.BuildingPriceSQFT*ratio + marketBuilding*(1-ratio)
	blendedTotal := direct.TotalPriceSQFT*ratio + marketTotal*(1-ratio)

	return &DirectCompEstimate{
		CompID:            direct.ID,
		Ratio:             ratio,
		BuildingPriceSQFT: blendedBuilding,
		TotalPriceSQFT:    blendedTotal,
		Estimate: blend(
			target.FloorArea()*blendedBuilding,
			target.TotalSQFT()*blendedTotal,
		),
	}
}
