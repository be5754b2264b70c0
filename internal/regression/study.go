package regression

import (
	"errors"
	"sort"
)

// Observation is one sold comp flattened into the explanatory variables the
// adjustment study regresses against. Amenity distances are optional; they
// exist only for comps that have been geocoded against the amenity
// landmarks.
type Observation struct {
	Address            string
	Price              float64
	LotSQFT            float64
	BuildingSQFT       float64
	Renovated          float64 // indicator, 1 or 0
	Width              float64
	TransitDistance    float64
	CommercialDistance float64
	HasAmenityDistance bool
}

// ModelReport is one rung of the study ladder: a named feature set, its
// fit, or the error that kept it from fitting (singular designs are
// reported, not dropped).
type ModelReport struct {
	Name     string
	Features []string
	Fit      *Fit
	Err      error
}

// amenityBlendWeights mixes the two distance variables into one predictor
// for the blended-amenity rung. Equal mixing until the study says otherwise.
const (
	transitBlendWeight    = 0.5
	commercialBlendWeight = 0.5
)

// RunStudy fits the progressively richer adjustment models over the
// observations and returns the reports ranked by R², best first. Models
// that need amenity distances are skipped when no observation carries them.
// The study exists to compare R² and RMSE and pick which per-unit dollar
// coefficients seed the live weighting and blending constants; it never
// runs on the interactive valuation path.
func RunStudy(obs []Observation) ([]ModelReport, error) {
	if len(obs) == 0 {
		return nil, errors.New("no observations to study")
	}

	y := make([]float64, len(obs))
	for i, o := range obs {
		y[i] = o.Price
	}

	reports := []ModelReport{
		simpleModel("lot-only", "lot_sqft", obs, y, func(o Observation) float64 { return o.LotSQFT }),
		multiModel("building+lot", []string{"building_sqft", "lot_sqft"}, obs, y,
			func(o Observation) []float64 { return []float64{o.BuildingSQFT, o.LotSQFT} }),
		multiModel("building+lot+renovation", []string{"building_sqft", "lot_sqft", "renovated"}, obs, y,
			func(o Observation) []float64 { return []float64{o.BuildingSQFT, o.LotSQFT, o.Renovated} }),
		multiModel("building+lot+renovation+width", []string{"building_sqft", "lot_sqft", "renovated", "width"}, obs, y,
			func(o Observation) []float64 { return []float64{o.BuildingSQFT, o.LotSQFT, o.Renovated, o.Width} }),
	}

	if hasAmenityDistances(obs) {
		reports = append(reports,
			multiModel("base+transit", []string{"building_sqft", "lot_sqft", "renovated", "transit_distance"}, obs, y,
				func(o Observation) []float64 {
					return []float64{o.BuildingSQFT, o.LotSQFT, o.Renovated, o.TransitDistance}
				}),
			multiModel("base+commercial", []string{"building_sqft", "lot_sqft", "renovated", "commercial_distance"}, obs, y,
				func(o Observation) []float64 {
					return []float64{o.BuildingSQFT, o.LotSQFT, o.Renovated, o.CommercialDistance}
				}),
			multiModel("base+both-amenities", []string{"building_sqft", "lot_sqft", "renovated", "transit_distance", "commercial_distance"}, obs, y,
				func(o Observation) []float64 {
					return []float64{o.BuildingSQFT, o.LotSQFT, o.Renovated, o.TransitDistance, o.CommercialDistance}
				}),
			multiModel("base+amenity-blend", []string{"building_sqft", "lot_sqft", "renovated", "amenity_blend"}, obs, y,
				func(o Observation) []float64 {
					blend := transitBlendWeight*o.TransitDistance + commercialBlendWeight*o.CommercialDistance
					return []float64{o.BuildingSQFT, o.LotSQFT, o.Renovated, blend}
				}),
		)
	}

	// Rank by R², best first; failed models sink to the bottom.
	sort.SliceStable(reports, func(i, j int) bool {
		ri, rj := -1.0, -1.0
		if reports[i].Fit != nil {
			ri = reports[i].Fit.RSquared
		}
		if reports[j].Fit != nil {
			rj = reports[j].Fit.RSquared
		}
		return ri > rj
	})

	return reports, nil
}

func hasAmenityDistances(obs []Observation) bool {
	for _, o := range obs {
		if !o.HasAmenityDistance {
			return false
		}
	}
	return true
}

func simpleModel(name, feature string, obs []Observation, y []float64, value func(Observation) float64) ModelReport {
	x := make([]float64, len(obs))
	for i, o := range obs {
		x[i] = value(o)
	}
	fit, err := SimpleRegression(x, y)
	return ModelReport{Name: name, Features: []string{feature}, Fit: fit, Err: err}
}

func multiModel(name string, features []string, obs []Observation, y []float64, row func(Observation) []float64) ModelReport {
	x := make([][]float64, len(obs))
	for i, o := range obs {
		x[i] = row(o)
	}
	fit, err := OrdinaryLeastSquares(x, y)
	return ModelReport{Name: name, Features: features, Fit: fit, Err: err}
}
