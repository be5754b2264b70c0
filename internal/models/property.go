package models

// Renovation states for a property record.
const (
	RenovatedYes = "Yes"
	RenovatedNo  = "No"
)

// Original-detail states for a property record.
const (
	DetailsYes     = "Yes"
	DetailsPartial = "Partial"
	DetailsNo      = "No"
	DetailsUnknown = "Unknown"
)

// UnknownSaleDate is the sentinel used when a comp's sale date is not on record.
const UnknownSaleDate = "unknown"

// Property is the shared record shape for the valuation target and its
// comparable sales. Sale facts are only populated on comps; the target has
// no historical sale and is never appreciation-adjusted.
type Property struct {
	ID      int64  `json:"id" gorm:"primaryKey;column:id"`
	Address string `json:"address" gorm:"column:address"`

	// Lot and building footprint, in feet.
	PropertyWidth float64 `json:"property_width_feet" gorm:"column:property_width"`
	PropertyDepth float64 `json:"property_depth_feet" gorm:"column:property_depth"`
	BuildingWidth float64 `json:"building_width_feet" gorm:"column:building_width"`
	BuildingDepth float64 `json:"building_depth_feet" gorm:"column:building_depth"`
	Stories       int     `json:"building_stories" gorm:"column:stories"`
	Floors        int     `json:"floors" gorm:"column:floors"`

	// Sale facts (comps only). SaleDate is the raw M/D/YYYY string as
	// loaded, or the "unknown" sentinel.
	OriginalSalePrice float64 `json:"original_sale_price" gorm:"column:original_sale_price"`
	SaleDate          string  `json:"sell_date" gorm:"column:sale_date"`

	// Qualitative attributes.
	Renovated       string `json:"renovated" gorm:"column:renovated"`
	OriginalDetails string `json:"original_details" gorm:"column:original_details"`
	TaxClass        string `json:"tax_class" gorm:"column:tax_class"`
	Occupancy       string `json:"occupancy" gorm:"column:occupancy"`

	// Included marks whether the comp participates in aggregation.
	Included bool `json:"included" gorm:"column:included"`

	// Coordinates feed the mapping collaborator only, never the numeric core.
	Latitude  *float64 `json:"latitude" gorm:"column:latitude"`
	Longitude *float64 `json:"longitude" gorm:"column:longitude"`

	// Derived, recomputed on every session mutation. Never persisted.
	AdjustedSalePrice  float64 `json:"adjusted_sale_price" gorm:"-"`
	AppreciationAmount float64 `json:"appreciation_amount" gorm:"-"`
	YearsAgo           float64 `json:"years_ago" gorm:"-"`
	BuildingPriceSQFT  float64 `json:"building_price_sqft" gorm:"-"`
	TotalPriceSQFT     float64 `json:"total_price_sqft" gorm:"-"`
	WeightPercent      float64 `json:"weight_percent" gorm:"-"`
	HighInfluence      bool    `json:"high_influence" gorm:"-"`
	HeatIntensity      float64 `json:"heat_intensity" gorm:"-"`
	IsDirectComp       bool    `json:"is_direct_comp" gorm:"-"`
}

// TableName maps the record onto the comps table for GORM batch writes.
func (Property) TableName() string {
	return "comps"
}

// Clone returns a deep copy of the record, coordinate pointers included.
// Recomputes rewrite the derived fields in place, so anything that reads or
// serializes a record outside the session lock works on a copy.
func (p *Property) Clone() *Property {
	out := *p
	if p.Latitude != nil {
		lat := *p.Latitude
		out.Latitude = &lat
	}
	if p.Longitude != nil {
		lng := *p.Longitude
		out.Longitude = &lng
	}
	return &out
}

// PropertySQFT returns the lot area.
func (p *Property) PropertySQFT() float64 {
	return p.PropertyWidth * p.PropertyDepth
}

// BuildingSQFT returns the building area across all stories.
func (p *Property) BuildingSQFT() float64 {
	return p.BuildingWidth * p.BuildingDepth * float64(p.Stories)
}

// FloorArea returns floors × building footprint. Some formulas use floors
// rather than stories as the multiplier; the two fields are distinct inputs
// and must not be conflated.
func (p *Property) FloorArea() float64 {
	return float64(p.Floors) * p.BuildingWidth * p.BuildingDepth
}

// TotalSQFT returns lot area plus building area.
func (p *Property) TotalSQFT() float64 {
	return p.PropertySQFT() + p.BuildingSQFT()
}

// HasCoordinates reports whether the record has been geocoded.
func (p *Property) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
