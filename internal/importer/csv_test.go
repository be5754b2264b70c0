package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compstone/server/internal/models"
)

const sampleCSV = `address,property_width,property_depth,building_width,building_depth,stories,floors,original_sale_price,sale_date,renovated,original_details,tax_class,occupancy
104 Brooklyn Ave,20,100,20,50,2,2,"1,200,000",6/1/2023,Yes,No,1,Owner
22 Kingston Ave,25,100,22,55,3,3,950000,3/15/2022,No,Yes,1,Tenant
,10,10,10,10,1,1,100,1/1/2020,No,No,1,
350 Albany Ave,18,90,18,45,2,2,800000,,,,1,
`

func TestParseComps(t *testing.T) {
	comps, err := ParseComps(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	// The empty-address row is skipped
	require.Len(t, comps, 3)

	first := comps[0]
	assert.Equal(t, "104 Brooklyn Ave", first.Address)
	assert.Equal(t, 20.0, first.PropertyWidth)
	assert.Equal(t, 100.0, first.PropertyDepth)
	assert.Equal(t, 2, first.Stories)
	assert.Equal(t, 2, first.Floors)
	// Thousands separators are tolerated
	assert.Equal(t, 1_200_000.0, first.OriginalSalePrice)
	assert.Equal(t, "6/1/2023", first.SaleDate)
	assert.Equal(t, models.RenovatedYes, first.Renovated)
	assert.True(t, first.Included)

	// Missing fields fall back to safe defaults
	last := comps[2]
	assert.Equal(t, models.UnknownSaleDate, last.SaleDate)
	assert.Equal(t, models.RenovatedNo, last.Renovated)
	assert.Equal(t, models.DetailsUnknown, last.OriginalDetails)
}

func TestParseComps_HeaderVariants(t *testing.T) {
	// Header matching is case-insensitive and whitespace-tolerant, and only
	// the address column is required
	csv := "Address, SALE_DATE\n104 Brooklyn Ave,6/1/2023\n"
	comps, err := ParseComps(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Equal(t, "6/1/2023", comps[0].SaleDate)
	assert.Equal(t, models.RenovatedNo, comps[0].Renovated)
	assert.Equal(t, models.DetailsUnknown, comps[0].OriginalDetails)
}

func TestParseComps_MissingAddressColumn(t *testing.T) {
	csv := "price,sale_date\n100,6/1/2023\n"
	_, err := ParseComps(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address")
}

func TestParseComps_BadNumbersDefaultToZero(t *testing.T) {
	csv := "address,stories,original_sale_price\n104 Brooklyn Ave,two,not-a-price\n"
	comps, err := ParseComps(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.Zero(t, comps[0].Stories)
	assert.Zero(t, comps[0].OriginalSalePrice)
}

func TestParseComps_Empty(t *testing.T) {
	_, err := ParseComps(strings.NewReader(""))
	assert.Error(t, err)
}
