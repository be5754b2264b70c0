package geometry

import (
	"math"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/sirupsen/logrus"

	"compstone/server/config"
	"compstone/server/internal/models"
)

const metersToFeet = 3.28084

type MarketAreaBuilder struct {
	logger *logrus.Logger
}

func NewMarketAreaBuilder(logger *logrus.Logger) *MarketAreaBuilder {
	return &MarketAreaBuilder{logger: logger}
}

func sortPointsByAngle(points []orb.Point, anchor orb.Point) {
	sort.Slice(points, func(i, j int) bool {
		angleI := math.Atan2(points[i][1]-anchor[1], points[i][0]-anchor[0])
		angleJ := math.Atan2(points[j][1]-anchor[1], points[j][0]-anchor[0])
		return angleI < angleJ
	})
}

func generateConvexHull(points []orb.Point) orb.Ring {
	if len(points) < 3 {
		return nil
	}

	// Find the leftmost point (lowest longitude, then latitude)
	leftmostIdx := 0
	for i := 1; i < len(points); i++ {
		if points[i][0] < points[leftmostIdx][0] ||
			(points[i][0] == points[leftmostIdx][0] && points[i][1] < points[leftmostIdx][1]) {
			leftmostIdx = i
		}
	}
	points[0], points[leftmostIdx] = points[leftmostIdx], points[0]

	// Sort remaining points by angle around the anchor
	sortPointsByAngle(points[1:], points[0])

	// Graham scan
	hull := []orb.Point{points[0], points[1]}
	for i := 2; i < len(points); i++ {
		for len(hull) > 1 {
			n := len(hull)
			v1x := hull[n-1][0] - hull[n-2][0]
			v1y := hull[n-1][1] - hull[n-2][1]
			v2x := points[i][0] - hull[n-2][0]
			v2y := points[i][1] - hull[n-2][1]
			cross := v1x*v2y - v1y*v2x

			if cross >= 0 {
				break
			}
			hull = hull[:n-1]
		}
		hull = append(hull, points[i])
	}

	// Close the ring
	if len(hull) > 2 {
		hull = append(hull, hull[0])
	}

	return orb.Ring(hull)
}

// BuildMarketArea generates the convex hull around every comp that has
// coordinates and returns it as a GeoJSON feature collection for the map
// overlay. Returns an empty collection when fewer than three comps have
// been geocoded.
func (b *MarketAreaBuilder) BuildMarketArea(comps []*models.Property) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	var points []orb.Point
	seen := make(map[orb.Point]bool)
	for _, c := range comps {
		if !c.HasCoordinates() {
			continue
		}
		p := orb.Point{*c.Longitude, *c.Latitude}
		if !seen[p] {
			points = append(points, p)
			seen[p] = true
		}
	}

	if len(points) < 3 {
		b.logger.Warnf("Not enough geocoded comps for a market area (have %d, need 3)", len(points))
		return fc
	}

	hull := generateConvexHull(points)
	if hull == nil {
		return fc
	}

	feature := geojson.NewFeature(orb.Polygon{hull})
	feature.Properties = geojson.Properties{
		"point_count":   len(points),
		"geometry_type": "hull",
		"hull_type":     "convex",
		"generated":     time.Now().Format(time.RFC3339),
	}
	fc.Append(feature)

	return fc
}

// DistanceFeet returns the great-circle distance between two coordinate
// pairs in feet.
func DistanceFeet(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.Distance(orb.Point{lon1, lat1}, orb.Point{lon2, lat2}) * metersToFeet
}

// NearestAmenityFeet returns the distance in feet from the property to the
// closest amenity in the slice. The second return is false when the
// property has no coordinates or the slice is empty.
func NearestAmenityFeet(p *models.Property, amenities []config.Amenity) (float64, bool) {
	if !p.HasCoordinates() || len(amenities) == 0 {
		return 0, false
	}

	nearest := math.Inf(1)
	for _, a := range amenities {
		d := DistanceFeet(*p.Latitude, *p.Longitude, a.Latitude, a.Longitude)
		if d < nearest {
			nearest = d
		}
	}
	return nearest, true
}
