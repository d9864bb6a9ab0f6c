// Package geo computes great-circle distances between coordinates.
package geo

import (
	"math"

	"github.com/amishk599/jobradius/internal/model"
)

// EarthRadiusMiles is the mean Earth radius used by DistanceMiles.
const EarthRadiusMiles = 3959.0

// DistanceMiles returns the Haversine distance between a and b in miles.
func DistanceMiles(a, b model.GeoPoint) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push h a hair past 1 for antipodal points.
	h = math.Min(h, 1)
	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Within reports whether b lies at most radiusMiles from a.
func Within(a, b model.GeoPoint, radiusMiles float64) bool {
	return DistanceMiles(a, b) <= radiusMiles
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
