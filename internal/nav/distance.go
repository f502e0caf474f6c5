// Package nav derives navigational quantities from logged positions and times:
// great-circle distance, elapsed time and average speed per segment, and the
// aggregate totals of a whole voyage.
//
// Every value the package returns is rounded to two decimals with
// round-half-up (ties away from zero), matching how the values are stored.
// All functions are pure and safe for concurrent use.
package nav

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/pkordes/sailing-logbook/internal/domain"
)

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0

	// MetersPerNauticalMile is the international nautical mile.
	MetersPerNauticalMile = 1852.0
)

// HaversineMeters calculates the great-circle distance in meters between two
// points on the Earth's surface given in decimal degrees.
//
// Formula:
// a = sin²(Δφ/2) + cos φ1 ⋅ cos φ2 ⋅ sin²(Δλ/2)
// c = 2 ⋅ atan2( √a, √(1−a) )
// d = R ⋅ c
//
// Input ranges are not validated.
func HaversineMeters(a, b domain.Position) float64 {
	lat1 := degreesToRadians(a.Latitude)
	lon1 := degreesToRadians(a.Longitude)
	lat2 := degreesToRadians(b.Latitude)
	lon2 := degreesToRadians(b.Longitude)

	deltaLat := lat2 - lat1
	deltaLon := lon2 - lon1

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	// Rounding error can push h just past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMeters * c
}

// DistanceNM returns the great-circle distance between a and b in nautical
// miles, rounded to two decimals. It returns NaN when either position holds a
// non-finite coordinate.
func DistanceNM(a, b domain.Position) float64 {
	d, err := distanceNM(a, b)
	if err != nil {
		return math.NaN()
	}
	return d.InexactFloat64()
}

func distanceNM(a, b domain.Position) (decimal.Decimal, error) {
	nm, err := round2(HaversineMeters(a, b) / MetersPerNauticalMile)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("distance: %w", err)
	}
	return nm, nil
}

// degreesToRadians converts degrees to radians
func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
