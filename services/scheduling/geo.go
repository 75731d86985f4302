package scheduling

import (
	"math"

	"planora/models"
)

// Haversine returns the great-circle distance in kilometres between two
// coordinate pairs, using an Earth radius of 6371 km.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371
	dLat := (lat2 - lat1) * (math.Pi / 180)
	dLon := (lon2 - lon1) * (math.Pi / 180)
	lat1Rad := lat1 * (math.Pi / 180)
	lat2Rad := lat2 * (math.Pi / 180)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// DistanceKm returns the distance between two geo points. When both points
// lack coordinates the distance degrades to zero; when exactly one side is
// missing the calculation is rejected with ErrMissingCoordinates.
func DistanceKm(a, b models.GeoPoint) (float64, error) {
	aHas := a.HasCoordinates()
	bHas := b.HasCoordinates()
	switch {
	case aHas && bHas:
		return Haversine(a.Lat(), a.Lon(), b.Lat(), b.Lon()), nil
	case !aHas && !bHas:
		return 0, nil
	default:
		return 0, ErrMissingCoordinates
	}
}

// TravelTimeEstimator estimates transit minutes between two booking
// locations. Pluggable: deployments may swap in a routing-backed model.
type TravelTimeEstimator interface {
	Estimate(from, to models.GeoPoint) int
}

// FixedTravelTimeEstimator always returns the same estimate regardless of
// the locations. It is the default conservative floor.
type FixedTravelTimeEstimator struct {
	Minutes int
}

func (e FixedTravelTimeEstimator) Estimate(from, to models.GeoPoint) int {
	return e.Minutes
}

// DistanceTravelTimeEstimator derives transit minutes from the great-circle
// distance at an assumed average speed, never dropping below FloorMinutes.
// Points with missing coordinates fall back to the floor.
type DistanceTravelTimeEstimator struct {
	SpeedKmh     float64
	FloorMinutes int
}

func (e DistanceTravelTimeEstimator) Estimate(from, to models.GeoPoint) int {
	if e.SpeedKmh <= 0 {
		return e.FloorMinutes
	}
	dist, err := DistanceKm(from, to)
	if err != nil {
		return e.FloorMinutes
	}
	minutes := int(math.Ceil(dist / e.SpeedKmh * 60))
	if minutes < e.FloorMinutes {
		return e.FloorMinutes
	}
	return minutes
}
