package scheduling

import (
	"math"
	"testing"

	"planora/models"
)

func TestHaversineIdentity(t *testing.T) {
	if got := Haversine(48.8566, 2.3522, 48.8566, 2.3522); got != 0 {
		t.Fatalf("Haversine(p, p): got %v, want 0", got)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	ab := Haversine(48.8566, 2.3522, 45.7640, 4.8357)
	ba := Haversine(45.7640, 4.8357, 48.8566, 2.3522)
	if math.Abs(ab-ba) > 1e-9 {
		t.Fatalf("Haversine asymmetric: ab %v, ba %v", ab, ba)
	}
}

func TestHaversineOneDegreeLatitude(t *testing.T) {
	// One degree of latitude spans roughly 111 km.
	got := Haversine(48.0, 2.0, 49.0, 2.0)
	if math.Abs(got-111.19) > 0.5 {
		t.Fatalf("Haversine over 1 degree latitude: got %v km, want ~111.19", got)
	}
}

func TestDistanceKmDegradedModes(t *testing.T) {
	paris := models.NewGeoPoint(48.8566, 2.3522)
	none := models.GeoPoint{}

	dist, err := DistanceKm(none, none)
	if err != nil || dist != 0 {
		t.Fatalf("DistanceKm with both sides missing: got (%v, %v), want (0, nil)", dist, err)
	}

	if _, err := DistanceKm(paris, none); err != ErrMissingCoordinates {
		t.Fatalf("DistanceKm with one side missing: got %v, want ErrMissingCoordinates", err)
	}
	if _, err := DistanceKm(none, paris); err != ErrMissingCoordinates {
		t.Fatalf("DistanceKm with one side missing: got %v, want ErrMissingCoordinates", err)
	}
}

func TestFixedTravelTimeEstimator(t *testing.T) {
	est := FixedTravelTimeEstimator{Minutes: 15}
	a := models.NewGeoPoint(48.8566, 2.3522)
	b := models.NewGeoPoint(45.7640, 4.8357)
	if got := est.Estimate(a, b); got != 15 {
		t.Fatalf("fixed estimate: got %d, want 15", got)
	}
	if got := est.Estimate(a, a); got != 15 {
		t.Fatalf("fixed estimate for same point: got %d, want 15", got)
	}
}

func TestDistanceTravelTimeEstimatorFloor(t *testing.T) {
	est := DistanceTravelTimeEstimator{SpeedKmh: 30, FloorMinutes: 15}

	a := models.NewGeoPoint(48.8566, 2.3522)
	near := models.NewGeoPoint(48.8570, 2.3530)
	if got := est.Estimate(a, near); got != 15 {
		t.Fatalf("short hop estimate: got %d, want floor 15", got)
	}

	// ~111 km at 30 km/h is ~222 minutes.
	far := models.NewGeoPoint(49.8566, 2.3522)
	got := est.Estimate(a, far)
	if got < 210 || got > 235 {
		t.Fatalf("long trip estimate: got %d, want ~222", got)
	}

	// Missing coordinates fall back to the floor.
	if got := est.Estimate(a, models.GeoPoint{}); got != 15 {
		t.Fatalf("estimate with missing coordinates: got %d, want floor 15", got)
	}
}
