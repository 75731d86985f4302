package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

// HasCoordinates reports whether the point carries a usable coordinate pair.
func (p GeoPoint) HasCoordinates() bool {
	return len(p.Coordinates) >= 2
}

// Lat returns the latitude, or 0 when coordinates are absent.
func (p GeoPoint) Lat() float64 {
	if !p.HasCoordinates() {
		return 0
	}
	return p.Coordinates[1]
}

// Lon returns the longitude, or 0 when coordinates are absent.
func (p GeoPoint) Lon() float64 {
	if !p.HasCoordinates() {
		return 0
	}
	return p.Coordinates[0]
}
