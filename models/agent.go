package models

import "time"

// Agent represents a service provider who fulfils bookings.
type Agent struct {
	ID                string    `bson:"_id" json:"id"`
	Name              string    `bson:"name" json:"name"`
	Email             string    `bson:"email" json:"email,omitempty"`
	Phone             string    `bson:"phone" json:"phone,omitempty"`
	Address           string    `bson:"address" json:"address,omitempty"`
	LocationGeo       GeoPoint  `bson:"location_geo" json:"locationGeo"`
	ServiceRadiusKm   float64   `bson:"service_radius_km" json:"serviceRadiusKm"`
	ServiceCategories []string  `bson:"service_categories" json:"serviceCategories"`
	Approved          bool      `bson:"approved" json:"approved"`
	Active            bool      `bson:"active" json:"active"`
	CompletedBookings int       `bson:"completed_bookings" json:"completedBookings"`
	Rating            float64   `bson:"rating" json:"rating"` // 0–5 platform scale
	FCMToken          string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updated_at" json:"updatedAt"`
}

// OffersCategory reports whether the agent offers the given service category.
func (a Agent) OffersCategory(category string) bool {
	for _, c := range a.ServiceCategories {
		if c == category {
			return true
		}
	}
	return false
}
