package models

import "time"

// BookingStatus enumerates the lifecycle states of a booking.
type BookingStatus string

const (
	BookingScheduled  BookingStatus = "scheduled"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Booking represents a scheduled, location-bound service engagement
// between a client and an agent.
type Booking struct {
	ID                string        `bson:"_id" json:"id"`
	AgentID           string        `bson:"agent_id" json:"agentId"`
	ClientID          string        `bson:"client_id" json:"clientId"`
	ServiceCategory   string        `bson:"service_category" json:"serviceCategory"`
	Start             time.Time     `bson:"start" json:"start"`
	End               time.Time     `bson:"end" json:"end"`
	Address           string        `bson:"address" json:"address"`
	LocationGeo       GeoPoint      `bson:"location_geo" json:"locationGeo"`
	Status            BookingStatus `bson:"status" json:"status"`
	IsReplacement     bool          `bson:"is_replacement" json:"isReplacement"`
	ReplacementReason string        `bson:"replacement_reason,omitempty" json:"replacementReason,omitempty"`
	CreatedAt         time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Duration returns the booked length of the engagement.
func (b Booking) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Upcoming reports whether the booking is still ahead of now and not yet
// done or cancelled.
func (b Booking) Upcoming(now time.Time) bool {
	if !b.Start.After(now) {
		return false
	}
	return b.Status == BookingScheduled || b.Status == BookingConfirmed
}

// CountsTowardSchedule reports whether the booking occupies the agent's
// calendar. Cancelled bookings do not.
func (b Booking) CountsTowardSchedule() bool {
	return b.Status != BookingCancelled
}
