package models

import (
	"fmt"
	"time"
)

// AvailabilityWindow is a recurring weekly time range during which an agent
// is willing to work. Times are minutes from midnight; DayOfWeek follows
// time.Weekday (Sunday = 0).
type AvailabilityWindow struct {
	ID        string       `bson:"_id" json:"id"`
	AgentID   string       `bson:"agent_id" json:"agentId"`
	DayOfWeek time.Weekday `bson:"day_of_week" json:"dayOfWeek"`
	Start     int          `bson:"start" json:"start"`
	End       int          `bson:"end" json:"end"`
	CreatedAt time.Time    `bson:"created_at" json:"createdAt"`
}

// Covers reports whether the window fully contains [start, end], both in
// minutes from midnight.
func (w AvailabilityWindow) Covers(start, end int) bool {
	return w.Start <= start && w.End >= end
}

// Label renders the window as "HH:MM - HH:MM" for messages.
func (w AvailabilityWindow) Label() string {
	return fmt.Sprintf("%02d:%02d - %02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}
