package availabilityRepo

import (
	"time"

	"planora/models"
)

// AvailabilityRepository defines lookups over agents' recurring weekly
// availability windows.
type AvailabilityRepository interface {
	Create(window *models.AvailabilityWindow) error
	ListByAgent(agentID string) ([]models.AvailabilityWindow, error)

	// FindForDayAndTime returns a window for the agent on the given weekday
	// that fully covers [startMin, endMin] in minutes from midnight, or nil
	// when no window covers the range.
	FindForDayAndTime(agentID string, day time.Weekday, startMin, endMin int) (*models.AvailabilityWindow, error)

	DeleteByAgent(agentID string) error
}
