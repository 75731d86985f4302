package scheduling

import (
	"fmt"
	"time"

	"planora/models"
)

// coveringWindow looks up a recurring window on the start's weekday that
// fully covers [start, end). A range that runs past midnight can never be
// covered by a single-day window and reports no coverage.
func (d *DefaultConflictDetector) coveringWindow(agentID string, start, end time.Time) (*models.AvailabilityWindow, error) {
	startMin := minutesIntoDay(start)
	endMin := startMin + int(end.Sub(start).Minutes())
	if endMin > 24*60 {
		return nil, nil
	}
	window, err := d.AvailabilityRepo.FindForDayAndTime(agentID, start.Weekday(), startMin, endMin)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability for agent %s: %w", agentID, err)
	}
	return window, nil
}

// availabilityConflict checks one time range against the agent's recurring
// windows. Returns nil when a window covers it.
func (d *DefaultConflictDetector) availabilityConflict(agentID string, start, end time.Time, bookingID string) (*models.Conflict, error) {
	window, err := d.coveringWindow(agentID, start, end)
	if err != nil {
		return nil, err
	}
	if window != nil {
		return nil, nil
	}

	details := map[string]any{
		"day_of_week": start.Weekday().String(),
		"start":       start.Format("15:04"),
		"end":         end.Format("15:04"),
	}
	if bookingID != "" {
		details["booking_id"] = bookingID
	}
	return &models.Conflict{
		Type:     models.ConflictAvailabilityMissing,
		Severity: models.SeverityHigh,
		Date:     start,
		Message: fmt.Sprintf("no availability window covers %s %s-%s",
			start.Weekday(), start.Format("15:04"), end.Format("15:04")),
		Details: details,
	}, nil
}

// availabilityConflicts checks each booking against the agent's windows.
func (d *DefaultConflictDetector) availabilityConflicts(agentID string, bookings []models.Booking) ([]models.Conflict, error) {
	var conflicts []models.Conflict
	for _, b := range bookings {
		c, err := d.availabilityConflict(agentID, b.Start, b.End, b.ID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			conflicts = append(conflicts, *c)
		}
	}
	return conflicts, nil
}
