package scheduling

import (
	"fmt"
	"sort"
	"time"

	"planora/models"
)

// WouldCreateConflict evaluates one proposed booking against the agent's
// committed calendar. Runs on the interactive booking path: overlap,
// availability, travel from the preceding booking, daily cap, and break
// checks only.
func (d *DefaultConflictDetector) WouldCreateConflict(proposal BookingProposal) ([]models.Conflict, error) {
	conflicts, err := d.evaluateProposal(proposal, nil)
	if err != nil {
		return nil, err
	}
	sortConflicts(conflicts)
	return conflicts, nil
}

// CheckAvailabilityAndOverlap runs only the availability and overlap checks
// for an exact window. Replacement candidate screening uses this cheaper
// subset.
func (d *DefaultConflictDetector) CheckAvailabilityAndOverlap(agentID string, start, end time.Time, excludeBookingID string) ([]models.Conflict, error) {
	if _, err := NewTimeInterval(start, end); err != nil {
		return nil, err
	}

	overlapping, err := d.BookingRepo.FindOverlapping(agentID, start, end, excludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overlapping bookings for agent %s: %w", agentID, err)
	}

	var conflicts []models.Conflict
	for _, b := range overlapping {
		conflicts = append(conflicts, doubleBookingConflict(b, start))
	}

	availability, err := d.availabilityConflict(agentID, start, end, "")
	if err != nil {
		return nil, err
	}
	if availability != nil {
		conflicts = append(conflicts, *availability)
	}

	sortConflicts(conflicts)
	return conflicts, nil
}

// evaluateProposal runs the single-booking checks. extra carries bookings
// accepted earlier in a batch validation; they count as committed.
func (d *DefaultConflictDetector) evaluateProposal(proposal BookingProposal, extra []models.Booking) ([]models.Conflict, error) {
	interval, err := NewTimeInterval(proposal.Start, proposal.End)
	if err != nil {
		return nil, err
	}

	var conflicts []models.Conflict

	// Overlap against committed bookings, excluding a rescheduled self.
	overlapping, err := d.BookingRepo.FindOverlapping(proposal.AgentID, proposal.Start, proposal.End, proposal.ExcludeBookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch overlapping bookings for agent %s: %w", proposal.AgentID, err)
	}
	for _, b := range overlapping {
		conflicts = append(conflicts, doubleBookingConflict(b, proposal.Start))
	}
	for _, b := range extra {
		if intervalOf(b).Overlaps(interval) {
			conflicts = append(conflicts, doubleBookingConflict(b, proposal.Start))
		}
	}

	availability, err := d.availabilityConflict(proposal.AgentID, proposal.Start, proposal.End, "")
	if err != nil {
		return nil, err
	}
	if availability != nil {
		conflicts = append(conflicts, *availability)
	}

	proposed := proposal.asBooking()

	// Travel from the booking immediately preceding the proposed start.
	prev, err := d.previousBooking(proposal, extra)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		if c := d.travelConflictBetween(*prev, proposed); c != nil {
			conflicts = append(conflicts, *c)
		}
	}

	// Daily cap and break checks over the merged day.
	day, err := d.mergedDay(proposal, extra)
	if err != nil {
		return nil, err
	}
	conflicts = append(conflicts, dailyCapConflict(day, bookingMinutes(proposed), d.Rules)...)
	conflicts = append(conflicts, breakConflicts(day, d.Rules)...)

	return conflicts, nil
}

// asBooking views the proposal as a not-yet-persisted booking.
func (p BookingProposal) asBooking() models.Booking {
	return models.Booking{
		ID:          "proposed",
		AgentID:     p.AgentID,
		Start:       p.Start,
		End:         p.End,
		LocationGeo: p.LocationGeo,
	}
}

// doubleBookingConflict reports a proposed window colliding with an
// existing booking.
func doubleBookingConflict(existing models.Booking, proposedStart time.Time) models.Conflict {
	return models.Conflict{
		Type:     models.ConflictDoubleBooking,
		Severity: models.SeverityCritical,
		Date:     proposedStart,
		Message:  fmt.Sprintf("proposed time collides with booking %s", existing.ID),
		Details: map[string]any{
			"booking_id":    existing.ID,
			"booking_start": existing.Start,
			"booking_end":   existing.End,
		},
	}
}

// previousBooking finds the latest booking ending at or before the proposed
// start on the same day, across both committed and batch-accepted bookings.
func (d *DefaultConflictDetector) previousBooking(proposal BookingProposal, extra []models.Booking) (*models.Booking, error) {
	prev, err := d.BookingRepo.FindPreviousBooking(proposal.AgentID, proposal.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch previous booking for agent %s: %w", proposal.AgentID, err)
	}
	if prev != nil && prev.ID == proposal.ExcludeBookingID {
		prev = nil
	}
	for i := range extra {
		b := extra[i]
		if !sameDay(b.Start, proposal.Start) || b.End.After(proposal.Start) {
			continue
		}
		if prev == nil || b.End.After(prev.End) {
			prev = &b
		}
	}
	return prev, nil
}

// mergedDay returns the proposed booking's day with the proposal inserted,
// sorted by start. A rescheduled booking's old slot is dropped.
func (d *DefaultConflictDetector) mergedDay(proposal BookingProposal, extra []models.Booking) ([]models.Booking, error) {
	dayStart := dayOf(proposal.Start)
	dayEnd := dayStart.AddDate(0, 0, 1)

	existing, err := d.BookingRepo.FindByAgentAndPeriod(proposal.AgentID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch day bookings for agent %s: %w", proposal.AgentID, err)
	}

	day := make([]models.Booking, 0, len(existing)+len(extra)+1)
	for _, b := range existing {
		if b.ID != proposal.ExcludeBookingID {
			day = append(day, b)
		}
	}
	for _, b := range extra {
		if sameDay(b.Start, proposal.Start) {
			day = append(day, b)
		}
	}
	day = append(day, proposal.asBooking())

	sort.SliceStable(day, func(i, j int) bool { return day[i].Start.Before(day[j].Start) })
	return day, nil
}

// dailyCapConflict checks the merged day total against the daily cap.
// proposedMinutes is reported so callers can see the proposal's share.
func dailyCapConflict(day []models.Booking, proposedMinutes int, rules Rules) []models.Conflict {
	if len(day) == 0 {
		return nil
	}
	total := 0
	for _, b := range day {
		total += bookingMinutes(b)
	}
	if total <= rules.MaxDailyMinutes {
		return nil
	}
	date := dayOf(day[0].Start)
	return []models.Conflict{{
		Type:     models.ConflictMaxHoursExceeded,
		Severity: models.SeverityHigh,
		Date:     date,
		Message: fmt.Sprintf("%d worked minutes on %s would exceed the daily cap of %d",
			total, date.Format("2006-01-02"), rules.MaxDailyMinutes),
		Details: map[string]any{
			"period":           "day",
			"worked_minutes":   total,
			"proposed_minutes": proposedMinutes,
			"cap_minutes":      rules.MaxDailyMinutes,
			"excess_minutes":   total - rules.MaxDailyMinutes,
		},
	}}
}
