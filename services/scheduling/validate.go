package scheduling

import (
	"sort"

	"planora/models"
)

// ValidateSchedule batch-validates proposed bookings for one agent.
// Proposals are walked chronologically; each is evaluated against the
// committed calendar plus every proposal already accepted in this batch, and
// joins that set only when its evaluation comes back clean. Error indices
// refer to positions in the caller's input slice.
func (d *DefaultConflictDetector) ValidateSchedule(agentID string, proposals []BookingProposal) (*models.ScheduleValidation, error) {
	type indexed struct {
		index    int
		proposal BookingProposal
	}
	ordered := make([]indexed, len(proposals))
	for i, p := range proposals {
		p.AgentID = agentID
		ordered[i] = indexed{index: i, proposal: p}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].proposal.Start.Before(ordered[j].proposal.Start)
	})

	result := &models.ScheduleValidation{Valid: true}
	var accepted []models.Booking

	for _, item := range ordered {
		conflicts, err := d.evaluateProposal(item.proposal, accepted)
		if err != nil {
			return nil, err
		}
		if len(conflicts) == 0 {
			accepted = append(accepted, item.proposal.asBooking())
			result.ValidCount++
			continue
		}
		sortConflicts(conflicts)
		result.Valid = false
		result.Errors = append(result.Errors, models.BookingValidationError{
			Index:     item.index,
			Start:     item.proposal.Start,
			End:       item.proposal.End,
			Conflicts: conflicts,
		})
	}

	return result, nil
}
