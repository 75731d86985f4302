package scheduling

import "planora/models"

// resolutionTable maps each conflict type to its ranked advisory remedies.
// Purely advisory; nothing here mutates state.
var resolutionTable = map[models.ConflictType][]models.ConflictResolution{
	models.ConflictBookingOverlap: {
		{Action: "reschedule", Description: "Move one of the overlapping bookings to a free slot", Priority: 1},
		{Action: "assign_replacement", Description: "Hand one booking to a replacement agent", Priority: 2},
		{Action: "cancel", Description: "Cancel the lower-priority booking", Priority: 3},
	},
	models.ConflictDoubleBooking: {
		{Action: "adjust_time", Description: "Pick a different time slot for the new booking", Priority: 1},
		{Action: "assign_replacement", Description: "Book a different agent for this slot", Priority: 2},
	},
	models.ConflictAvailabilityMissing: {
		{Action: "add_availability", Description: "Add an availability window covering the booking", Priority: 1},
		{Action: "adjust_time", Description: "Move the booking into an existing availability window", Priority: 2},
		{Action: "assign_replacement", Description: "Hand the booking to an available agent", Priority: 3},
	},
	models.ConflictTravelTime: {
		{Action: "adjust_time", Description: "Shift the later booking to allow enough transit time", Priority: 1},
		{Action: "assign_replacement", Description: "Assign an agent closer to the booking location", Priority: 2},
	},
	models.ConflictMaxHoursExceeded: {
		{Action: "reschedule", Description: "Move a booking to a day or week under the hour cap", Priority: 1},
		{Action: "assign_replacement", Description: "Hand excess bookings to a replacement agent", Priority: 2},
	},
	models.ConflictBreakMissing: {
		{Action: "add_break", Description: "Insert a break of at least the minimum length into the run", Priority: 1},
		{Action: "adjust_time", Description: "Move the later bookings to create a qualifying gap", Priority: 2},
	},
	models.ConflictReplacement: {
		{Action: "assign_replacement", Description: "Choose a different replacement candidate", Priority: 1},
	},
}

// SuggestConflictResolutions returns the ranked remedies for a conflict.
// Unknown types yield an empty list.
func (d *DefaultConflictDetector) SuggestConflictResolutions(conflict models.Conflict) []models.ConflictResolution {
	resolutions := resolutionTable[conflict.Type]
	out := make([]models.ConflictResolution, len(resolutions))
	copy(out, resolutions)
	return out
}
