package bookingRepo

import (
	"errors"
	"time"

	"planora/models"
)

// ErrNotFound is returned when no booking matches the given ID.
var ErrNotFound = errors.New("booking not found")

// BookingRepository defines calendar queries and mutations for bookings.
// Cancelled bookings are excluded from every calendar query.
type BookingRepository interface {
	Create(booking *models.Booking) error
	GetByID(bookingID string) (*models.Booking, error)

	// FindByAgentAndPeriod returns the agent's non-cancelled bookings that
	// overlap the [from, to) window, sorted by start time ascending.
	FindByAgentAndPeriod(agentID string, from, to time.Time) ([]models.Booking, error)

	// FindOverlapping returns the agent's non-cancelled bookings overlapping
	// [start, end). excludeID, when non-empty, omits that booking so a
	// reschedule does not collide with itself.
	FindOverlapping(agentID string, start, end time.Time, excludeID string) ([]models.Booking, error)

	// FindPreviousBooking returns the agent's latest non-cancelled booking
	// ending at or before the given time on the same calendar day, or nil
	// when the day has no earlier booking.
	FindPreviousBooking(agentID string, before time.Time) (*models.Booking, error)

	// ReassignAgent atomically moves a booking to a new agent and marks it
	// as a replacement with the given reason.
	ReassignAgent(bookingID, newAgentID, reason string) error

	// RevertAgent restores the booking's original agent and clears the
	// replacement markers.
	RevertAgent(bookingID, originalAgentID string) error

	UpdateStatus(bookingID string, status models.BookingStatus) error
	UpdatePeriod(bookingID string, start, end time.Time) error

	// DeleteOlderThan removes bookings that ended before the cutoff and
	// returns the number deleted. Used by the nightly retention sweep.
	DeleteOlderThan(cutoff time.Time) (int64, error)
}
