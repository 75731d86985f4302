package booking

import (
	"time"

	"planora/models"
	"planora/services/notification"
	"planora/services/scheduling"

	"go.uber.org/zap"
)

// BookingStore is the booking persistence the gate needs.
type BookingStore interface {
	Create(booking *models.Booking) error
	GetByID(bookingID string) (*models.Booking, error)
	FindByAgentAndPeriod(agentID string, from, to time.Time) ([]models.Booking, error)
	UpdateStatus(bookingID string, status models.BookingStatus) error
	UpdatePeriod(bookingID string, start, end time.Time) error
}

// ConflictProber screens a proposed booking against the agent's schedule.
// Satisfied by the conflict detector.
type ConflictProber interface {
	WouldCreateConflict(proposal scheduling.BookingProposal) ([]models.Conflict, error)
}

// ReplacementOpener starts a replacement search when an agent withdraws.
// Satisfied by the replacement service.
type ReplacementOpener interface {
	RequestReplacement(bookingID, originalAgentID, reason string) (*models.ReplacementRequest, error)
	FindAndProposeReplacement(requestID string, maxResults int) ([]models.ReplacementCandidate, error)
}

// CreateBookingInput carries everything needed to schedule a new booking.
type CreateBookingInput struct {
	ClientID        string          `json:"clientId" binding:"required"`
	AgentID         string          `json:"agentId" binding:"required"`
	ServiceCategory string          `json:"serviceCategory" binding:"required"`
	Start           time.Time       `json:"start" binding:"required"`
	End             time.Time       `json:"end" binding:"required"`
	Address         string          `json:"address"`
	LocationGeo     models.GeoPoint `json:"locationGeo"`
}

// BookingService gates booking writes behind the conflict detector: nothing
// lands on an agent's calendar with a blocking conflict, and an agent leaving
// an upcoming booking triggers the replacement flow instead of a bare
// cancellation.
type BookingService interface {
	// CreateBooking persists the booking unless the schedule checks report a
	// blocking conflict. Non-blocking conflicts are returned as warnings
	// alongside the created booking.
	CreateBooking(input CreateBookingInput) (*models.Booking, []models.Conflict, error)

	// RescheduleBooking moves a booking to a new window under the same
	// checks, ignoring the booking's own current slot.
	RescheduleBooking(bookingID string, newStart, newEnd time.Time) (*models.Booking, []models.Conflict, error)

	// CancelBooking cancels on behalf of the client. Idempotent.
	CancelBooking(bookingID, reason string) (*models.Booking, error)

	// WithdrawAgent handles an agent backing out of an upcoming booking: the
	// booking stays live and a replacement request is opened and proposed to
	// the best candidate.
	WithdrawAgent(bookingID, agentID, reason string) (*models.ReplacementRequest, []models.ReplacementCandidate, error)

	GetBooking(bookingID string) (*models.Booking, error)
	ListAgentBookings(agentID string, from, to time.Time) ([]models.Booking, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Bookings     BookingStore
	Prober       ConflictProber
	Replacements ReplacementOpener
	Notifier     notification.NotificationService
	Logger       *zap.Logger
	ReminderLead time.Duration
}

// NewBookingService wires the gate. reminderLead controls how far ahead of a
// booking the client's reminder fires; zero means the default of one day.
func NewBookingService(
	bookings BookingStore,
	prober ConflictProber,
	replacements ReplacementOpener,
	notifier notification.NotificationService,
	logger *zap.Logger,
	reminderLead time.Duration,
) *DefaultBookingService {
	if reminderLead <= 0 {
		reminderLead = 24 * time.Hour
	}
	return &DefaultBookingService{
		Bookings:     bookings,
		Prober:       prober,
		Replacements: replacements,
		Notifier:     notifier,
		Logger:       logger,
		ReminderLead: reminderLead,
	}
}
