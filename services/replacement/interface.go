package replacement

import (
	"time"

	"planora/database/repository"
	"planora/models"
	"planora/services/notification"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// BookingStore is the booking access the replacement lifecycle needs:
// lookup plus the two reassignment mutations.
type BookingStore interface {
	GetByID(bookingID string) (*models.Booking, error)
	ReassignAgent(bookingID, newAgentID, reason string) error
	RevertAgent(bookingID, originalAgentID string) error
}

// AgentDirectory resolves agents and searches the pool by service category.
type AgentDirectory interface {
	GetByID(agentID string) (*models.Agent, error)
	FindByServiceCategory(category string, near models.GeoPoint, radiusKm float64) ([]models.Agent, error)
}

// ConflictChecker screens a candidate's calendar for the booking's exact
// window. Satisfied by the conflict detector.
type ConflictChecker interface {
	CheckAvailabilityAndOverlap(agentID string, start, end time.Time, excludeBookingID string) ([]models.Conflict, error)
}

// ReplacementService owns the lifecycle of finding and confirming a
// substitute agent for a booking its original agent cannot serve.
type ReplacementService interface {
	// RequestReplacement opens a pending request for the booking. Fails with
	// ErrActiveRequestExists when the booking already has an active one.
	RequestReplacement(bookingID, originalAgentID, reason string) (*models.ReplacementRequest, error)

	// FindAvailableReplacements returns eligible candidates ranked by
	// composite score. An empty result is valid, not an error.
	FindAvailableReplacements(booking models.Booking, maxDistanceKm float64) ([]models.ReplacementCandidate, error)

	// ProposeReplacement puts a candidate forward on a pending request and
	// notifies them.
	ProposeReplacement(requestID, candidateAgentID string) (*models.ReplacementRequest, error)

	// AcceptReplacement confirms the proposed candidate: the request moves
	// to accepted and the booking is reassigned to them.
	AcceptReplacement(requestID string) (*models.ReplacementRequest, error)

	// DeclineReplacement records the candidate's refusal; the request is
	// terminal and the caller starts a fresh search.
	DeclineReplacement(requestID, reason string) (*models.ReplacementRequest, error)

	// CancelReplacement terminates a pending or accepted request. Cancelling
	// an accepted one reverts the booking to its original agent.
	CancelReplacement(requestID string) (*models.ReplacementRequest, error)

	// FindAndProposeReplacement searches, proposes to the best candidate,
	// and returns the shortlist for audit and fallback.
	FindAndProposeReplacement(requestID string, maxResults int) ([]models.ReplacementCandidate, error)

	// CanReplace explains every eligibility rule the agent passes or fails
	// for the booking.
	CanReplace(agentID, bookingID string) (*models.CanReplaceResult, error)

	GetRequest(requestID string) (*models.ReplacementRequest, error)
	ListRequestsByBooking(bookingID string) ([]models.ReplacementRequest, error)
}

// DefaultReplacementService implements ReplacementService.
type DefaultReplacementService struct {
	Store          repository.ReplacementRepository
	Bookings       BookingStore
	Agents         AgentDirectory
	Checker        ConflictChecker
	Notifier       notification.NotificationService
	Lock           *redis.Client
	Logger         *zap.Logger
	SearchRadiusKm float64
	MaxResults     int
}

// NewReplacementService wires the service. lock may be nil, in which case
// per-booking serialization relies on the store's uniqueness constraint
// alone.
func NewReplacementService(
	store repository.ReplacementRepository,
	bookings BookingStore,
	agents AgentDirectory,
	checker ConflictChecker,
	notifier notification.NotificationService,
	lock *redis.Client,
	logger *zap.Logger,
	searchRadiusKm float64,
	maxResults int,
) *DefaultReplacementService {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &DefaultReplacementService{
		Store:          store,
		Bookings:       bookings,
		Agents:         agents,
		Checker:        checker,
		Notifier:       notifier,
		Lock:           lock,
		Logger:         logger,
		SearchRadiusKm: searchRadiusKm,
		MaxResults:     maxResults,
	}
}
