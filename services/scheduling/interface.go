package scheduling

import (
	"time"

	"planora/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// BookingReader is the calendar view the detector consumes. Implementations
// must exclude cancelled bookings and sort results by start time.
type BookingReader interface {
	FindByAgentAndPeriod(agentID string, from, to time.Time) ([]models.Booking, error)
	FindOverlapping(agentID string, start, end time.Time, excludeID string) ([]models.Booking, error)
	FindPreviousBooking(agentID string, before time.Time) (*models.Booking, error)
}

// AvailabilityReader answers whether a recurring weekly window covers a
// concrete time range.
type AvailabilityReader interface {
	FindForDayAndTime(agentID string, day time.Weekday, startMin, endMin int) (*models.AvailabilityWindow, error)
}

// AgentReader resolves agent records for report annotations.
type AgentReader interface {
	GetByID(agentID string) (*models.Agent, error)
}

// BookingProposal describes a booking that does not exist yet: a new booking
// or the new time of a reschedule. ExcludeBookingID carries the rescheduled
// booking's ID so it is not counted against itself.
type BookingProposal struct {
	AgentID          string          `json:"agentId"`
	Start            time.Time       `json:"start"`
	End              time.Time       `json:"end"`
	LocationGeo      models.GeoPoint `json:"locationGeo"`
	ExcludeBookingID string          `json:"excludeBookingId,omitempty"`
}

// ConflictDetector runs scheduling rule checks over an agent's calendar.
// Detection never mutates state; conflicts come back as data for the caller
// to act on.
type ConflictDetector interface {
	// DetectAllConflicts audits every booking the agent holds in [from, to),
	// sorted by (date, severity).
	DetectAllConflicts(agentID string, from, to time.Time) ([]models.Conflict, error)

	// WouldCreateConflict evaluates a single proposed booking against the
	// agent's committed calendar before it is persisted.
	WouldCreateConflict(proposal BookingProposal) ([]models.Conflict, error)

	// CheckAvailabilityAndOverlap runs only the availability and overlap
	// checks for an exact time window. Used to screen replacement candidates.
	CheckAvailabilityAndOverlap(agentID string, start, end time.Time, excludeBookingID string) ([]models.Conflict, error)

	// SuggestConflictResolutions returns ranked advisory remedies for a
	// conflict, keyed by its type.
	SuggestConflictResolutions(conflict models.Conflict) []models.ConflictResolution

	// ValidateSchedule batch-validates proposed bookings chronologically,
	// admitting each into the evaluation set only when it is conflict-free.
	ValidateSchedule(agentID string, proposals []BookingProposal) (*models.ScheduleValidation, error)

	// GenerateConflictReport audits many agents in parallel over one period.
	GenerateConflictReport(agentIDs []string, from, to time.Time) (*models.ConflictReport, error)

	// CachedReport fetches a previously generated report by ID.
	CachedReport(reportID string) (*models.ConflictReport, error)
}

// ReplacementCheckFunc is an extension hook for auditing replacement-related
// commitments during a full detection pass. Nil disables the check.
type ReplacementCheckFunc func(agentID string, bookings []models.Booking) []models.Conflict

// DefaultConflictDetector implements ConflictDetector.
type DefaultConflictDetector struct {
	BookingRepo      BookingReader
	AvailabilityRepo AvailabilityReader
	AgentRepo        AgentReader
	Estimator        TravelTimeEstimator
	Rules            Rules
	ReplacementCheck ReplacementCheckFunc
	Cache            *redis.Client
	Logger           *zap.Logger
}

// NewConflictDetector wires a detector with its collaborators. cache may be
// nil, in which case report caching is disabled.
func NewConflictDetector(
	bookings BookingReader,
	availability AvailabilityReader,
	agents AgentReader,
	estimator TravelTimeEstimator,
	rules Rules,
	cache *redis.Client,
	logger *zap.Logger,
) *DefaultConflictDetector {
	return &DefaultConflictDetector{
		BookingRepo:      bookings,
		AvailabilityRepo: availability,
		AgentRepo:        agents,
		Estimator:        estimator,
		Rules:            rules,
		Cache:            cache,
		Logger:           logger,
	}
}
