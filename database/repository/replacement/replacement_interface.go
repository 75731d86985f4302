package replacementRepo

import (
	"errors"

	"planora/models"
)

var (
	// ErrNotFound is returned when no replacement request matches the ID.
	ErrNotFound = errors.New("replacement request not found")

	// ErrActiveRequestExists is returned when a booking already has a
	// pending or accepted replacement request.
	ErrActiveRequestExists = errors.New("booking already has an active replacement request")

	// ErrStaleRequest is returned when a status-guarded update matched no
	// document: the request changed under the caller.
	ErrStaleRequest = errors.New("replacement request was modified concurrently")
)

// ReplacementRepository persists replacement requests. A partial unique
// index guarantees at most one active (pending or accepted) request per
// booking regardless of concurrent writers.
type ReplacementRepository interface {
	// Create inserts a new pending request. Returns ErrActiveRequestExists
	// when the booking's active slot is already taken.
	Create(req *models.ReplacementRequest) error

	GetByID(requestID string) (*models.ReplacementRequest, error)

	// FindActiveByBooking returns the booking's pending or accepted request,
	// or nil when the slot is free.
	FindActiveByBooking(bookingID string) (*models.ReplacementRequest, error)

	ListByBooking(bookingID string) ([]models.ReplacementRequest, error)

	// ApplyTransition persists the request's current state, guarded on the
	// status the caller read. Returns ErrStaleRequest when the stored status
	// no longer matches fromStatus.
	ApplyTransition(req *models.ReplacementRequest, fromStatus models.ReplacementStatus) error
}
