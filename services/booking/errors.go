package booking

import (
	"errors"
	"fmt"

	"planora/models"
)

// ConflictBlockedError rejects a booking write because the schedule checks
// found at least one blocking conflict. Every detected conflict rides along
// so the caller can show warnings next to the hard failures.
type ConflictBlockedError struct {
	Conflicts []models.Conflict
}

func (e *ConflictBlockedError) Error() string {
	blocking := 0
	for _, c := range e.Conflicts {
		if c.Severity.Blocking() {
			blocking++
		}
	}
	return fmt.Sprintf("booking blocked by %d scheduling conflict(s)", blocking)
}

// ErrNotUpcoming is returned when an agent tries to withdraw from a booking
// that already started, finished, or was cancelled.
var ErrNotUpcoming = errors.New("booking is not upcoming")
