package models

import (
	"errors"
	"fmt"
	"time"
)

// ReplacementStatus is the lifecycle state of a replacement request.
type ReplacementStatus string

const (
	ReplacementPending   ReplacementStatus = "pending"
	ReplacementAccepted  ReplacementStatus = "accepted"
	ReplacementDeclined  ReplacementStatus = "declined"
	ReplacementCancelled ReplacementStatus = "cancelled"
)

// Active reports whether the request still occupies its booking's
// replacement slot. Declined and cancelled requests free the slot.
func (s ReplacementStatus) Active() bool {
	return s == ReplacementPending || s == ReplacementAccepted
}

// canTransition encodes the allowed status transitions. Pending requests can
// be accepted, declined, or cancelled; accepted requests can only be
// cancelled. Declined and cancelled are terminal.
func canTransition(from, to ReplacementStatus) bool {
	switch from {
	case ReplacementPending:
		return to == ReplacementAccepted || to == ReplacementDeclined || to == ReplacementCancelled
	case ReplacementAccepted:
		return to == ReplacementCancelled
	}
	return false
}

// InvalidTransitionError reports an attempt to move a replacement request
// into a status its current status does not allow.
type InvalidTransitionError struct {
	RequestID string
	From      ReplacementStatus
	To        ReplacementStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("replacement request %s: cannot transition from %s to %s", e.RequestID, e.From, e.To)
}

// ErrNoReplacementAgent is returned when accepting a request that has no
// proposed candidate yet.
var ErrNoReplacementAgent = errors.New("replacement request has no proposed agent")

// ReplacementRequest tracks the search for a substitute agent on a booking
// whose original agent has become unable to serve it. At most one active
// request exists per booking.
type ReplacementRequest struct {
	ID                 string            `bson:"_id" json:"id"`
	BookingID          string            `bson:"booking_id" json:"bookingId"`
	OriginalAgentID    string            `bson:"original_agent_id" json:"originalAgentId"`
	ReplacementAgentID string            `bson:"replacement_agent_id,omitempty" json:"replacementAgentId,omitempty"`
	Status             ReplacementStatus `bson:"status" json:"status"`
	Reason             string            `bson:"reason" json:"reason"`
	DeclineReason      string            `bson:"decline_reason,omitempty" json:"declineReason,omitempty"`
	RequestedAt        time.Time         `bson:"requested_at" json:"requestedAt"`
	ProposedAt         *time.Time        `bson:"proposed_at,omitempty" json:"proposedAt,omitempty"`
	AcceptedAt         *time.Time        `bson:"accepted_at,omitempty" json:"acceptedAt,omitempty"`
	DeclinedAt         *time.Time        `bson:"declined_at,omitempty" json:"declinedAt,omitempty"`
	CancelledAt        *time.Time        `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	UpdatedAt          time.Time         `bson:"updated_at" json:"updatedAt"`
}

// Propose records a candidate agent on a pending request. The request stays
// pending until the candidate responds; a pending request may be re-proposed
// to a different candidate.
func (r *ReplacementRequest) Propose(agentID string, now time.Time) error {
	if r.Status != ReplacementPending {
		return &InvalidTransitionError{RequestID: r.ID, From: r.Status, To: ReplacementPending}
	}
	r.ReplacementAgentID = agentID
	r.ProposedAt = &now
	r.UpdatedAt = now
	return nil
}

// Accept moves a pending request with a proposed candidate to accepted.
func (r *ReplacementRequest) Accept(now time.Time) error {
	if !canTransition(r.Status, ReplacementAccepted) {
		return &InvalidTransitionError{RequestID: r.ID, From: r.Status, To: ReplacementAccepted}
	}
	if r.ReplacementAgentID == "" {
		return ErrNoReplacementAgent
	}
	r.Status = ReplacementAccepted
	r.AcceptedAt = &now
	r.UpdatedAt = now
	return nil
}

// Decline moves a pending request to declined, recording the reason.
func (r *ReplacementRequest) Decline(reason string, now time.Time) error {
	if !canTransition(r.Status, ReplacementDeclined) {
		return &InvalidTransitionError{RequestID: r.ID, From: r.Status, To: ReplacementDeclined}
	}
	r.Status = ReplacementDeclined
	r.DeclineReason = reason
	r.DeclinedAt = &now
	r.UpdatedAt = now
	return nil
}

// Cancel terminates a pending or accepted request.
func (r *ReplacementRequest) Cancel(now time.Time) error {
	if !canTransition(r.Status, ReplacementCancelled) {
		return &InvalidTransitionError{RequestID: r.ID, From: r.Status, To: ReplacementCancelled}
	}
	r.Status = ReplacementCancelled
	r.CancelledAt = &now
	r.UpdatedAt = now
	return nil
}

// ReplacementCandidate is a ranked agent able to take over a booking.
type ReplacementCandidate struct {
	Agent             Agent   `json:"agent"`
	DistanceKm        float64 `json:"distanceKm"`
	Rating            float64 `json:"rating"`
	CompletedBookings int     `json:"completedBookings"`
	Score             float64 `json:"score"`
}

// CanReplaceResult explains whether an agent is eligible to take over a
// booking, listing every failed rule in human-readable form.
type CanReplaceResult struct {
	CanReplace bool     `json:"canReplace"`
	Reasons    []string `json:"reasons,omitempty"`
	DistanceKm float64  `json:"distanceKm"`
}
