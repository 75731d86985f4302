package replacement

import (
	"fmt"
	"time"

	replacementRepo "planora/database/repository/replacement"
	"planora/models"
	"planora/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// lockBooking serializes replacement lifecycle work per booking. The returned
// release func is safe to defer. When no lock client is configured the store's
// uniqueness index is the only guard.
func (s *DefaultReplacementService) lockBooking(bookingID string) (func(), error) {
	if s.Lock == nil {
		return func() {}, nil
	}
	token, err := utils.AcquireBookingLock(s.Lock, bookingID)
	if err != nil {
		return nil, fmt.Errorf("error locking booking %s: %w", bookingID, err)
	}
	return func() {
		if err := utils.ReleaseBookingLock(s.Lock, bookingID, token); err != nil {
			s.Logger.Warn("failed to release booking lock",
				zap.String("bookingId", bookingID), zap.Error(err))
		}
	}, nil
}

// notifyAsync delivers a notification without blocking the lifecycle
// operation. Failures are logged, never propagated.
func (s *DefaultReplacementService) notifyAsync(event models.NotificationEvent) {
	if s.Notifier == nil {
		return
	}
	go func() {
		if err := s.Notifier.Notify(event); err != nil {
			s.Logger.Warn("failed to send notification",
				zap.String("event", event.Event),
				zap.String("recipientId", event.RecipientID),
				zap.Error(err))
		}
	}()
}

func (s *DefaultReplacementService) RequestReplacement(bookingID, originalAgentID, reason string) (*models.ReplacementRequest, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("error loading booking %s: %w", bookingID, err)
	}
	if booking.AgentID != originalAgentID {
		return nil, fmt.Errorf("agent %s is not assigned to booking %s", originalAgentID, bookingID)
	}

	unlock, err := s.lockBooking(bookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	active, err := s.Store.FindActiveByBooking(bookingID)
	if err != nil {
		return nil, fmt.Errorf("error checking active replacement for booking %s: %w", bookingID, err)
	}
	if active != nil {
		return nil, replacementRepo.ErrActiveRequestExists
	}

	now := time.Now()
	req := &models.ReplacementRequest{
		ID:              uuid.New().String(),
		BookingID:       bookingID,
		OriginalAgentID: originalAgentID,
		Status:          models.ReplacementPending,
		Reason:          reason,
		RequestedAt:     now,
		UpdatedAt:       now,
	}
	if err := s.Store.Create(req); err != nil {
		return nil, fmt.Errorf("error creating replacement request: %w", err)
	}

	s.notifyAsync(models.NotificationEvent{
		Event:         models.EventReplacementRequested,
		RecipientID:   booking.ClientID,
		RecipientRole: models.RoleClient,
		Title:         "We're finding you a replacement",
		Body:          fmt.Sprintf("Your agent can no longer serve your booking on %s. We're searching for a replacement now.", booking.Start.Format("Jan 2 at 15:04")),
		Data: map[string]string{
			"bookingId": bookingID,
			"requestId": req.ID,
		},
	})
	s.Logger.Info("replacement request opened",
		zap.String("requestId", req.ID),
		zap.String("bookingId", bookingID),
		zap.String("originalAgentId", originalAgentID))
	return req, nil
}

func (s *DefaultReplacementService) ProposeReplacement(requestID, candidateAgentID string) (*models.ReplacementRequest, error) {
	req, err := s.Store.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("error loading replacement request %s: %w", requestID, err)
	}
	agent, err := s.Agents.GetByID(candidateAgentID)
	if err != nil {
		return nil, fmt.Errorf("error loading candidate agent %s: %w", candidateAgentID, err)
	}

	from := req.Status
	if err := req.Propose(agent.ID, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Store.ApplyTransition(req, from); err != nil {
		return nil, err
	}

	s.notifyAsync(models.NotificationEvent{
		Event:         models.EventReplacementProposed,
		RecipientID:   agent.ID,
		RecipientRole: models.RoleAgent,
		Title:         "New replacement opportunity",
		Body:          "You've been proposed as a replacement for a booking. Accept to take it over.",
		Data: map[string]string{
			"bookingId": req.BookingID,
			"requestId": req.ID,
		},
	})
	s.Logger.Info("replacement proposed",
		zap.String("requestId", req.ID),
		zap.String("candidateAgentId", agent.ID))
	return req, nil
}

func (s *DefaultReplacementService) AcceptReplacement(requestID string) (*models.ReplacementRequest, error) {
	req, err := s.Store.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("error loading replacement request %s: %w", requestID, err)
	}
	booking, err := s.Bookings.GetByID(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("error loading booking %s: %w", req.BookingID, err)
	}

	unlock, err := s.lockBooking(req.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	from := req.Status
	if err := req.Accept(time.Now()); err != nil {
		return nil, err
	}
	if err := s.Store.ApplyTransition(req, from); err != nil {
		return nil, err
	}
	if err := s.Bookings.ReassignAgent(req.BookingID, req.ReplacementAgentID, req.Reason); err != nil {
		// The request is accepted but the booking still points at the
		// original agent. Surface loudly so the reassignment can be retried.
		s.Logger.Error("replacement accepted but booking reassignment failed",
			zap.String("requestId", req.ID),
			zap.String("bookingId", req.BookingID),
			zap.Error(err))
		return nil, fmt.Errorf("error reassigning booking %s: %w", req.BookingID, err)
	}

	replacementName := "A new agent"
	if agent, err := s.Agents.GetByID(req.ReplacementAgentID); err == nil {
		replacementName = agent.Name
	}
	s.notifyAsync(models.NotificationEvent{
		Event:         models.EventReplacementAccepted,
		RecipientID:   booking.ClientID,
		RecipientRole: models.RoleClient,
		Title:         "Replacement confirmed",
		Body:          fmt.Sprintf("%s will now serve your booking on %s.", replacementName, booking.Start.Format("Jan 2 at 15:04")),
		Data: map[string]string{
			"bookingId": req.BookingID,
			"requestId": req.ID,
			"agentId":   req.ReplacementAgentID,
		},
	})
	s.notifyAsync(models.NotificationEvent{
		Event:         models.EventBookingReassigned,
		RecipientID:   req.OriginalAgentID,
		RecipientRole: models.RoleAgent,
		Title:         "Booking reassigned",
		Body:          fmt.Sprintf("Your booking on %s has been reassigned to a replacement.", booking.Start.Format("Jan 2 at 15:04")),
		Data: map[string]string{
			"bookingId": req.BookingID,
			"requestId": req.ID,
		},
	})
	s.Logger.Info("replacement accepted",
		zap.String("requestId", req.ID),
		zap.String("bookingId", req.BookingID),
		zap.String("replacementAgentId", req.ReplacementAgentID))
	return req, nil
}

func (s *DefaultReplacementService) DeclineReplacement(requestID, reason string) (*models.ReplacementRequest, error) {
	req, err := s.Store.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("error loading replacement request %s: %w", requestID, err)
	}

	from := req.Status
	if err := req.Decline(reason, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Store.ApplyTransition(req, from); err != nil {
		return nil, err
	}

	if booking, err := s.Bookings.GetByID(req.BookingID); err == nil {
		s.notifyAsync(models.NotificationEvent{
			Event:         models.EventReplacementDeclined,
			RecipientID:   booking.ClientID,
			RecipientRole: models.RoleClient,
			Title:         "Still searching",
			Body:          "The proposed replacement declined. We're continuing the search for your booking.",
			Data: map[string]string{
				"bookingId": req.BookingID,
				"requestId": req.ID,
			},
		})
	}
	s.Logger.Info("replacement declined",
		zap.String("requestId", req.ID),
		zap.String("declinedBy", req.ReplacementAgentID),
		zap.String("reason", reason))
	return req, nil
}

func (s *DefaultReplacementService) CancelReplacement(requestID string) (*models.ReplacementRequest, error) {
	req, err := s.Store.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("error loading replacement request %s: %w", requestID, err)
	}

	unlock, err := s.lockBooking(req.BookingID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	wasAccepted := req.Status == models.ReplacementAccepted
	from := req.Status
	if err := req.Cancel(time.Now()); err != nil {
		return nil, err
	}
	if err := s.Store.ApplyTransition(req, from); err != nil {
		return nil, err
	}
	if wasAccepted {
		if err := s.Bookings.RevertAgent(req.BookingID, req.OriginalAgentID); err != nil {
			s.Logger.Error("replacement cancelled but booking revert failed",
				zap.String("requestId", req.ID),
				zap.String("bookingId", req.BookingID),
				zap.Error(err))
			return nil, fmt.Errorf("error reverting booking %s to original agent: %w", req.BookingID, err)
		}
		s.notifyAsync(models.NotificationEvent{
			Event:         models.EventReplacementCancelled,
			RecipientID:   req.ReplacementAgentID,
			RecipientRole: models.RoleAgent,
			Title:         "Replacement cancelled",
			Body:          "The booking you accepted as a replacement has been returned to its original agent.",
			Data: map[string]string{
				"bookingId": req.BookingID,
				"requestId": req.ID,
			},
		})
	}

	if booking, err := s.Bookings.GetByID(req.BookingID); err == nil {
		s.notifyAsync(models.NotificationEvent{
			Event:         models.EventReplacementCancelled,
			RecipientID:   booking.ClientID,
			RecipientRole: models.RoleClient,
			Title:         "Replacement search cancelled",
			Body:          "The replacement request for your booking has been cancelled.",
			Data: map[string]string{
				"bookingId": req.BookingID,
				"requestId": req.ID,
			},
		})
	}
	s.Logger.Info("replacement cancelled",
		zap.String("requestId", req.ID),
		zap.Bool("revertedBooking", wasAccepted))
	return req, nil
}

func (s *DefaultReplacementService) FindAndProposeReplacement(requestID string, maxResults int) ([]models.ReplacementCandidate, error) {
	if maxResults <= 0 {
		maxResults = s.MaxResults
	}
	req, err := s.Store.GetByID(requestID)
	if err != nil {
		return nil, fmt.Errorf("error loading replacement request %s: %w", requestID, err)
	}
	if req.Status != models.ReplacementPending {
		return nil, &models.InvalidTransitionError{RequestID: req.ID, From: req.Status, To: models.ReplacementPending}
	}
	booking, err := s.Bookings.GetByID(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("error loading booking %s: %w", req.BookingID, err)
	}

	candidates, err := s.FindAvailableReplacements(*booking, s.SearchRadiusKm)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		s.Logger.Info("no replacement candidates found",
			zap.String("requestId", requestID),
			zap.String("bookingId", req.BookingID))
		return []models.ReplacementCandidate{}, nil
	}

	if _, err := s.ProposeReplacement(requestID, candidates[0].Agent.ID); err != nil {
		return nil, err
	}
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

func (s *DefaultReplacementService) GetRequest(requestID string) (*models.ReplacementRequest, error) {
	return s.Store.GetByID(requestID)
}

func (s *DefaultReplacementService) ListRequestsByBooking(bookingID string) ([]models.ReplacementRequest, error) {
	return s.Store.ListByBooking(bookingID)
}
