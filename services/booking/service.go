package booking

import (
	"fmt"
	"time"

	"planora/models"
	"planora/services/scheduling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func hasBlocking(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if c.Severity.Blocking() {
			return true
		}
	}
	return false
}

// notifyAsync delivers a notification without blocking the booking write.
func (s *DefaultBookingService) notifyAsync(event models.NotificationEvent) {
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

// scheduleReminder queues the client's reminder push ahead of the booking.
// Bookings starting within the lead time get none.
func (s *DefaultBookingService) scheduleReminder(booking *models.Booking) {
	if s.Notifier == nil {
		return
	}
	fireAt := booking.Start.Add(-s.ReminderLead)
	if !fireAt.After(time.Now()) {
		return
	}
	event := models.NotificationEvent{
		Event:         models.EventBookingReminder,
		RecipientID:   booking.ClientID,
		RecipientRole: models.RoleClient,
		Title:         "Upcoming booking",
		Body:          fmt.Sprintf("Reminder: your %s booking is on %s.", booking.ServiceCategory, booking.Start.Format("Jan 2 at 15:04")),
		Data: map[string]string{
			"bookingId": booking.ID,
		},
	}
	if err := s.Notifier.NotifyAt(event, fireAt); err != nil {
		s.Logger.Warn("failed to schedule booking reminder",
			zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) CreateBooking(input CreateBookingInput) (*models.Booking, []models.Conflict, error) {
	conflicts, err := s.Prober.WouldCreateConflict(scheduling.BookingProposal{
		AgentID:     input.AgentID,
		Start:       input.Start,
		End:         input.End,
		LocationGeo: input.LocationGeo,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error checking proposed booking: %w", err)
	}
	if hasBlocking(conflicts) {
		return nil, conflicts, &ConflictBlockedError{Conflicts: conflicts}
	}

	now := time.Now()
	booking := &models.Booking{
		ID:              uuid.New().String(),
		AgentID:         input.AgentID,
		ClientID:        input.ClientID,
		ServiceCategory: input.ServiceCategory,
		Start:           input.Start,
		End:             input.End,
		Address:         input.Address,
		LocationGeo:     input.LocationGeo,
		Status:          models.BookingScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Bookings.Create(booking); err != nil {
		return nil, nil, fmt.Errorf("error creating booking: %w", err)
	}

	s.scheduleReminder(booking)
	s.Logger.Info("booking created",
		zap.String("bookingId", booking.ID),
		zap.String("agentId", booking.AgentID),
		zap.Int("warnings", len(conflicts)))
	return booking, conflicts, nil
}

func (s *DefaultBookingService) RescheduleBooking(bookingID string, newStart, newEnd time.Time) (*models.Booking, []models.Conflict, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading booking %s: %w", bookingID, err)
	}

	conflicts, err := s.Prober.WouldCreateConflict(scheduling.BookingProposal{
		AgentID:          booking.AgentID,
		Start:            newStart,
		End:              newEnd,
		LocationGeo:      booking.LocationGeo,
		ExcludeBookingID: booking.ID,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error checking new period for booking %s: %w", bookingID, err)
	}
	if hasBlocking(conflicts) {
		return nil, conflicts, &ConflictBlockedError{Conflicts: conflicts}
	}

	if err := s.Bookings.UpdatePeriod(bookingID, newStart, newEnd); err != nil {
		return nil, nil, fmt.Errorf("error updating period of booking %s: %w", bookingID, err)
	}
	booking.Start = newStart
	booking.End = newEnd

	s.notifyAsync(models.NotificationEvent{
		Event:         models.EventBookingRescheduled,
		RecipientID:   booking.AgentID,
		RecipientRole: models.RoleAgent,
		Title:         "Booking rescheduled",
		Body:          fmt.Sprintf("A booking on your calendar moved to %s.", newStart.Format("Jan 2 at 15:04")),
		Data: map[string]string{
			"bookingId": booking.ID,
		},
	})
	s.Logger.Info("booking rescheduled",
		zap.String("bookingId", booking.ID),
		zap.Time("newStart", newStart),
		zap.Time("newEnd", newEnd))
	return booking, conflicts, nil
}

func (s *DefaultBookingService) CancelBooking(bookingID, reason string) (*models.Booking, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("error loading booking %s: %w", bookingID, err)
	}
	if booking.Status == models.BookingCancelled {
		return booking, nil
	}

	if err := s.Bookings.UpdateStatus(bookingID, models.BookingCancelled); err != nil {
		return nil, fmt.Errorf("error cancelling booking %s: %w", bookingID, err)
	}
	booking.Status = models.BookingCancelled

	s.notifyAsync(models.NotificationEvent{
		Event:         models.EventBookingCancelled,
		RecipientID:   booking.AgentID,
		RecipientRole: models.RoleAgent,
		Title:         "Booking cancelled",
		Body:          fmt.Sprintf("Your booking on %s was cancelled.", booking.Start.Format("Jan 2 at 15:04")),
		Data: map[string]string{
			"bookingId": booking.ID,
			"reason":    reason,
		},
	})
	s.Logger.Info("booking cancelled",
		zap.String("bookingId", booking.ID),
		zap.String("reason", reason))
	return booking, nil
}

func (s *DefaultBookingService) WithdrawAgent(bookingID, agentID, reason string) (*models.ReplacementRequest, []models.ReplacementCandidate, error) {
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading booking %s: %w", bookingID, err)
	}
	if booking.AgentID != agentID {
		return nil, nil, fmt.Errorf("agent %s is not assigned to booking %s", agentID, bookingID)
	}
	if !booking.Upcoming(time.Now()) {
		return nil, nil, ErrNotUpcoming
	}

	req, err := s.Replacements.RequestReplacement(bookingID, agentID, reason)
	if err != nil {
		return nil, nil, err
	}

	candidates, err := s.Replacements.FindAndProposeReplacement(req.ID, 0)
	if err != nil {
		// The request stands even when the automatic search fails; support
		// staff can rerun it.
		s.Logger.Warn("replacement search failed after agent withdrawal",
			zap.String("requestId", req.ID),
			zap.String("bookingId", bookingID),
			zap.Error(err))
		return req, nil, nil
	}

	s.Logger.Info("agent withdrew from booking",
		zap.String("bookingId", bookingID),
		zap.String("agentId", agentID),
		zap.Int("candidates", len(candidates)))
	return req, candidates, nil
}

func (s *DefaultBookingService) GetBooking(bookingID string) (*models.Booking, error) {
	return s.Bookings.GetByID(bookingID)
}

func (s *DefaultBookingService) ListAgentBookings(agentID string, from, to time.Time) ([]models.Booking, error) {
	return s.Bookings.FindByAgentAndPeriod(agentID, from, to)
}
