package handlers

import (
	"errors"
	"net/http"
	"time"

	bookingRepo "planora/database/repository/booking"
	replacementRepo "planora/database/repository/replacement"
	"planora/services/booking"
	"planora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes conflict-gated booking writes over HTTP.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(service booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

// CreateBookingHandler handles POST /api/bookings. Blocking conflicts reject
// the booking with 409; non-blocking ones come back as warnings.
func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	created, warnings, err := h.Service.CreateBooking(input)
	if err != nil {
		var blocked *booking.ConflictBlockedError
		if errors.As(err, &blocked) {
			utils.JSONConflicts(c, "Booking conflicts with the agent's schedule", blocked.Conflicts)
			return
		}
		logger.Error("Booking creation failed", zap.String("agentId", input.AgentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":  created,
		"warnings": warnings,
	})
}

// GetBookingHandler handles GET /api/bookings/:id.
func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	bkg, err := h.Service.GetBooking(c.Param("id"))
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		utils.GetLogger().Error("Booking lookup failed", zap.String("bookingId", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch booking"})
		return
	}
	c.JSON(http.StatusOK, bkg)
}

// RescheduleBookingHandler handles PUT /api/bookings/:id/reschedule.
func (h *BookingHandler) RescheduleBookingHandler(c *gin.Context) {
	logger := utils.GetLogger()
	bookingID := c.Param("id")

	var input struct {
		Start time.Time `json:"start" binding:"required"`
		End   time.Time `json:"end" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	updated, warnings, err := h.Service.RescheduleBooking(bookingID, input.Start, input.End)
	if err != nil {
		var blocked *booking.ConflictBlockedError
		if errors.As(err, &blocked) {
			utils.JSONConflicts(c, "New time conflicts with the agent's schedule", blocked.Conflicts)
			return
		}
		if errors.Is(err, bookingRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		logger.Error("Reschedule failed", zap.String("bookingId", bookingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reschedule booking"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"booking":  updated,
		"warnings": warnings,
	})
}

// CancelBookingHandler handles POST /api/bookings/:id/cancel, the
// client-side cancellation.
func (h *BookingHandler) CancelBookingHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	cancelled, err := h.Service.CancelBooking(c.Param("id"), input.Reason)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
			return
		}
		utils.GetLogger().Error("Cancellation failed", zap.String("bookingId", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel booking"})
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

// WithdrawAgentHandler handles POST /api/bookings/:id/withdraw. The
// assigned agent backs out and the replacement search starts immediately.
func (h *BookingHandler) WithdrawAgentHandler(c *gin.Context) {
	logger := utils.GetLogger()
	bookingID := c.Param("id")

	var input struct {
		AgentID string `json:"agentId"`
		Reason  string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	// Prefer the authenticated subject over the body.
	agentID := c.GetString("subjectID")
	if agentID == "" {
		agentID = input.AgentID
	}
	if agentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing agent identity"})
		return
	}

	req, candidates, err := h.Service.WithdrawAgent(bookingID, agentID, input.Reason)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotUpcoming):
			c.JSON(http.StatusConflict, gin.H{"error": "Only upcoming bookings can be withdrawn from"})
		case errors.Is(err, replacementRepo.ErrActiveRequestExists):
			c.JSON(http.StatusConflict, gin.H{"error": "Booking already has an active replacement request"})
		case errors.Is(err, bookingRepo.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		default:
			logger.Error("Withdrawal failed", zap.String("bookingId", bookingID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to withdraw from booking"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request":    req,
		"candidates": candidates,
	})
}

// ListAgentBookingsHandler handles GET /api/agents/:id/bookings.
func (h *BookingHandler) ListAgentBookingsHandler(c *gin.Context) {
	agentID := c.Param("id")

	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from/to: expected RFC3339 timestamps"})
		return
	}

	bookings, err := h.Service.ListAgentBookings(agentID, from, to)
	if err != nil {
		utils.GetLogger().Error("Booking list failed", zap.String("agentId", agentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"agentId":  agentID,
		"from":     from,
		"to":       to,
		"bookings": bookings,
	})
}
