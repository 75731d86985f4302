package handlers

import (
	"errors"
	"net/http"
	"strconv"

	agentRepo "planora/database/repository/agent"
	bookingRepo "planora/database/repository/booking"
	replacementRepo "planora/database/repository/replacement"
	"planora/models"
	"planora/services/booking"
	"planora/services/replacement"
	"planora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReplacementHandler exposes the replacement request lifecycle over HTTP.
type ReplacementHandler struct {
	Service  replacement.ReplacementService
	Bookings booking.BookingService
}

func NewReplacementHandler(service replacement.ReplacementService, bookings booking.BookingService) *ReplacementHandler {
	return &ReplacementHandler{Service: service, Bookings: bookings}
}

// renderReplacementError maps lifecycle failures onto HTTP statuses.
func renderReplacementError(c *gin.Context, err error) {
	var transitionErr *models.InvalidTransitionError
	switch {
	case errors.Is(err, replacementRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Replacement request not found"})
	case errors.Is(err, bookingRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, agentRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
	case errors.Is(err, replacementRepo.ErrActiveRequestExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Booking already has an active replacement request"})
	case errors.Is(err, replacementRepo.ErrStaleRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "Request was modified concurrently; reload and retry"})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.Is(err, models.ErrNoReplacementAgent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No candidate has been proposed yet"})
	default:
		utils.GetLogger().Error("Replacement operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Replacement operation failed"})
	}
}

// RequestReplacementHandler handles POST /api/replacements. Omitting
// originalAgentId defaults it to the booking's assigned agent.
func (h *ReplacementHandler) RequestReplacementHandler(c *gin.Context) {
	var input struct {
		BookingID       string `json:"bookingId" binding:"required"`
		OriginalAgentID string `json:"originalAgentId"`
		Reason          string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if input.OriginalAgentID == "" {
		bkg, err := h.Bookings.GetBooking(input.BookingID)
		if err != nil {
			renderReplacementError(c, err)
			return
		}
		input.OriginalAgentID = bkg.AgentID
	}

	req, err := h.Service.RequestReplacement(input.BookingID, input.OriginalAgentID, input.Reason)
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GetReplacementHandler handles GET /api/replacements/:id.
func (h *ReplacementHandler) GetReplacementHandler(c *gin.Context) {
	req, err := h.Service.GetRequest(c.Param("id"))
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ListByBookingHandler handles GET /api/bookings/:id/replacements.
func (h *ReplacementHandler) ListByBookingHandler(c *gin.Context) {
	requests, err := h.Service.ListRequestsByBooking(c.Param("id"))
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId": c.Param("id"),
		"requests":  requests,
	})
}

// searchCandidates runs the ranked candidate search for a booking and writes
// the response. maxResults <= 0 returns the full shortlist.
func (h *ReplacementHandler) searchCandidates(c *gin.Context, bookingID string, maxDistanceKm float64, maxResults int) {
	bkg, err := h.Bookings.GetBooking(bookingID)
	if err != nil {
		renderReplacementError(c, err)
		return
	}

	candidates, err := h.Service.FindAvailableReplacements(*bkg, maxDistanceKm)
	if err != nil {
		utils.GetLogger().Error("Candidate search failed", zap.String("bookingId", bookingID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search for candidates"})
		return
	}
	if maxResults > 0 && len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	c.JSON(http.StatusOK, gin.H{
		"bookingId":  bookingID,
		"candidates": candidates,
	})
}

// SearchHandler handles POST /api/replacements/search.
func (h *ReplacementHandler) SearchHandler(c *gin.Context) {
	var input struct {
		BookingID     string  `json:"bookingId" binding:"required"`
		MaxDistanceKm float64 `json:"maxDistanceKm"`
		MaxResults    int     `json:"maxResults"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if input.MaxDistanceKm < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maxDistanceKm"})
		return
	}

	h.searchCandidates(c, input.BookingID, input.MaxDistanceKm, input.MaxResults)
}

// CandidatesHandler handles GET /api/bookings/:id/replacement-candidates.
// maxDistanceKm optionally tightens the search radius.
func (h *ReplacementHandler) CandidatesHandler(c *gin.Context) {
	maxDistanceKm := 0.0
	if raw := c.Query("maxDistanceKm"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maxDistanceKm"})
			return
		}
		maxDistanceKm = parsed
	}

	h.searchCandidates(c, c.Param("id"), maxDistanceKm, 0)
}

// ProposeHandler handles POST /api/replacements/:id/propose.
func (h *ReplacementHandler) ProposeHandler(c *gin.Context) {
	var input struct {
		AgentID string `json:"agentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	req, err := h.Service.ProposeReplacement(c.Param("id"), input.AgentID)
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// AutoProposeHandler handles POST /api/replacements/:id/auto-propose. The best
// candidate is proposed automatically and the shortlist returned.
func (h *ReplacementHandler) AutoProposeHandler(c *gin.Context) {
	var input struct {
		MaxResults int `json:"maxResults"`
	}
	// Body is optional; an empty one means service defaults.
	_ = c.ShouldBindJSON(&input)

	candidates, err := h.Service.FindAndProposeReplacement(c.Param("id"), input.MaxResults)
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"requestId":  c.Param("id"),
		"candidates": candidates,
	})
}

// AcceptHandler handles POST /api/replacements/:id/accept.
func (h *ReplacementHandler) AcceptHandler(c *gin.Context) {
	req, err := h.Service.AcceptReplacement(c.Param("id"))
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// DeclineHandler handles POST /api/replacements/:id/decline.
func (h *ReplacementHandler) DeclineHandler(c *gin.Context) {
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	req, err := h.Service.DeclineReplacement(c.Param("id"), input.Reason)
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CancelHandler handles POST /api/replacements/:id/cancel.
func (h *ReplacementHandler) CancelHandler(c *gin.Context) {
	req, err := h.Service.CancelReplacement(c.Param("id"))
	if err != nil {
		renderReplacementError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CanReplaceHandler handles GET /api/agents/:id/can-replace/:bookingId.
func (h *ReplacementHandler) CanReplaceHandler(c *gin.Context) {
	result, err := h.Service.CanReplace(c.Param("id"), c.Param("bookingId"))
	if err != nil {
		if errors.Is(err, agentRepo.ErrNotFound) || errors.Is(err, bookingRepo.ErrNotFound) {
			renderReplacementError(c, err)
			return
		}
		utils.GetLogger().Error("Can-replace evaluation failed",
			zap.String("agentId", c.Param("id")),
			zap.String("bookingId", c.Param("bookingId")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate eligibility"})
		return
	}
	c.JSON(http.StatusOK, result)
}
