package handlers

import (
	"errors"
	"net/http"
	"time"

	agentRepo "planora/database/repository/agent"
	"planora/models"
	"planora/services/scheduling"
	"planora/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConflictHandler exposes the conflict detector over HTTP.
type ConflictHandler struct {
	Detector scheduling.ConflictDetector
	Agents   agentRepo.AgentRepository
}

func NewConflictHandler(detector scheduling.ConflictDetector, agents agentRepo.AgentRepository) *ConflictHandler {
	return &ConflictHandler{Detector: detector, Agents: agents}
}

// parsePeriod reads the from/to RFC3339 query params. A missing pair
// defaults to the next seven days.
func parsePeriod(c *gin.Context) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		now := time.Now()
		return now, now.Add(7 * 24 * time.Hour), nil
	}
	from, err := time.Parse(time.RFC3339, fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(time.RFC3339, toStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func (h *ConflictHandler) renderConflicts(c *gin.Context, agentID string, from, to time.Time) {
	logger := utils.GetLogger()

	conflicts, err := h.Detector.DetectAllConflicts(agentID, from, to)
	if err != nil {
		var invalid *scheduling.InvalidIntervalError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		logger.Error("Conflict detection failed", zap.String("agentId", agentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to detect conflicts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agentId":   agentID,
		"from":      from,
		"to":        to,
		"conflicts": conflicts,
	})
}

// DetectConflictsHandler handles POST /api/conflicts/detect. Omitting the
// date range scans the next seven days.
func (h *ConflictHandler) DetectConflictsHandler(c *gin.Context) {
	var input struct {
		AgentID   string    `json:"agentId" binding:"required"`
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if input.StartDate.IsZero() && input.EndDate.IsZero() {
		input.StartDate = time.Now()
		input.EndDate = input.StartDate.Add(7 * 24 * time.Hour)
	}

	h.renderConflicts(c, input.AgentID, input.StartDate, input.EndDate)
}

// AgentConflictsHandler handles GET /api/agents/:id/conflicts.
func (h *ConflictHandler) AgentConflictsHandler(c *gin.Context) {
	from, to, err := parsePeriod(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from/to: expected RFC3339 timestamps"})
		return
	}
	h.renderConflicts(c, c.Param("id"), from, to)
}

// CheckBookingHandler handles POST /api/conflicts/check. It dry-runs a
// proposed booking against the agent's calendar without persisting anything.
func (h *ConflictHandler) CheckBookingHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var proposal scheduling.BookingProposal
	if err := c.ShouldBindJSON(&proposal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	conflicts, err := h.Detector.WouldCreateConflict(proposal)
	if err != nil {
		var invalid *scheduling.InvalidIntervalError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		logger.Error("Proposal check failed", zap.String("agentId", proposal.AgentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check proposed booking"})
		return
	}

	canProceed := true
	for _, conflict := range conflicts {
		if conflict.Severity.Blocking() {
			canProceed = false
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"canProceed": canProceed,
		"conflicts":  conflicts,
	})
}

// ValidateScheduleHandler handles POST /api/conflicts/validate. The whole
// batch is evaluated chronologically; errors reference the bookings by their
// position in the request.
func (h *ConflictHandler) ValidateScheduleHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var input struct {
		AgentID  string                       `json:"agentId" binding:"required"`
		Bookings []scheduling.BookingProposal `json:"bookings" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	for i := range input.Bookings {
		input.Bookings[i].AgentID = input.AgentID
	}

	validation, err := h.Detector.ValidateSchedule(input.AgentID, input.Bookings)
	if err != nil {
		var invalid *scheduling.InvalidIntervalError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		logger.Error("Schedule validation failed", zap.String("agentId", input.AgentID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate schedule"})
		return
	}

	c.JSON(http.StatusOK, validation)
}

// SuggestResolutionsHandler handles GET /api/conflicts/resolutions/:type.
// Unknown types yield an empty list rather than an error.
func (h *ConflictHandler) SuggestResolutionsHandler(c *gin.Context) {
	conflictType := models.ConflictType(c.Param("type"))
	resolutions := h.Detector.SuggestConflictResolutions(models.Conflict{Type: conflictType})
	c.JSON(http.StatusOK, gin.H{
		"type":        conflictType,
		"resolutions": resolutions,
	})
}

// GenerateReportHandler handles POST /api/conflicts/report. An empty
// agentIds list reports over every approved, active agent.
func (h *ConflictHandler) GenerateReportHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var input struct {
		AgentIDs  []string  `json:"agentIds"`
		StartDate time.Time `json:"startDate" binding:"required"`
		EndDate   time.Time `json:"endDate" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	agentIDs := input.AgentIDs
	if len(agentIDs) == 0 {
		ids, err := h.Agents.ListActiveIDs()
		if err != nil {
			logger.Error("Active agent listing failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list active agents"})
			return
		}
		agentIDs = ids
	}

	report, err := h.Detector.GenerateConflictReport(agentIDs, input.StartDate, input.EndDate)
	if err != nil {
		var invalid *scheduling.InvalidIntervalError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		logger.Error("Report generation failed", zap.Int("agents", len(agentIDs)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate conflict report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetReportHandler handles GET /api/conflicts/report/:id. Reports live in
// the cache for a bounded time after generation.
func (h *ConflictHandler) GetReportHandler(c *gin.Context) {
	logger := utils.GetLogger()
	reportID := c.Param("id")

	report, err := h.Detector.CachedReport(reportID)
	if err != nil {
		logger.Error("Report lookup failed", zap.String("reportId", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found or expired"})
		return
	}
	c.JSON(http.StatusOK, report)
}
