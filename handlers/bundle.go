package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Conflict endpoints
	DetectConflictsHandler    gin.HandlerFunc
	AgentConflictsHandler     gin.HandlerFunc
	CheckBookingHandler       gin.HandlerFunc
	ValidateScheduleHandler   gin.HandlerFunc
	SuggestResolutionsHandler gin.HandlerFunc
	GenerateReportHandler     gin.HandlerFunc
	GetReportHandler          gin.HandlerFunc

	// Booking endpoints
	CreateBookingHandler     gin.HandlerFunc
	GetBookingHandler        gin.HandlerFunc
	RescheduleBookingHandler gin.HandlerFunc
	CancelBookingHandler     gin.HandlerFunc
	WithdrawAgentHandler     gin.HandlerFunc
	ListAgentBookingsHandler gin.HandlerFunc

	// Replacement endpoints
	RequestReplacementHandler gin.HandlerFunc
	GetReplacementHandler     gin.HandlerFunc
	ListByBookingHandler      gin.HandlerFunc
	SearchReplacementsHandler gin.HandlerFunc
	CandidatesHandler         gin.HandlerFunc
	ProposeReplacementHandler gin.HandlerFunc
	AutoProposeHandler        gin.HandlerFunc
	AcceptReplacementHandler  gin.HandlerFunc
	DeclineReplacementHandler gin.HandlerFunc
	CancelReplacementHandler  gin.HandlerFunc
	CanReplaceHandler         gin.HandlerFunc
}

// NewHandlerBundle wires the endpoint handlers into a bundle for route
// registration.
func NewHandlerBundle(conflicts *ConflictHandler, bookings *BookingHandler, replacements *ReplacementHandler) *HandlerBundle {
	return &HandlerBundle{
		DetectConflictsHandler:    conflicts.DetectConflictsHandler,
		AgentConflictsHandler:     conflicts.AgentConflictsHandler,
		CheckBookingHandler:       conflicts.CheckBookingHandler,
		ValidateScheduleHandler:   conflicts.ValidateScheduleHandler,
		SuggestResolutionsHandler: conflicts.SuggestResolutionsHandler,
		GenerateReportHandler:     conflicts.GenerateReportHandler,
		GetReportHandler:          conflicts.GetReportHandler,

		CreateBookingHandler:     bookings.CreateBookingHandler,
		GetBookingHandler:        bookings.GetBookingHandler,
		RescheduleBookingHandler: bookings.RescheduleBookingHandler,
		CancelBookingHandler:     bookings.CancelBookingHandler,
		WithdrawAgentHandler:     bookings.WithdrawAgentHandler,
		ListAgentBookingsHandler: bookings.ListAgentBookingsHandler,

		RequestReplacementHandler: replacements.RequestReplacementHandler,
		GetReplacementHandler:     replacements.GetReplacementHandler,
		ListByBookingHandler:      replacements.ListByBookingHandler,
		SearchReplacementsHandler: replacements.SearchHandler,
		CandidatesHandler:         replacements.CandidatesHandler,
		ProposeReplacementHandler: replacements.ProposeHandler,
		AutoProposeHandler:        replacements.AutoProposeHandler,
		AcceptReplacementHandler:  replacements.AcceptHandler,
		DeclineReplacementHandler: replacements.DeclineHandler,
		CancelReplacementHandler:  replacements.CancelHandler,
		CanReplaceHandler:         replacements.CanReplaceHandler,
	}
}
