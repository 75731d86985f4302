package models

import "time"

// ConflictType enumerates the scheduling rule violations the detector can
// report. The set is closed; handlers and resolution tables switch on it.
type ConflictType string

const (
	ConflictBookingOverlap      ConflictType = "booking_overlap"
	ConflictAvailabilityMissing ConflictType = "availability_missing"
	ConflictDoubleBooking       ConflictType = "double_booking"
	ConflictTravelTime          ConflictType = "travel_time"
	ConflictMaxHoursExceeded    ConflictType = "max_hours_exceeded"
	ConflictBreakMissing        ConflictType = "break_missing"
	ConflictReplacement         ConflictType = "replacement_conflict"
)

// ConflictSeverity ranks how serious a conflict is. Critical and high
// severities block a booking from being committed; medium and low are
// surfaced as warnings.
type ConflictSeverity string

const (
	SeverityCritical ConflictSeverity = "critical"
	SeverityHigh     ConflictSeverity = "high"
	SeverityMedium   ConflictSeverity = "medium"
	SeverityLow      ConflictSeverity = "low"
)

// Rank returns the sort rank of the severity, critical first.
func (s ConflictSeverity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	}
	return 4
}

// Blocking reports whether a conflict of this severity prevents a booking
// from being committed.
func (s ConflictSeverity) Blocking() bool {
	return s == SeverityCritical || s == SeverityHigh
}

// Conflict is a detected violation of scheduling or labor rules for a given
// agent and time window. Conflicts are transient query results and are never
// persisted.
type Conflict struct {
	Type     ConflictType     `json:"type"`
	Severity ConflictSeverity `json:"severity"`
	Date     time.Time        `json:"date"`
	Message  string           `json:"message"`
	Details  map[string]any   `json:"details,omitempty"`
}

// ConflictResolution is an advisory remedy for a conflict, ranked by
// priority (1 = try first).
type ConflictResolution struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

// BookingValidationError pairs one proposed booking with the conflicts that
// reject it during batch validation.
type BookingValidationError struct {
	Index     int        `json:"index"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	Conflicts []Conflict `json:"conflicts"`
}

// ScheduleValidation is the outcome of validating a batch of proposed
// bookings against an agent's calendar.
type ScheduleValidation struct {
	Valid      bool                     `json:"valid"`
	Errors     []BookingValidationError `json:"errors,omitempty"`
	ValidCount int                      `json:"validCount"`
}

// AgentConflictSummary aggregates one agent's conflicts inside a report.
type AgentConflictSummary struct {
	AgentID    string         `json:"agentId"`
	AgentName  string         `json:"agentName,omitempty"`
	Conflicts  []Conflict     `json:"conflicts"`
	BySeverity map[string]int `json:"bySeverity"`
}

// ConflictReport is the result of a batch conflict sweep over many agents.
// Reports are cached, never persisted.
type ConflictReport struct {
	ID          string                 `json:"id"`
	GeneratedAt time.Time              `json:"generatedAt"`
	PeriodStart time.Time              `json:"periodStart"`
	PeriodEnd   time.Time              `json:"periodEnd"`
	Agents      []AgentConflictSummary `json:"agents"`
	BySeverity  map[string]int         `json:"bySeverity"`
	ByType      map[string]int         `json:"byType"`
}
