package models

// Notification event names pushed to clients and agents.
const (
	EventReplacementRequested = "replacement_requested"
	EventReplacementProposed  = "replacement_proposed"
	EventReplacementAccepted  = "replacement_accepted"
	EventReplacementDeclined  = "replacement_declined"
	EventReplacementCancelled = "replacement_cancelled"
	EventBookingReassigned    = "booking_reassigned"
	EventBookingRescheduled   = "booking_rescheduled"
	EventBookingCancelled     = "booking_cancelled"
	EventBookingReminder      = "booking_reminder"
	EventConflictDetected     = "conflict_detected"
)

// Recipient roles for notification routing.
const (
	RoleClient = "client"
	RoleAgent  = "agent"
)

// NotificationEvent is a queued push notification. Delivery is best-effort;
// failures are logged and never affect the operation that emitted the event.
type NotificationEvent struct {
	Event         string            `json:"event"`
	RecipientID   string            `json:"recipientId"`
	RecipientRole string            `json:"recipientRole"`
	Title         string            `json:"title"`
	Body          string            `json:"body"`
	Data          map[string]string `json:"data,omitempty"`
}
