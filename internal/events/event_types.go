package events

import (
	"time"

	"github.com/spec-kit/apply-loan/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted EventType = "application_submitted"
	EventApplicationCompleted EventType = "application_completed"
	EventApplicationFailed    EventType = "application_failed"
	EventApplicationCancelled EventType = "application_cancelled"
	EventDashboardRequested   EventType = "dashboard_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	SessionID     string      `json:"session_id"`
	ApplicationID string      `json:"application_id,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationPayload carries the application terms for submitted, completed,
// failed and cancelled events.
type ApplicationPayload struct {
	Amount         int64               `json:"amount"`
	Duration       domain.LoanDuration `json:"duration"`
	MonthlyPayment float64             `json:"monthly_payment"`
}

// ApplicationFailedPayload payload.
type ApplicationFailedPayload struct {
	ApplicationPayload
	Reason string `json:"reason"`
}

// DashboardRequestedPayload payload.
type DashboardRequestedPayload struct {
	Destination string `json:"destination"`
}
