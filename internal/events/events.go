// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"atendimento_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Appointment Domain Events
// =============================================================================

// AppointmentScheduled is published after an appointment is booked.
// Subscribers send the confirmation email and schedule the reminder.
type AppointmentScheduled struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	Nome          string    `json:"nome"`
	Telefone      string    `json:"telefone"`
	Email         string    `json:"email,omitempty"`
	Equipamento   string    `json:"equipamento"`
	Modalidade    string    `json:"modalidade"`
	StartsAt      time.Time `json:"startsAt"`
}

func (e AppointmentScheduled) EventName() string { return "appointments.scheduled" }

// AppointmentCancelled is published after an appointment is cancelled.
type AppointmentCancelled struct {
	BaseEvent
	AppointmentID uuid.UUID `json:"appointmentId"`
	Nome          string    `json:"nome"`
	Telefone      string    `json:"telefone"`
	Email         string    `json:"email,omitempty"`
	Motivo        string    `json:"motivo,omitempty"`
}

func (e AppointmentCancelled) EventName() string { return "appointments.cancelled" }

// =============================================================================
// Conversation Domain Events
// =============================================================================

// QuoteIssued is published when a price quote is generated.
type QuoteIssued struct {
	BaseEvent
	Equipamento string `json:"equipamento"`
	ValorMinimo int64  `json:"valorMinimoCentavos"`
	ValorMaximo int64  `json:"valorMaximoCentavos"`
}

func (e QuoteIssued) EventName() string { return "conversation.quote.issued" }
