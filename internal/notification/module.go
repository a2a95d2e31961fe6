// Package notification turns domain events into outbound customer messages.
// It listens on the event bus; nothing else in the system knows emails exist.
package notification

import (
	"context"
	"fmt"

	"atendimento_backend/internal/email"
	"atendimento_backend/internal/events"
	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/logger"
)

// Module sends confirmation and cancellation notices.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// NewModule creates the notification module. sender may be nil when SMTP is
// not configured; events are then consumed and dropped.
func NewModule(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

func (m *Module) Name() string {
	return "notification"
}

// RegisterRoutes is a no-op; the module only consumes events.
func (m *Module) RegisterRoutes(_ *apphttp.RouterContext) {}

// Subscribe registers the event handlers on the bus.
func (m *Module) Subscribe(bus events.Bus) {
	bus.Subscribe(events.AppointmentScheduled{}.EventName(), events.HandlerFunc(m.onAppointmentScheduled))
	bus.Subscribe(events.AppointmentCancelled{}.EventName(), events.HandlerFunc(m.onAppointmentCancelled))
}

func (m *Module) onAppointmentScheduled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentScheduled)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if m.sender == nil || e.Email == "" {
		return nil
	}
	err := m.sender.SendAppointmentConfirmation(
		ctx, e.Email, e.Nome, e.Equipamento,
		e.StartsAt.Format("02/01/2006 às 15:04"), e.Modalidade,
	)
	if err != nil {
		m.log.Error("sending confirmation email failed", "appointment_id", e.AppointmentID, "error", err)
		return err
	}
	m.log.Info("confirmation email sent", "appointment_id", e.AppointmentID)
	return nil
}

func (m *Module) onAppointmentCancelled(ctx context.Context, event events.Event) error {
	e, ok := event.(events.AppointmentCancelled)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}
	if m.sender == nil || e.Email == "" {
		return nil
	}
	if err := m.sender.SendAppointmentCancelled(ctx, e.Email, e.Nome, e.Motivo); err != nil {
		m.log.Error("sending cancellation email failed", "appointment_id", e.AppointmentID, "error", err)
		return err
	}
	return nil
}
