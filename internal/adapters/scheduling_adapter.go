// Package adapters bridges the conversation tool executor to the domain
// services. Each adapter translates tool parameters into a service call and
// maps the result back into the tool vocabulary.
package adapters

import (
	"context"
	"fmt"
	"time"

	"atendimento_backend/internal/appointments/service"
	"atendimento_backend/internal/appointments/transport"
	"atendimento_backend/internal/conversation/tools"

	"github.com/google/uuid"
)

// SchedulingAdapter implements tools.SchedulingBackend over the appointments
// service.
type SchedulingAdapter struct {
	svc *service.Service
	loc *time.Location
}

// NewSchedulingAdapter creates the scheduling adapter.
func NewSchedulingAdapter(svc *service.Service) *SchedulingAdapter {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}
	return &SchedulingAdapter{svc: svc, loc: loc}
}

// ListAvailableSlots returns the open windows on a date.
func (a *SchedulingAdapter) ListAvailableSlots(ctx context.Context, params tools.AvailabilityParams) ([]tools.Slot, error) {
	windows, err := a.svc.AvailableSlots(ctx, params.DataAgendamento, params.Periodo)
	if err != nil {
		return nil, err
	}
	slots := make([]tools.Slot, 0, len(windows))
	for _, w := range windows {
		slots = append(slots, tools.Slot{
			Data:       w.Data,
			HoraInicio: w.HoraInicio,
			HoraFim:    w.HoraFim,
		})
	}
	return slots, nil
}

// CreateAppointment books a visit at the requested window.
func (a *SchedulingAdapter) CreateAppointment(ctx context.Context, params tools.CreateAppointmentParams) (tools.AppointmentResult, error) {
	startsAt, err := time.ParseInLocation("2006-01-02 15:04", params.DataAgendamento+" "+params.HoraInicio, a.loc)
	if err != nil {
		return tools.AppointmentResult{}, fmt.Errorf("parsing appointment start: %w", err)
	}
	appointment, err := a.svc.Create(ctx, transport.CreateRequest{
		Nome:              params.Nome,
		Telefone:          params.Telefone,
		Endereco:          params.Endereco,
		Equipamento:       params.Equipamento,
		DescricaoProblema: params.DescricaoProblema,
		Modalidade:        params.Modalidade,
		StartsAt:          startsAt,
	})
	if err != nil {
		return tools.AppointmentResult{}, err
	}
	return tools.AppointmentResult{
		ID:              appointment.ID.String(),
		DataAgendamento: appointment.StartsAt,
		Modalidade:      appointment.Modalidade,
	}, nil
}

// CancelAppointment cancels a booking by id, or the customer's next scheduled
// booking when only the phone is known.
func (a *SchedulingAdapter) CancelAppointment(ctx context.Context, params tools.CancelAppointmentParams) error {
	if params.AgendamentoID == "" {
		_, err := a.svc.CancelNextByPhone(ctx, params.Telefone, params.Motivo)
		return err
	}
	id, err := uuid.Parse(params.AgendamentoID)
	if err != nil {
		return fmt.Errorf("parsing appointment id: %w", err)
	}
	_, err = a.svc.Cancel(ctx, id, params.Motivo)
	return err
}
