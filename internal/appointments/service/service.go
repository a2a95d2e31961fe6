// Package service implements appointment scheduling: availability windows,
// booking with capacity checks, and cancellation.
package service

import (
	"context"
	"fmt"
	"time"

	"atendimento_backend/internal/appointments/repository"
	"atendimento_backend/internal/appointments/transport"
	"atendimento_backend/internal/events"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/logger"
	"atendimento_backend/platform/phone"

	"github.com/google/uuid"
)

type window struct {
	startHour int
	endHour   int
	periodo   string
}

// Fixed service windows. Two technicians share the agenda, so each window
// takes up to two bookings.
var windows = []window{
	{8, 11, "manha"},
	{11, 14, "tarde"},
	{14, 17, "tarde"},
}

const windowCapacity = 2

// ReminderScheduler enqueues the day-before reminder for a booking.
type ReminderScheduler interface {
	ScheduleAppointmentReminder(ctx context.Context, appointmentID uuid.UUID, runAt time.Time) error
}

// Repo is the persistence surface the service needs.
type Repo interface {
	Create(ctx context.Context, a repository.Appointment) (repository.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (repository.Appointment, error)
	CountOverlapping(ctx context.Context, from, to time.Time) (int, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]repository.Appointment, error)
	FindActiveByPhone(ctx context.Context, telefone string) (repository.Appointment, error)
}

// Service implements appointment use cases.
type Service struct {
	repo             Repo
	bus              events.Bus
	reminders        ReminderScheduler
	reminderLeadTime time.Duration
	loc              *time.Location
	log              *logger.Logger
}

// New creates the appointments service. reminders may be nil when no redis
// is configured; bookings then simply get no reminder.
func New(repo Repo, bus events.Bus, reminders ReminderScheduler, reminderLeadTime time.Duration, log *logger.Logger) *Service {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}
	return &Service{
		repo:             repo,
		bus:              bus,
		reminders:        reminders,
		reminderLeadTime: reminderLeadTime,
		loc:              loc,
		log:              log,
	}
}

// AvailableSlots lists the open windows on a date, optionally filtered by
// period ("manha"/"tarde"). Past windows on the current day are excluded.
func (s *Service) AvailableSlots(ctx context.Context, date string, periodo string) ([]transport.SlotWindow, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, apperr.Validation("data_agendamento must be YYYY-MM-DD").WithOp("appointments.AvailableSlots")
	}

	now := time.Now().In(s.loc)
	var open []transport.SlotWindow
	for _, w := range windows {
		if periodo != "" && w.periodo != periodo {
			continue
		}
		start := day.Add(time.Duration(w.startHour) * time.Hour)
		end := day.Add(time.Duration(w.endHour) * time.Hour)
		if !start.After(now) {
			continue
		}
		booked, err := s.repo.CountOverlapping(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("counting bookings: %w", err)
		}
		if booked >= windowCapacity {
			continue
		}
		open = append(open, transport.SlotWindow{
			Data:       date,
			HoraInicio: fmt.Sprintf("%02d:00", w.startHour),
			HoraFim:    fmt.Sprintf("%02d:00", w.endHour),
			Periodo:    w.periodo,
		})
	}
	return open, nil
}

// Create books an appointment inside one of the service windows. The start
// time must fall on a window boundary and the window must have capacity.
func (s *Service) Create(ctx context.Context, req transport.CreateRequest) (repository.Appointment, error) {
	const op = "appointments.Create"

	start := req.StartsAt.In(s.loc)
	win, ok := windowAt(start)
	if !ok {
		return repository.Appointment{}, apperr.Validation("horário fora da janela de atendimento").WithOp(op)
	}
	if !start.After(time.Now().In(s.loc)) {
		return repository.Appointment{}, apperr.Validation("horário já passou").WithOp(op)
	}
	end := time.Date(start.Year(), start.Month(), start.Day(), win.endHour, 0, 0, 0, s.loc)

	booked, err := s.repo.CountOverlapping(ctx, start, end)
	if err != nil {
		return repository.Appointment{}, fmt.Errorf("counting bookings: %w", err)
	}
	if booked >= windowCapacity {
		return repository.Appointment{}, apperr.Conflict("janela de atendimento lotada").WithOp(op)
	}

	modalidade := req.Modalidade
	if modalidade == "" {
		modalidade = "domicilio"
	}

	appointment, err := s.repo.Create(ctx, repository.Appointment{
		ID:                uuid.New(),
		Nome:              req.Nome,
		Telefone:          phone.Digits(phone.NormalizeE164(req.Telefone)),
		Email:             req.Email,
		Endereco:          req.Endereco,
		Equipamento:       req.Equipamento,
		DescricaoProblema: req.DescricaoProblema,
		Modalidade:        modalidade,
		StartsAt:          start,
		EndsAt:            end,
	})
	if err != nil {
		return repository.Appointment{}, fmt.Errorf("creating appointment: %w", err)
	}

	s.bus.Publish(ctx, events.AppointmentScheduled{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appointment.ID,
		Nome:          appointment.Nome,
		Telefone:      appointment.Telefone,
		Email:         appointment.Email,
		Equipamento:   appointment.Equipamento,
		Modalidade:    appointment.Modalidade,
		StartsAt:      appointment.StartsAt,
	})

	s.scheduleReminder(ctx, appointment)
	return appointment, nil
}

func (s *Service) scheduleReminder(ctx context.Context, appointment repository.Appointment) {
	if s.reminders == nil || s.reminderLeadTime <= 0 {
		return
	}
	runAt := appointment.StartsAt.Add(-s.reminderLeadTime)
	if runAt.Before(time.Now()) {
		return
	}
	if err := s.reminders.ScheduleAppointmentReminder(ctx, appointment.ID, runAt); err != nil {
		// A booking without a reminder is still a booking.
		s.log.Error("scheduling reminder failed", "appointment_id", appointment.ID, "error", err)
	}
}

// Cancel cancels an appointment by id.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, motivo string) (repository.Appointment, error) {
	appointment, err := s.repo.Cancel(ctx, id, motivo)
	if err != nil {
		return repository.Appointment{}, err
	}
	s.bus.Publish(ctx, events.AppointmentCancelled{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appointment.ID,
		Nome:          appointment.Nome,
		Telefone:      appointment.Telefone,
		Email:         appointment.Email,
		Motivo:        motivo,
	})
	return appointment, nil
}

// CancelNextByPhone cancels the caller's next scheduled appointment. Used by
// the assistant when the customer asks to cancel without naming a booking.
func (s *Service) CancelNextByPhone(ctx context.Context, telefone, motivo string) (repository.Appointment, error) {
	normalized := phone.Digits(phone.NormalizeE164(telefone))
	appointment, err := s.repo.FindActiveByPhone(ctx, normalized)
	if err != nil {
		return repository.Appointment{}, err
	}
	return s.Cancel(ctx, appointment.ID, motivo)
}

// Get loads one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (repository.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// ListDay lists the scheduled appointments of one day for the ops agenda.
func (s *Service) ListDay(ctx context.Context, date string) ([]repository.Appointment, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.loc)
	if err != nil {
		return nil, apperr.Validation("date must be YYYY-MM-DD").WithOp("appointments.ListDay")
	}
	return s.repo.ListBetween(ctx, day, day.AddDate(0, 0, 1))
}

func windowAt(start time.Time) (window, bool) {
	for _, w := range windows {
		if start.Hour() == w.startHour && start.Minute() == 0 {
			return w, true
		}
	}
	return window{}, false
}
