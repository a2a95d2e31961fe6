package service

import (
	"context"
	"testing"
	"time"

	"atendimento_backend/internal/appointments/repository"
	"atendimento_backend/internal/appointments/transport"
	"atendimento_backend/internal/events"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	created     []repository.Appointment
	overlapping int
	active      *repository.Appointment
}

func (f *fakeRepo) Create(_ context.Context, a repository.Appointment) (repository.Appointment, error) {
	a.Status = repository.StatusScheduled
	f.created = append(f.created, a)
	return a, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Appointment, error) {
	for _, a := range f.created {
		if a.ID == id {
			return a, nil
		}
	}
	return repository.Appointment{}, repository.ErrAppointmentNotFound
}

func (f *fakeRepo) Cancel(_ context.Context, id uuid.UUID, reason string) (repository.Appointment, error) {
	for i, a := range f.created {
		if a.ID == id {
			f.created[i].Status = repository.StatusCancelled
			f.created[i].CancelReason = reason
			return f.created[i], nil
		}
	}
	return repository.Appointment{}, repository.ErrAppointmentNotFound
}

func (f *fakeRepo) CountOverlapping(_ context.Context, _, _ time.Time) (int, error) {
	return f.overlapping, nil
}

func (f *fakeRepo) ListBetween(_ context.Context, _, _ time.Time) ([]repository.Appointment, error) {
	return f.created, nil
}

func (f *fakeRepo) FindActiveByPhone(_ context.Context, _ string) (repository.Appointment, error) {
	if f.active == nil {
		return repository.Appointment{}, repository.ErrAppointmentNotFound
	}
	return *f.active, nil
}

type capturingBus struct {
	published []events.Event
}

func (b *capturingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *capturingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *capturingBus) Subscribe(string, events.Handler) {}

type capturingReminders struct {
	scheduled []time.Time
}

func (r *capturingReminders) ScheduleAppointmentReminder(_ context.Context, _ uuid.UUID, runAt time.Time) error {
	r.scheduled = append(r.scheduled, runAt)
	return nil
}

func newService(repo *fakeRepo, bus *capturingBus, reminders ReminderScheduler) *Service {
	return New(repo, bus, reminders, 24*time.Hour, logger.New("test"))
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestAvailableSlots_AllWindowsOpen(t *testing.T) {
	svc := newService(&fakeRepo{}, &capturingBus{}, nil)

	slots, err := svc.AvailableSlots(context.Background(), futureDate(), "")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("slots = %d, want 3", len(slots))
	}
	if slots[0].HoraInicio != "08:00" || slots[0].Periodo != "manha" {
		t.Errorf("first slot = %+v", slots[0])
	}
}

func TestAvailableSlots_PeriodFilter(t *testing.T) {
	svc := newService(&fakeRepo{}, &capturingBus{}, nil)

	slots, err := svc.AvailableSlots(context.Background(), futureDate(), "manha")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("slots = %d, want 1", len(slots))
	}
}

func TestAvailableSlots_FullWindowsHidden(t *testing.T) {
	svc := newService(&fakeRepo{overlapping: windowCapacity}, &capturingBus{}, nil)

	slots, err := svc.AvailableSlots(context.Background(), futureDate(), "")
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("full windows must be hidden, got %v", slots)
	}
}

func TestAvailableSlots_RejectsBadDate(t *testing.T) {
	svc := newService(&fakeRepo{}, &capturingBus{}, nil)
	if _, err := svc.AvailableSlots(context.Background(), "02/09/2026", ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func createRequest(startHour int) transport.CreateRequest {
	day := time.Now().AddDate(0, 0, 7)
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	return transport.CreateRequest{
		Nome:              "Maria Souza",
		Telefone:          "+5511999990002",
		Endereco:          "Rua das Flores, 10",
		Equipamento:       "fogão",
		DescricaoProblema: "não acende",
		StartsAt:          time.Date(day.Year(), day.Month(), day.Day(), startHour, 0, 0, 0, loc),
	}
}

func TestCreate_PublishesEventAndSchedulesReminder(t *testing.T) {
	repo := &fakeRepo{}
	bus := &capturingBus{}
	reminders := &capturingReminders{}
	svc := newService(repo, bus, reminders)

	appointment, err := svc.Create(context.Background(), createRequest(14))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if appointment.Telefone != "5511999990002" {
		t.Errorf("telefone = %q, want normalized digits", appointment.Telefone)
	}
	if appointment.Modalidade != "domicilio" {
		t.Errorf("modalidade default = %q", appointment.Modalidade)
	}
	if len(bus.published) != 1 {
		t.Fatalf("events = %d, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(events.AppointmentScheduled); !ok {
		t.Errorf("event = %T", bus.published[0])
	}
	if len(reminders.scheduled) != 1 {
		t.Fatalf("reminders = %d, want 1", len(reminders.scheduled))
	}
	wantRunAt := appointment.StartsAt.Add(-24 * time.Hour)
	if !reminders.scheduled[0].Equal(wantRunAt) {
		t.Errorf("reminder at %v, want %v", reminders.scheduled[0], wantRunAt)
	}
}

func TestCreate_RejectsOffWindowStart(t *testing.T) {
	svc := newService(&fakeRepo{}, &capturingBus{}, nil)
	if _, err := svc.Create(context.Background(), createRequest(9)); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestCreate_RejectsFullWindow(t *testing.T) {
	svc := newService(&fakeRepo{overlapping: windowCapacity}, &capturingBus{}, nil)
	if _, err := svc.Create(context.Background(), createRequest(8)); !apperr.Is(err, apperr.KindConflict) {
		t.Errorf("err = %v, want conflict error", err)
	}
}

func TestCancelNextByPhone(t *testing.T) {
	active := repository.Appointment{
		ID:       uuid.New(),
		Telefone: "5511999990002",
		StartsAt: time.Now().AddDate(0, 0, 3),
		Status:   repository.StatusScheduled,
	}
	repo := &fakeRepo{created: []repository.Appointment{active}, active: &active}
	bus := &capturingBus{}
	svc := newService(repo, bus, nil)

	cancelled, err := svc.CancelNextByPhone(context.Background(), "+55 11 99999-0002", "cliente desistiu")
	if err != nil {
		t.Fatalf("CancelNextByPhone: %v", err)
	}
	if cancelled.Status != repository.StatusCancelled {
		t.Errorf("status = %q", cancelled.Status)
	}
	if len(bus.published) != 1 {
		t.Fatalf("events = %d, want 1", len(bus.published))
	}
	if _, ok := bus.published[0].(events.AppointmentCancelled); !ok {
		t.Errorf("event = %T", bus.published[0])
	}
}
