package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"atendimento_backend/internal/appointments/repository"
	"atendimento_backend/internal/conversation"
	"atendimento_backend/platform/config"
	"atendimento_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Worker processes scheduled reminder tasks and messages the customer on
// WhatsApp.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	sender conversation.MessageSender
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, sender conversation.MessageSender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskAppointmentReminder, w.handleAppointmentReminder)

	return w, nil
}

// Run serves tasks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleAppointmentReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		return err
	}

	apptID, err := uuid.Parse(payload.AppointmentID)
	if err != nil {
		return err
	}

	appt, err := w.repo.GetByID(ctx, apptID)
	if errors.Is(err, repository.ErrAppointmentNotFound) {
		// Deleted bookings get no reminder; do not retry.
		return nil
	}
	if err != nil {
		return err
	}

	if appt.Status != repository.StatusScheduled {
		return nil
	}
	if !appt.StartsAt.After(time.Now()) {
		return nil
	}

	body := fmt.Sprintf(
		"Olá, %s! Lembrete: sua visita técnica para o equipamento %s está marcada para %s. Se precisar remarcar, é só responder por aqui.",
		appt.Nome, appt.Equipamento, appt.StartsAt.Format("02/01/2006 às 15:04"),
	)
	if err := w.sender.SendText(ctx, "whatsapp", appt.Telefone, body); err != nil {
		return fmt.Errorf("sending reminder: %w", err)
	}

	w.log.Info("appointment reminder sent", "appointment_id", appt.ID)
	return nil
}
