// Package appointments provides the scheduling bounded context: availability
// windows, bookings and cancellations, plus the ops agenda endpoints.
package appointments

import (
	"time"

	"atendimento_backend/internal/appointments/handler"
	"atendimento_backend/internal/appointments/repository"
	"atendimento_backend/internal/appointments/service"
	"atendimento_backend/internal/events"
	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/logger"
	"atendimento_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module bundles the appointments components.
type Module struct {
	svc     *service.Service
	handler *handler.Handler
}

// NewModule wires repository, service and handler.
func NewModule(
	pool *pgxpool.Pool,
	bus events.Bus,
	reminders service.ReminderScheduler,
	reminderLeadTime time.Duration,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, reminders, reminderLeadTime, log)
	return &Module{
		svc:     svc,
		handler: handler.New(svc, val, log),
	}
}

// Service exposes the scheduling service for the tool adapters.
func (m *Module) Service() *service.Service {
	return m.svc
}

func (m *Module) Name() string {
	return "appointments"
}

// RegisterRoutes mounts the ops agenda routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Ops.Group("/appointments")
	group.GET("", m.handler.ListDay)
	group.GET("/slots", m.handler.Slots)
	group.POST("", m.handler.Create)
	group.POST("/:id/cancel", m.handler.Cancel)
}
