// Package handler exposes the appointments ops endpoints.
package handler

import (
	"errors"
	"net/http"

	"atendimento_backend/internal/appointments/repository"
	"atendimento_backend/internal/appointments/service"
	"atendimento_backend/internal/appointments/transport"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/httpkit"
	"atendimento_backend/platform/logger"
	"atendimento_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler serves the operator-facing appointment routes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

// New creates the appointments handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// ListDay handles GET /appointments?date=YYYY-MM-DD.
func (h *Handler) ListDay(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httpkit.HandleError(c, apperr.BadRequest("date query parameter is required"))
		return
	}
	appointments, err := h.svc.ListDay(c.Request.Context(), date)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]transport.AppointmentResponse, 0, len(appointments))
	for _, a := range appointments {
		out = append(out, toResponse(a))
	}
	httpkit.OK(c, out)
}

// Slots handles GET /appointments/slots?date=YYYY-MM-DD&periodo=manha.
func (h *Handler) Slots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		httpkit.HandleError(c, apperr.BadRequest("date query parameter is required"))
		return
	}
	slots, err := h.svc.AvailableSlots(c.Request.Context(), date, c.Query("periodo"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, slots)
}

// Create handles POST /appointments.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}
	appointment, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(appointment))
}

// Cancel handles POST /appointments/:id/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid appointment id"))
		return
	}
	var req transport.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, http.ErrBodyNotAllowed) {
		req = transport.CancelRequest{}
	}
	appointment, err := h.svc.Cancel(c.Request.Context(), id, req.Motivo)
	if errors.Is(err, repository.ErrAppointmentNotFound) {
		httpkit.HandleError(c, apperr.NotFound("appointment not found"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(appointment))
}

func toResponse(a repository.Appointment) transport.AppointmentResponse {
	return transport.AppointmentResponse{
		ID:                a.ID.String(),
		Nome:              a.Nome,
		Telefone:          a.Telefone,
		Email:             a.Email,
		Endereco:          a.Endereco,
		Equipamento:       a.Equipamento,
		DescricaoProblema: a.DescricaoProblema,
		Modalidade:        a.Modalidade,
		StartsAt:          a.StartsAt,
		EndsAt:            a.EndsAt,
		Status:            a.Status,
	}
}
