package orders

import (
	"errors"
	"net/http"
	"time"

	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/httpkit"
	"atendimento_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module exposes the orders service and its ops routes.
type Module struct {
	svc *Service
	log *logger.Logger
}

// NewModule wires the orders module.
func NewModule(svc *Service, log *logger.Logger) *Module {
	return &Module{svc: svc, log: log}
}

// Service exposes the orders service for the tool adapters.
func (m *Module) Service() *Service {
	return m.svc
}

func (m *Module) Name() string {
	return "orders"
}

// RegisterRoutes mounts the workshop board routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Ops.Group("/orders")
	group.GET("", m.listOpen)
	group.GET("/:codigo", m.getByCode)
	group.POST("", m.create)
	group.PATCH("/:codigo/status", m.updateStatus)
}

type orderResponse struct {
	ID          string     `json:"id"`
	Codigo      string     `json:"codigo"`
	Nome        string     `json:"nome"`
	Telefone    string     `json:"telefone"`
	Equipamento string     `json:"equipamento"`
	Descricao   string     `json:"descricao"`
	Status      string     `json:"status"`
	Previsao    *time.Time `json:"previsao,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toResponse(o ServiceOrder) orderResponse {
	return orderResponse{
		ID:          o.ID.String(),
		Codigo:      o.Codigo,
		Nome:        o.Nome,
		Telefone:    o.Telefone,
		Equipamento: o.Equipamento,
		Descricao:   o.Descricao,
		Status:      o.Status,
		Previsao:    o.Previsao,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func (m *Module) listOpen(c *gin.Context) {
	out, err := m.svc.ListOpen(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	responses := make([]orderResponse, 0, len(out))
	for _, o := range out {
		responses = append(responses, toResponse(o))
	}
	httpkit.OK(c, responses)
}

func (m *Module) getByCode(c *gin.Context) {
	order, err := m.svc.StatusByCode(c.Request.Context(), c.Param("codigo"))
	if errors.Is(err, ErrOrderNotFound) {
		httpkit.HandleError(c, apperr.NotFound("service order not found"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(order))
}

type createOrderRequest struct {
	Nome        string     `json:"nome" binding:"required,min=2"`
	Telefone    string     `json:"telefone" binding:"required,min=8"`
	Equipamento string     `json:"equipamento" binding:"required"`
	Descricao   string     `json:"descricao" binding:"required"`
	Previsao    *time.Time `json:"previsao"`
}

func (m *Module) create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	order, err := m.svc.Create(c.Request.Context(), ServiceOrder{
		Nome:        req.Nome,
		Telefone:    req.Telefone,
		Equipamento: req.Equipamento,
		Descricao:   req.Descricao,
		Previsao:    req.Previsao,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusCreated, toResponse(order))
}

type updateStatusRequest struct {
	Status   string     `json:"status" binding:"required"`
	Previsao *time.Time `json:"previsao"`
}

func (m *Module) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	order, err := m.svc.UpdateStatus(c.Request.Context(), c.Param("codigo"), req.Status, req.Previsao)
	if errors.Is(err, ErrOrderNotFound) {
		httpkit.HandleError(c, apperr.NotFound("service order not found"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, toResponse(order))
}
