package conversation

import (
	"errors"
	"fmt"
	"net/http"

	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/httpkit"
	"atendimento_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module wires the conversation engine into the HTTP layer. Inbound messages
// arrive through the whatsapp gateway module; this module owns the operator
// surface: the pause switch and read access to conversation state.
type Module struct {
	orchestrator *Orchestrator
	store        Store
	pause        *PauseSwitch
	log          *logger.Logger
}

// NewModule creates the conversation module.
func NewModule(orchestrator *Orchestrator, store Store, pause *PauseSwitch, log *logger.Logger) *Module {
	return &Module{orchestrator: orchestrator, store: store, pause: pause, log: log}
}

// Orchestrator exposes the engine for the gateway module.
func (m *Module) Orchestrator() *Orchestrator {
	return m.orchestrator
}

func (m *Module) Name() string {
	return "conversation"
}

// RegisterRoutes mounts the operator endpoints on the authenticated group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Ops.GET("/assistant/pause", m.getPause)
	ctx.Ops.PUT("/assistant/pause", m.setPause)
	ctx.Ops.GET("/conversations/:key", m.getConversation)
}

type pauseResponse struct {
	Paused bool `json:"paused"`
}

type pauseRequest struct {
	Paused *bool `json:"paused" binding:"required"`
}

func (m *Module) getPause(c *gin.Context) {
	httpkit.JSON(c, http.StatusOK, pauseResponse{Paused: m.pause.Paused()})
}

func (m *Module) setPause(c *gin.Context) {
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("body must be {\"paused\": true|false}"))
		return
	}
	previous := m.pause.Set(*req.Paused)
	changedBy := ""
	if v, ok := c.Get(httpkit.ContextUserIDKey); ok {
		changedBy = fmt.Sprint(v)
	}
	m.log.Info("assistant pause switch changed",
		"paused", *req.Paused,
		"previous", previous,
		"changed_by", changedBy,
	)
	httpkit.JSON(c, http.StatusOK, pauseResponse{Paused: m.pause.Paused()})
}

func (m *Module) getConversation(c *gin.Context) {
	key, err := NormalizePeer(c.DefaultQuery("canal", "whatsapp"), c.Param("key"))
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	variants, err := PeerVariants(c.DefaultQuery("canal", "whatsapp"), key)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	state, err := m.store.GetByVariants(c.Request.Context(), variants)
	if errors.Is(err, ErrConversationNotFound) {
		httpkit.HandleError(c, apperr.NotFound("conversation not found"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.JSON(c, http.StatusOK, state)
}
