package whatsapp

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"atendimento_backend/internal/conversation"
	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/httpkit"
	"atendimento_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// InboundHandler is the conversation engine entry point for gateway messages.
type InboundHandler interface {
	HandleInbound(ctx context.Context, msg conversation.InboundMessage) error
}

// Module receives inbound message callbacks from the gowa gateway and hands
// them to the conversation engine.
type Module struct {
	handler InboundHandler
	secret  string
	log     *logger.Logger
}

// NewModule creates the gateway webhook module. secret is the shared value
// the gateway sends in X-Webhook-Secret; empty disables the check (local
// development only).
func NewModule(handler InboundHandler, secret string, log *logger.Logger) *Module {
	return &Module{handler: handler, secret: secret, log: log}
}

func (m *Module) Name() string {
	return "whatsapp"
}

// RegisterRoutes mounts the inbound webhook, rate limited by caller IP.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/whatsapp")
	group.Use(ctx.WebhookRateLimiter.RateLimit())
	group.POST("/webhook", m.inbound)
}

// inboundPayload mirrors the gowa message webhook body. Unknown fields are
// ignored so gateway upgrades do not break intake.
type inboundPayload struct {
	MessageID string `json:"message_id"`
	From      string `json:"from" binding:"required"`
	Text      string `json:"text"`
	DeviceID  string `json:"device_id"`
}

func (m *Module) inbound(c *gin.Context) {
	if !m.authorized(c) {
		m.log.Warn("webhook rejected: bad secret", "client_ip", c.ClientIP())
		httpkit.Error(c, http.StatusUnauthorized, "invalid webhook secret", nil)
		return
	}

	var payload inboundPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", nil)
		return
	}
	if payload.Text == "" {
		// Media, reactions and status updates are acknowledged and dropped.
		c.Status(http.StatusNoContent)
		return
	}

	err := m.handler.HandleInbound(c.Request.Context(), conversation.InboundMessage{
		Canal:             "whatsapp",
		From:              payload.From,
		Body:              payload.Text,
		ProviderMessageID: payload.MessageID,
	})
	if err != nil {
		m.log.Error("inbound message handling failed", "error", err)
		// The gateway retries on 5xx; conversational errors were already
		// absorbed upstream, so anything here is infrastructure.
		httpkit.Error(c, http.StatusInternalServerError, "message handling failed", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// authorized compares the shared webhook secret in constant time over sha256
// digests so length differences leak nothing.
func (m *Module) authorized(c *gin.Context) bool {
	if m.secret == "" {
		return true
	}
	got := sha256.Sum256([]byte(c.GetHeader("X-Webhook-Secret")))
	want := sha256.Sum256([]byte(m.secret))
	return subtle.ConstantTimeCompare(got[:], want[:]) == 1
}
