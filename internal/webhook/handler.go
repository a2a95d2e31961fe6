package webhook

import (
	"context"
	"net/http"

	"atendimento_backend/internal/conversation"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/httpkit"
	"atendimento_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InboundHandler is the conversation engine entry point.
type InboundHandler interface {
	HandleInbound(ctx context.Context, msg conversation.InboundMessage) error
}

// Handler serves the inbound endpoint and the key management routes.
type Handler struct {
	engine InboundHandler
	repo   *Repository
	log    *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(engine InboundHandler, repo *Repository, log *logger.Logger) *Handler {
	return &Handler{engine: engine, repo: repo, log: log}
}

// inboundRequest is a channel-agnostic inbound message. canal defaults to
// "web" so chat widgets do not collide with phone-keyed conversations.
type inboundRequest struct {
	MessageID string `json:"message_id"`
	Canal     string `json:"canal"`
	From      string `json:"from" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// HandleInboundMessage feeds an external message into the conversation
// engine.
func (h *Handler) HandleInboundMessage(c *gin.Context) {
	var req inboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid inbound payload"))
		return
	}
	canal := req.Canal
	if canal == "" {
		canal = "web"
	}

	err := h.engine.HandleInbound(c.Request.Context(), conversation.InboundMessage{
		Canal:             canal,
		From:              req.From,
		Body:              req.Text,
		ProviderMessageID: req.MessageID,
	})
	if err != nil {
		h.log.Error("inbound webhook handling failed", "canal", canal, "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "message handling failed", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type createKeyRequest struct {
	Name string `json:"name" binding:"required,min=2"`
}

// HandleCreateAPIKey mints a new key and returns the plaintext once.
func (h *Handler) HandleCreateAPIKey(c *gin.Context) {
	var req createKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}

	plaintext, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	key, err := h.repo.Create(c.Request.Context(), req.Name, hash, prefix)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{
		"id":         key.ID,
		"name":       key.Name,
		"key":        plaintext,
		"key_prefix": key.KeyPrefix,
		"created_at": key.CreatedAt,
	})
}

// HandleListAPIKeys lists keys without their hashes.
func (h *Handler) HandleListAPIKeys(c *gin.Context) {
	keys, err := h.repo.List(c.Request.Context())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	out := make([]gin.H, 0, len(keys))
	for _, key := range keys {
		out = append(out, gin.H{
			"id":         key.ID,
			"name":       key.Name,
			"key_prefix": key.KeyPrefix,
			"is_active":  key.IsActive,
			"created_at": key.CreatedAt,
		})
	}
	httpkit.OK(c, out)
}

// HandleRevokeAPIKey deactivates a key.
func (h *Handler) HandleRevokeAPIKey(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("keyId"))
	if err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid key id"))
		return
	}
	if err := h.repo.Revoke(c.Request.Context(), keyID); err != nil {
		if err == ErrAPIKeyNotFound {
			httpkit.HandleError(c, apperr.NotFound("API key not found"))
			return
		}
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
