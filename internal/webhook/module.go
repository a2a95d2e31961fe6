package webhook

import (
	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the webhook bounded context module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule wires the webhook module.
func NewModule(pool *pgxpool.Pool, engine InboundHandler, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	return &Module{
		handler: NewHandler(engine, repo, log),
		repo:    repo,
	}
}

func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the API-key authenticated inbound endpoint and the
// ops key management routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	inbound := ctx.V1.Group("/inbound")
	inbound.Use(ctx.WebhookRateLimiter.RateLimit())
	inbound.Use(APIKeyAuthMiddleware(m.repo))
	inbound.POST("", m.handler.HandleInboundMessage)

	keys := ctx.Ops.Group("/webhook/keys")
	keys.POST("", m.handler.HandleCreateAPIKey)
	keys.GET("", m.handler.HandleListAPIKeys)
	keys.DELETE("/:keyId", m.handler.HandleRevokeAPIKey)
}

var _ apphttp.Module = (*Module)(nil)
