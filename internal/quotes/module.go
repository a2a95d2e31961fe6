package quotes

import (
	"strconv"

	apphttp "atendimento_backend/internal/http"
	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/httpkit"
	"atendimento_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module exposes the quotes service and its ops routes.
type Module struct {
	svc *Service
	log *logger.Logger
}

// NewModule wires the quotes module.
func NewModule(svc *Service, log *logger.Logger) *Module {
	return &Module{svc: svc, log: log}
}

// Service exposes the quotes service for the tool adapters.
func (m *Module) Service() *Service {
	return m.svc
}

func (m *Module) Name() string {
	return "quotes"
}

// RegisterRoutes mounts the ops quote routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Ops.Group("/quotes")
	group.GET("", m.listRecent)
	group.POST("/preview", m.preview)
}

func (m *Module) listRecent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	out, err := m.svc.ListRecent(c.Request.Context(), limit)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, out)
}

type previewRequest struct {
	Equipamento       string `json:"equipamento" binding:"required"`
	Marca             string `json:"marca"`
	DescricaoProblema string `json:"descricao_problema" binding:"required"`
	Bocas             int    `json:"bocas" binding:"omitempty,gte=1,lte=8"`
}

// preview prices a repair without persisting it, for the ops team to answer
// phone enquiries.
func (m *Module) preview(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest("invalid request body"))
		return
	}
	estimate := Calculate(Input{
		Equipamento:       req.Equipamento,
		Marca:             req.Marca,
		DescricaoProblema: req.DescricaoProblema,
		Bocas:             req.Bocas,
	})
	httpkit.OK(c, gin.H{
		"valor_minimo_centavos": estimate.ValorMinimo,
		"valor_maximo_centavos": estimate.ValorMaximo,
		"observacoes":           estimate.Observacoes,
	})
}
