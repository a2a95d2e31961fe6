package orders

import (
	"context"
	"time"

	"atendimento_backend/platform/apperr"
	"atendimento_backend/platform/logger"
	"atendimento_backend/platform/phone"
)

// Service implements service-order use cases.
type Service struct {
	repo *Repository
	log  *logger.Logger
}

// NewService creates the orders service.
func NewService(repo *Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// StatusByCode resolves a customer-typed code and returns the order. The
// code is normalized first, so "os 1042" finds "OS-1042".
func (s *Service) StatusByCode(ctx context.Context, rawCode string) (ServiceOrder, error) {
	codigo := NormalizeCode(rawCode)
	if codigo == "" {
		return ServiceOrder{}, apperr.Validation("código de ordem inválido").WithOp("orders.StatusByCode")
	}
	return s.repo.GetByCode(ctx, codigo)
}

// Create opens a new order for a dropped-off appliance.
func (s *Service) Create(ctx context.Context, o ServiceOrder) (ServiceOrder, error) {
	o.Telefone = phone.Digits(phone.NormalizeE164(o.Telefone))
	return s.repo.Create(ctx, o)
}

// UpdateStatus moves an order through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, rawCode, status string, previsao *time.Time) (ServiceOrder, error) {
	const op = "orders.UpdateStatus"
	if !ValidStatus(status) {
		return ServiceOrder{}, apperr.Validation("status desconhecido: " + status).WithOp(op)
	}
	codigo := NormalizeCode(rawCode)
	if codigo == "" {
		return ServiceOrder{}, apperr.Validation("código de ordem inválido").WithOp(op)
	}
	return s.repo.UpdateStatus(ctx, codigo, status, previsao)
}

// ListOpen lists undelivered orders for the workshop board.
func (s *Service) ListOpen(ctx context.Context) ([]ServiceOrder, error) {
	return s.repo.ListOpen(ctx)
}
