package adapters

import (
	"context"

	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/internal/orders"
)

// OrdersAdapter implements tools.OrderBackend over the orders service.
type OrdersAdapter struct {
	svc *orders.Service
}

// NewOrdersAdapter creates the orders adapter.
func NewOrdersAdapter(svc *orders.Service) *OrdersAdapter {
	return &OrdersAdapter{svc: svc}
}

// OrderStatus resolves a customer-typed order code and reports the repair
// status in customer-facing wording.
func (a *OrdersAdapter) OrderStatus(ctx context.Context, params tools.OrderStatusParams) (tools.OrderStatusResult, error) {
	order, err := a.svc.StatusByCode(ctx, params.CodigoOrdem)
	if err != nil {
		return tools.OrderStatusResult{}, err
	}
	status := orders.StatusLabel[order.Status]
	if status == "" {
		status = order.Status
	}
	result := tools.OrderStatusResult{
		CodigoOrdem: order.Codigo,
		Status:      status,
	}
	if order.Previsao != nil {
		result.Previsao = order.Previsao.Format("02/01/2006")
	}
	return result, nil
}
