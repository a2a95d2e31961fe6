package adapters

import (
	"context"

	"atendimento_backend/internal/conversation/tools"
	"atendimento_backend/internal/quotes"
)

// QuotesAdapter implements tools.QuoteBackend over the quotes service.
type QuotesAdapter struct {
	svc *quotes.Service
}

// NewQuotesAdapter creates the quotes adapter.
func NewQuotesAdapter(svc *quotes.Service) *QuotesAdapter {
	return &QuotesAdapter{svc: svc}
}

// GenerateQuote prices the described repair and records the issued quote.
func (a *QuotesAdapter) GenerateQuote(ctx context.Context, params tools.QuoteParams) (tools.QuoteResult, error) {
	quote, err := a.svc.Generate(ctx, quotes.Input{
		Equipamento:       params.Equipamento,
		Marca:             params.Marca,
		DescricaoProblema: params.DescricaoProblema,
		Bocas:             params.Bocas,
	})
	if err != nil {
		return tools.QuoteResult{}, err
	}
	return tools.QuoteResult{
		ValorMinimo: quote.ValorMinimo,
		ValorMaximo: quote.ValorMaximo,
		Modalidades: quote.Modalidades,
		Observacoes: quote.Observacoes,
	}, nil
}
