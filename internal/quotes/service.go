package quotes

import (
	"context"
	"fmt"
	"strings"

	"atendimento_backend/internal/events"
	"atendimento_backend/platform/logger"
)

// ModalityResolver maps a repair description to the service modalities the
// shop offers for it. Wired to the conversation policy table at startup.
type ModalityResolver func(text string) []string

// Service prices repairs and records every issued quote.
type Service struct {
	repo       *Repository
	bus        events.Bus
	modalities ModalityResolver
	log        *logger.Logger
}

// NewService creates the quotes service. resolver may be nil; quotes then
// carry no modality hint.
func NewService(repo *Repository, bus events.Bus, resolver ModalityResolver, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, modalities: resolver, log: log}
}

// Generate calculates, persists and announces a quote.
func (s *Service) Generate(ctx context.Context, in Input) (Quote, error) {
	estimate := Calculate(in)

	var modalidades []string
	if s.modalities != nil {
		modalidades = s.modalities(strings.TrimSpace(in.Equipamento + " " + in.DescricaoProblema))
	}

	quote, err := s.repo.Save(ctx, Quote{
		Equipamento:       in.Equipamento,
		Marca:             in.Marca,
		DescricaoProblema: in.DescricaoProblema,
		Bocas:             in.Bocas,
		ValorMinimo:       estimate.ValorMinimo,
		ValorMaximo:       estimate.ValorMaximo,
		Modalidades:       modalidades,
		Observacoes:       estimate.Observacoes,
	})
	if err != nil {
		return Quote{}, fmt.Errorf("saving quote: %w", err)
	}

	s.bus.Publish(ctx, events.QuoteIssued{
		BaseEvent:   events.NewBaseEvent(),
		Equipamento: quote.Equipamento,
		ValorMinimo: quote.ValorMinimo,
		ValorMaximo: quote.ValorMaximo,
	})
	return quote, nil
}

// ListRecent exposes the latest quotes for the ops dashboard.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Quote, error) {
	return s.repo.ListRecent(ctx, limit)
}
