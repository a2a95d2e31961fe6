package conversation

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Store is the persistence interface the orchestrator depends on.
type Store interface {
	GetByVariants(ctx context.Context, variants []string) (State, error)
	Save(ctx context.Context, state State) (State, error)
	RecordInbound(ctx context.Context, providerMessageID, peerKey, body string) (bool, error)
}

// Repository provides data access for conversation state.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new conversation repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const stateColumns = `
	peer_key, canal, stage,
	orcamento_enviado, dados_pessoais_solicitados, aguardando_escolha_horario,
	nome, endereco, equipamento, marca, problema, bocas, data_agendamento,
	extra, created_at, updated_at`

func scanState(row pgx.Row) (State, error) {
	var s State
	err := row.Scan(
		&s.PeerKey, &s.Canal, &s.Stage,
		&s.Flags.OrcamentoEnviado, &s.Flags.DadosPessoaisSolicitados, &s.Flags.AguardandoEscolhaHorario,
		&s.Nome, &s.Endereco, &s.Equipamento, &s.Marca, &s.Problema, &s.Bocas, &s.DataAgendamento,
		&s.Extra, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// GetByVariants loads the conversation stored under any of the given peer key
// variants. Canonical-first ordering in the variants slice means rows written
// by the current gateway win over legacy representations.
func (r *Repository) GetByVariants(ctx context.Context, variants []string) (State, error) {
	state, err := scanState(r.pool.QueryRow(ctx, `
		SELECT `+stateColumns+`
		FROM conversations
		WHERE peer_key = ANY($1)
		ORDER BY array_position($1, peer_key)
		LIMIT 1
	`, variants))
	if errors.Is(err, pgx.ErrNoRows) {
		return State{}, ErrConversationNotFound
	}
	if err != nil {
		return State{}, err
	}
	// Recompute in case the row predates the stage column.
	state.Stage = DeriveStageFromLegacy(state.Flags)
	return state, nil
}

// Save upserts the conversation under its canonical peer key. The stage is
// derived from the flags one last time so a stale value can never be written.
func (r *Repository) Save(ctx context.Context, state State) (State, error) {
	state.Stage = DeriveStageFromLegacy(state.Flags)
	if state.Extra == nil {
		state.Extra = map[string]string{}
	}
	return scanState(r.pool.QueryRow(ctx, `
		INSERT INTO conversations (
			peer_key, canal, stage,
			orcamento_enviado, dados_pessoais_solicitados, aguardando_escolha_horario,
			nome, endereco, equipamento, marca, problema, bocas, data_agendamento, extra
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (peer_key) DO UPDATE SET
			canal = EXCLUDED.canal,
			stage = EXCLUDED.stage,
			orcamento_enviado = EXCLUDED.orcamento_enviado,
			dados_pessoais_solicitados = EXCLUDED.dados_pessoais_solicitados,
			aguardando_escolha_horario = EXCLUDED.aguardando_escolha_horario,
			nome = EXCLUDED.nome,
			endereco = EXCLUDED.endereco,
			equipamento = EXCLUDED.equipamento,
			marca = EXCLUDED.marca,
			problema = EXCLUDED.problema,
			bocas = EXCLUDED.bocas,
			data_agendamento = EXCLUDED.data_agendamento,
			extra = EXCLUDED.extra,
			updated_at = now()
		RETURNING `+stateColumns+`
	`,
		state.PeerKey, state.Canal, state.Stage,
		state.Flags.OrcamentoEnviado, state.Flags.DadosPessoaisSolicitados, state.Flags.AguardandoEscolhaHorario,
		state.Nome, state.Endereco, state.Equipamento, state.Marca, state.Problema, state.Bocas,
		state.DataAgendamento, state.Extra,
	))
}

// RecordInbound stores a provider message id for deduplication. It returns
// false when the id was seen before, in which case the message must not be
// processed again.
func (r *Repository) RecordInbound(ctx context.Context, providerMessageID, peerKey, body string) (bool, error) {
	if providerMessageID == "" {
		return true, nil
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO inbound_messages (provider_message_id, peer_key, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_message_id) DO NOTHING
	`, providerMessageID, peerKey, body)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
