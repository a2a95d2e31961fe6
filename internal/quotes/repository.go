package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Quote is a persisted price estimate.
type Quote struct {
	ID                uuid.UUID
	Equipamento       string
	Marca             string
	DescricaoProblema string
	Bocas             int
	ValorMinimo       int64
	ValorMaximo       int64
	Modalidades       []string
	Observacoes       string
	CreatedAt         time.Time
}

// Repository persists issued quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the quotes repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save stores an issued quote.
func (r *Repository) Save(ctx context.Context, q Quote) (Quote, error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO quotes (
			id, equipamento, marca, descricao_problema, bocas,
			valor_minimo_centavos, valor_maximo_centavos, modalidades, observacoes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		q.ID, q.Equipamento, q.Marca, q.DescricaoProblema, q.Bocas,
		q.ValorMinimo, q.ValorMaximo, q.Modalidades, q.Observacoes,
	).Scan(&q.CreatedAt)
	if err != nil {
		return Quote{}, fmt.Errorf("inserting quote: %w", err)
	}
	return q, nil
}

// ListRecent returns the latest issued quotes for the ops dashboard.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Quote, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, equipamento, marca, descricao_problema, bocas,
		       valor_minimo_centavos, valor_maximo_centavos, modalidades,
		       observacoes, created_at
		FROM quotes
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		var q Quote
		if err := rows.Scan(
			&q.ID, &q.Equipamento, &q.Marca, &q.DescricaoProblema, &q.Bocas,
			&q.ValorMinimo, &q.ValorMaximo, &q.Modalidades,
			&q.Observacoes, &q.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning quote: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
