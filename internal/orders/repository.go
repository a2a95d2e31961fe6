package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrOrderNotFound is returned when no order matches the given code or id.
var ErrOrderNotFound = errors.New("service order not found")

// ServiceOrder is one workshop repair job.
type ServiceOrder struct {
	ID          uuid.UUID
	Codigo      string
	Nome        string
	Telefone    string
	Equipamento string
	Descricao   string
	Status      string
	Previsao    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository persists service orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the orders repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, codigo, nome, telefone, equipamento, descricao, status, previsao, created_at, updated_at`

func scanOrder(row pgx.Row) (ServiceOrder, error) {
	var o ServiceOrder
	err := row.Scan(
		&o.ID, &o.Codigo, &o.Nome, &o.Telefone, &o.Equipamento,
		&o.Descricao, &o.Status, &o.Previsao, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceOrder{}, ErrOrderNotFound
	}
	if err != nil {
		return ServiceOrder{}, fmt.Errorf("scanning service order: %w", err)
	}
	return o, nil
}

// Create registers a new service order. The code is taken from a sequence so
// receipts stay short and sequential.
func (r *Repository) Create(ctx context.Context, o ServiceOrder) (ServiceOrder, error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = StatusReceived
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO service_orders (id, codigo, nome, telefone, equipamento, descricao, status, previsao)
		VALUES ($1, 'OS-' || nextval('service_order_code_seq'), $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		o.ID, o.Nome, o.Telefone, o.Equipamento, o.Descricao, o.Status, o.Previsao,
	)
	return scanOrder(row)
}

// GetByCode loads an order by its canonical public code.
func (r *Repository) GetByCode(ctx context.Context, codigo string) (ServiceOrder, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM service_orders
		WHERE codigo = $1`, codigo)
	return scanOrder(row)
}

// UpdateStatus moves an order through its lifecycle.
func (r *Repository) UpdateStatus(ctx context.Context, codigo, status string, previsao *time.Time) (ServiceOrder, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE service_orders
		SET status = $2, previsao = COALESCE($3, previsao), updated_at = now()
		WHERE codigo = $1
		RETURNING `+orderColumns,
		codigo, status, previsao)
	return scanOrder(row)
}

// ListOpen lists orders that have not been delivered or cancelled.
func (r *Repository) ListOpen(ctx context.Context) ([]ServiceOrder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM service_orders
		WHERE status NOT IN ($1, $2)
		ORDER BY created_at`, StatusDelivered, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("listing open orders: %w", err)
	}
	defer rows.Close()

	var out []ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
