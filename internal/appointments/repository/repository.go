// Package repository provides data access for appointments.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAppointmentNotFound = errors.New("appointment not found")

// Appointment statuses.
const (
	StatusScheduled = "agendado"
	StatusCancelled = "cancelado"
	StatusDone      = "concluido"
)

// Appointment is one booked technician visit or unit collection.
type Appointment struct {
	ID                uuid.UUID
	Nome              string
	Telefone          string
	Email             string
	Endereco          string
	Equipamento       string
	DescricaoProblema string
	Modalidade        string
	StartsAt          time.Time
	EndsAt            time.Time
	Status            string
	CancelReason      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Repository provides appointment persistence over postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new appointments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `
	id, nome, telefone, email, endereco, equipamento, descricao_problema,
	modalidade, starts_at, ends_at, status, cancel_reason, created_at, updated_at`

func scan(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.Nome, &a.Telefone, &a.Email, &a.Endereco, &a.Equipamento, &a.DescricaoProblema,
		&a.Modalidade, &a.StartsAt, &a.EndsAt, &a.Status, &a.CancelReason, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// Create inserts a new scheduled appointment.
func (r *Repository) Create(ctx context.Context, a Appointment) (Appointment, error) {
	return scan(r.pool.QueryRow(ctx, `
		INSERT INTO appointments (
			id, nome, telefone, email, endereco, equipamento, descricao_problema,
			modalidade, starts_at, ends_at, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+columns+`
	`,
		a.ID, a.Nome, a.Telefone, a.Email, a.Endereco, a.Equipamento, a.DescricaoProblema,
		a.Modalidade, a.StartsAt, a.EndsAt, StatusScheduled,
	))
}

// GetByID loads one appointment.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Appointment, error) {
	a, err := scan(r.pool.QueryRow(ctx, `
		SELECT `+columns+` FROM appointments WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}

// Cancel marks an appointment cancelled. Cancelling twice is a no-op that
// still returns the row.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, reason string) (Appointment, error) {
	a, err := scan(r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2, cancel_reason = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+columns+`
	`, id, StatusCancelled, reason))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}

// CountOverlapping counts scheduled appointments intersecting [from, to).
func (r *Repository) CountOverlapping(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM appointments
		WHERE status = $1 AND starts_at < $3 AND ends_at > $2
	`, StatusScheduled, from, to).Scan(&count)
	return count, err
}

// ListBetween returns scheduled appointments starting inside [from, to),
// ordered by start time.
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+` FROM appointments
		WHERE status = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at
	`, StatusScheduled, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// FindActiveByPhone returns the next scheduled appointment for a phone
// number, if any. Used when a cancellation arrives without an id.
func (r *Repository) FindActiveByPhone(ctx context.Context, telefone string) (Appointment, error) {
	a, err := scan(r.pool.QueryRow(ctx, `
		SELECT `+columns+` FROM appointments
		WHERE status = $1 AND telefone = $2 AND starts_at > now()
		ORDER BY starts_at
		LIMIT 1
	`, StatusScheduled, telefone))
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrAppointmentNotFound
	}
	return a, err
}
