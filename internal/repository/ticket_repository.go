package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/destekhq/ticket-core/internal/domain"
)

// Page bounds a listing call.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalized() (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// TicketRepository is the Ticket Store contract consumed by the transition
// engine. Save must serialize concurrent read-modify-write sequences per
// ticket id; a lost race surfaces as ErrConflict.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Save(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, page Page) ([]domain.Ticket, error)
	ListByAgent(ctx context.Context, agentID int64, page Page) ([]domain.Ticket, error)
	ListUnassigned(ctx context.Context, page Page) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed ticket store.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, customer_id, agent_id, title, description, status_id, priority_id, version, created_at, updated_at, closed_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (customer_id, agent_id, title, description, status_id, priority_id, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version`
	return r.pool.QueryRow(ctx, query,
		ticket.CustomerID,
		ticket.AgentID,
		ticket.Title,
		ticket.Description,
		ticket.StatusID,
		ticket.PriorityID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID, &ticket.Version)
}

// Save writes back a loaded ticket. The version predicate implements the
// optimistic per-ticket serialization required from the store: a row updated
// since the load makes RowsAffected zero, which is reported as ErrConflict
// (or ErrNotFound when the row is gone entirely).
func (r *ticketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET agent_id=$1, title=$2, description=$3, status_id=$4, priority_id=$5,
            closed_at=$6, updated_at=$7, version=version+1
        WHERE id=$8 AND version=$9`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AgentID,
		ticket.Title,
		ticket.Description,
		ticket.StatusID,
		ticket.PriorityID,
		ticket.ClosedAt,
		ticket.UpdatedAt,
		ticket.ID,
		ticket.Version,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrConflict
		}
		return ErrNotFound
	}
	ticket.Version++
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.AgentID,
		&ticket.Title,
		&ticket.Description,
		&ticket.StatusID,
		&ticket.PriorityID,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, page Page) ([]domain.Ticket, error) {
	limit, offset := page.normalized()
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY updated_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByAgent(ctx context.Context, agentID int64, page Page) ([]domain.Ticket, error) {
	limit, offset := page.normalized()
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE agent_id=$1 ORDER BY updated_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, agentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListUnassigned(ctx context.Context, page Page) ([]domain.Ticket, error) {
	limit, offset := page.normalized()
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE agent_id IS NULL ORDER BY created_at ASC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.CustomerID,
			&ticket.AgentID,
			&ticket.Title,
			&ticket.Description,
			&ticket.StatusID,
			&ticket.PriorityID,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
			&ticket.ClosedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
