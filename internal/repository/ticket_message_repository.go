package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/destekhq/ticket-core/internal/domain"
)

// TicketMessageRepository is the Message Store contract: an append-only log of
// messages per ticket, read back ordered by creation time ascending.
type TicketMessageRepository interface {
	Append(ctx context.Context, msg *domain.TicketMessage) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketMessage, error)
}

type ticketMessageRepository struct {
	pool *pgxpool.Pool
}

// NewTicketMessageRepository builds the Postgres-backed message store.
func NewTicketMessageRepository(pool *pgxpool.Pool) TicketMessageRepository {
	return &ticketMessageRepository{pool: pool}
}

func (r *ticketMessageRepository) Append(ctx context.Context, msg *domain.TicketMessage) error {
	const query = `
        INSERT INTO ticket_messages (ticket_id, sender_id, sender_kind, message_kind, body, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		msg.TicketID,
		msg.SenderID,
		msg.Sender,
		msg.Kind,
		msg.Body,
		msg.CreatedAt,
	).Scan(&msg.ID)
}

func (r *ticketMessageRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketMessage, error) {
	const query = `
        SELECT id, ticket_id, sender_id, sender_kind, message_kind, body, created_at
        FROM ticket_messages WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketMessage
	for rows.Next() {
		var msg domain.TicketMessage
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.Sender,
			&msg.Kind,
			&msg.Body,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}
