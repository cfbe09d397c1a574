package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/destekhq/ticket-core/internal/domain"
)

// AgentRepository provides read access to support representatives.
type AgentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Agent, error)
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository builds the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

func (r *agentRepository) GetByID(ctx context.Context, id int64) (*domain.Agent, error) {
	const query = `SELECT id, name, email, active, created_at FROM agents WHERE id=$1`
	var agent domain.Agent
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&agent.ID,
		&agent.Name,
		&agent.Email,
		&agent.Active,
		&agent.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &agent, nil
}
