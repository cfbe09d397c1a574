package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/destekhq/ticket-core/internal/domain"
)

// PriorityRepository exposes the seeded priority catalog.
type PriorityRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Priority, error)
	First(ctx context.Context) (*domain.Priority, error)
	List(ctx context.Context) ([]domain.Priority, error)
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository builds the repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	const query = `SELECT id, name, level FROM ticket_priorities WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *priorityRepository) First(ctx context.Context) (*domain.Priority, error) {
	const query = `SELECT id, name, level FROM ticket_priorities ORDER BY id ASC LIMIT 1`
	return r.fetchSingle(ctx, query)
}

func (r *priorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	const query = `SELECT id, name, level FROM ticket_priorities ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Priority
	for rows.Next() {
		var priority domain.Priority
		if err := rows.Scan(&priority.ID, &priority.Name, &priority.Level); err != nil {
			return nil, err
		}
		result = append(result, priority)
	}
	return result, rows.Err()
}

func (r *priorityRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Priority, error) {
	var priority domain.Priority
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&priority.ID, &priority.Name, &priority.Level); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &priority, nil
}
