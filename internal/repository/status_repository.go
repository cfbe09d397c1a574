package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/destekhq/ticket-core/internal/domain"
)

// StatusRepository exposes the seeded status catalog. First returns the entry
// with the lowest id and is the final tier of the lifecycle fallback chain.
type StatusRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Status, error)
	GetByName(ctx context.Context, name string) (*domain.Status, error)
	First(ctx context.Context) (*domain.Status, error)
	List(ctx context.Context) ([]domain.Status, error)
}

type statusRepository struct {
	pool *pgxpool.Pool
}

// NewStatusRepository builds the repository.
func NewStatusRepository(pool *pgxpool.Pool) StatusRepository {
	return &statusRepository{pool: pool}
}

func (r *statusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	const query = `SELECT id, name, description FROM ticket_statuses WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *statusRepository) GetByName(ctx context.Context, name string) (*domain.Status, error) {
	const query = `SELECT id, name, description FROM ticket_statuses WHERE name=$1`
	return r.fetchSingle(ctx, query, name)
}

func (r *statusRepository) First(ctx context.Context) (*domain.Status, error) {
	const query = `SELECT id, name, description FROM ticket_statuses ORDER BY id ASC LIMIT 1`
	return r.fetchSingle(ctx, query)
}

func (r *statusRepository) List(ctx context.Context) ([]domain.Status, error) {
	const query = `SELECT id, name, description FROM ticket_statuses ORDER BY id ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Status
	for rows.Next() {
		var status domain.Status
		if err := rows.Scan(&status.ID, &status.Name, &status.Description); err != nil {
			return nil, err
		}
		result = append(result, status)
	}
	return result, rows.Err()
}

func (r *statusRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Status, error) {
	var status domain.Status
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&status.ID, &status.Name, &status.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &status, nil
}
