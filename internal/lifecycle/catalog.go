package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/destekhq/ticket-core/internal/config"
	"github.com/destekhq/ticket-core/internal/domain"
	"github.com/destekhq/ticket-core/internal/repository"
	"github.com/destekhq/ticket-core/pkg/util"
)

// StatusCatalog holds the four symbolic lifecycle roles resolved against the
// seeded status catalog. It is built once at startup so the policy never does
// string matching against scattered literals at transition time.
type StatusCatalog struct {
	Open       domain.Status
	Assigned   domain.Status
	InProgress domain.Status
	Closed     domain.Status

	terminalName string
}

// IsTerminal reports whether a status ends the lifecycle. The check is
// case-insensitive on the configured terminal name; the status resolved as the
// Closed role counts as terminal even when seeded under a localized name.
func (c *StatusCatalog) IsTerminal(status domain.Status) bool {
	if strings.EqualFold(status.Name, c.terminalName) {
		return true
	}
	return status.ID == c.Closed.ID
}

// LoadCatalog resolves each symbolic role with the two-tier chain: exact name
// lookup first, then the configured fallback id, then the lowest catalog id.
// An exhausted chain is a ConfigurationError; the policy must never default
// to an arbitrary status when the seed data is absent.
func LoadCatalog(ctx context.Context, statuses repository.StatusRepository, cfg config.LifecycleConfig) (*StatusCatalog, error) {
	open, err := resolveRole(ctx, statuses, cfg.OpenName, cfg.OpenFallbackID)
	if err != nil {
		return nil, err
	}
	assigned, err := resolveRole(ctx, statuses, cfg.AssignedName, cfg.AssignedFallbackID)
	if err != nil {
		return nil, err
	}
	inProgress, err := resolveRole(ctx, statuses, cfg.InProgressName, cfg.InProgressFallbackID)
	if err != nil {
		return nil, err
	}
	closed, err := resolveRole(ctx, statuses, cfg.ClosedName, cfg.ClosedFallbackID)
	if err != nil {
		return nil, err
	}

	return &StatusCatalog{
		Open:         *open,
		Assigned:     *assigned,
		InProgress:   *inProgress,
		Closed:       *closed,
		terminalName: cfg.ClosedName,
	}, nil
}

func resolveRole(ctx context.Context, statuses repository.StatusRepository, name string, fallbackID int64) (*domain.Status, error) {
	status, err := statuses.GetByName(ctx, name)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	status, err = statuses.GetByID(ctx, fallbackID)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	status, err = statuses.First(ctx)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	return nil, util.NewConfigurationError(
		fmt.Sprintf("status %q missing from catalog", name),
		map[string]any{"name": name, "fallback_id": fallbackID},
	)
}
