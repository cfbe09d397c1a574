package service

import (
	"context"

	"github.com/destekhq/ticket-core/internal/domain"
	"github.com/destekhq/ticket-core/internal/repository"
)

// IdentityResolver classifies a message sender given only an identifier.
type IdentityResolver interface {
	Resolve(ctx context.Context, senderID int64) domain.SenderKind
}

type identityResolver struct {
	agents    repository.AgentRepository
	customers repository.CustomerRepository
}

// NewIdentityResolver builds a resolver probing the agent store first, then
// the customer store.
func NewIdentityResolver(agents repository.AgentRepository, customers repository.CustomerRepository) IdentityResolver {
	return &identityResolver{agents: agents, customers: customers}
}

// Resolve performs fresh lookups on every call; sender identity is never
// cached. Unknown or failing ids degrade to System so that message logging
// never blocks on a stale or foreign id.
func (r *identityResolver) Resolve(ctx context.Context, senderID int64) domain.SenderKind {
	if senderID <= domain.SystemSenderID {
		return domain.SenderSystem
	}
	if _, err := r.agents.GetByID(ctx, senderID); err == nil {
		return domain.SenderAgent
	}
	if _, err := r.customers.GetByID(ctx, senderID); err == nil {
		return domain.SenderCustomer
	}
	return domain.SenderSystem
}
