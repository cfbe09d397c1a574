package service

import (
	"context"
	"time"

	"github.com/destekhq/ticket-core/internal/domain"
	"github.com/destekhq/ticket-core/internal/repository"
)

const unknownName = "Unknown"

// TicketMetrics are derived read-time values. They are recomputed on every
// snapshot, never persisted, so they track the current clock even for a
// ticket that has not otherwise changed.
type TicketMetrics struct {
	Age            time.Duration
	ResolutionTime *time.Duration
	MessageCount   int
}

// MessageView is a thread message annotated with the sender resolved at
// snapshot time.
type MessageView struct {
	ID          int64
	Sender      domain.SenderKind
	Kind        domain.MessageKind
	SenderName  string
	SenderEmail *string
	Body        string
	CreatedAt   time.Time
}

// TicketSnapshot is the outward-facing representation of a ticket. The basic
// variant for list views carries no thread and no metrics.
type TicketSnapshot struct {
	ID            int64
	Title         string
	Description   string
	Status        string
	Priority      string
	CustomerName  string
	CustomerEmail *string
	AgentName     *string
	AgentEmail    *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ClosedAt      *time.Time
	Messages      []MessageView
	Metrics       *TicketMetrics
}

// SnapshotBuilder assembles snapshots from the ticket and message stores.
type SnapshotBuilder struct {
	statuses   repository.StatusRepository
	priorities repository.PriorityRepository
	customers  repository.CustomerRepository
	agents     repository.AgentRepository
	messages   repository.TicketMessageRepository

	now func() time.Time
}

// NewSnapshotBuilder constructs the builder.
func NewSnapshotBuilder(
	statuses repository.StatusRepository,
	priorities repository.PriorityRepository,
	customers repository.CustomerRepository,
	agents repository.AgentRepository,
	messages repository.TicketMessageRepository,
) *SnapshotBuilder {
	return &SnapshotBuilder{
		statuses:   statuses,
		priorities: priorities,
		customers:  customers,
		agents:     agents,
		messages:   messages,
		now:        time.Now,
	}
}

// Build produces the full snapshot: resolved parties, the ordered annotated
// thread, and recomputed metrics.
func (b *SnapshotBuilder) Build(ctx context.Context, ticket *domain.Ticket) (*TicketSnapshot, error) {
	snapshot := b.core(ctx, ticket)

	msgs, err := b.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, b.messageView(ctx, &msgs[i]))
	}
	snapshot.Messages = views

	now := b.now()
	metrics := &TicketMetrics{
		Age:          now.Sub(ticket.CreatedAt),
		MessageCount: len(views),
	}
	if ticket.ClosedAt != nil {
		resolution := ticket.ClosedAt.Sub(ticket.CreatedAt)
		metrics.ResolutionTime = &resolution
	}
	snapshot.Metrics = metrics

	return snapshot, nil
}

// BuildBasic omits the message list and metrics for list views.
func (b *SnapshotBuilder) BuildBasic(ctx context.Context, ticket *domain.Ticket) *TicketSnapshot {
	return b.core(ctx, ticket)
}

// BuildMessages returns the annotated thread without the ticket envelope.
func (b *SnapshotBuilder) BuildMessages(ctx context.Context, ticketID int64) ([]MessageView, error) {
	msgs, err := b.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		views = append(views, b.messageView(ctx, &msgs[i]))
	}
	return views, nil
}

func (b *SnapshotBuilder) core(ctx context.Context, ticket *domain.Ticket) *TicketSnapshot {
	snapshot := &TicketSnapshot{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       unknownName,
		Priority:     unknownName,
		CustomerName: unknownName,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ClosedAt:     ticket.ClosedAt,
	}

	if status, err := b.statuses.GetByID(ctx, ticket.StatusID); err == nil {
		snapshot.Status = status.Name
	}
	if priority, err := b.priorities.GetByID(ctx, ticket.PriorityID); err == nil {
		snapshot.Priority = priority.Name
	}
	if customer, err := b.customers.GetByID(ctx, ticket.CustomerID); err == nil {
		snapshot.CustomerName = customer.Name
		email := customer.Email
		snapshot.CustomerEmail = &email
	}
	if ticket.AgentID != nil {
		if agent, err := b.agents.GetByID(ctx, *ticket.AgentID); err == nil {
			name := agent.Name
			email := agent.Email
			snapshot.AgentName = &name
			snapshot.AgentEmail = &email
		}
	}
	return snapshot
}

// messageView resolves the sender at snapshot time instead of storing the
// display fields redundantly on the message row.
func (b *SnapshotBuilder) messageView(ctx context.Context, msg *domain.TicketMessage) MessageView {
	view := MessageView{
		ID:         msg.ID,
		Sender:     msg.Sender,
		Kind:       msg.Kind,
		SenderName: unknownName,
		Body:       msg.Body,
		CreatedAt:  msg.CreatedAt,
	}
	switch msg.Sender {
	case domain.SenderAgent:
		if agent, err := b.agents.GetByID(ctx, msg.SenderID); err == nil {
			view.SenderName = agent.Name
			email := agent.Email
			view.SenderEmail = &email
		}
	case domain.SenderCustomer:
		if customer, err := b.customers.GetByID(ctx, msg.SenderID); err == nil {
			view.SenderName = customer.Name
			email := customer.Email
			view.SenderEmail = &email
		}
	case domain.SenderSystem:
		view.SenderName = "System"
	}
	return view
}
