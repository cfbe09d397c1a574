package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/destekhq/ticket-core/internal/config"
	"github.com/destekhq/ticket-core/internal/domain"
	"github.com/destekhq/ticket-core/internal/events"
	"github.com/destekhq/ticket-core/internal/lifecycle"
	"github.com/destekhq/ticket-core/internal/repository"
	"github.com/destekhq/ticket-core/pkg/util"
)

const (
	titleMinLen = 5
	titleMaxLen = 200
	descMinLen  = 10
	descMaxLen  = 5000
	bodyMinLen  = 1
	bodyMaxLen  = 5000
)

// TicketService is the transition engine: every ticket mutation enters through
// it, consults the lifecycle policy, appends thread messages and hands the
// result to the snapshot builder. Each operation is a single unit of work; a
// lost write race on the ticket row surfaces as CONFLICT and is never retried
// here.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.TicketMessageRepository
	statuses   repository.StatusRepository
	priorities repository.PriorityRepository
	customers  repository.CustomerRepository
	agents     repository.AgentRepository
	policy     *lifecycle.Policy
	resolver   IdentityResolver
	snapshots  *SnapshotBuilder
	dispatcher events.Dispatcher

	defaultPriorityID int64
	now               func() time.Time
}

// TicketDependencies bundles collaborators for the engine.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	MessageRepo  repository.TicketMessageRepository
	StatusRepo   repository.StatusRepository
	PriorityRepo repository.PriorityRepository
	CustomerRepo repository.CustomerRepository
	AgentRepo    repository.AgentRepository
	Policy       *lifecycle.Policy
	Resolver     IdentityResolver
	Snapshots    *SnapshotBuilder
	Dispatcher   events.Dispatcher
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	CustomerID  int64
	Title       string
	Description string
	PriorityID  *int64
}

// AgentReplyInput describes an agent reply payload.
type AgentReplyInput struct {
	AgentID     int64
	Body        string
	NewStatusID *int64
	Internal    bool
}

// NewTicketService constructs the engine.
func NewTicketService(cfg config.LifecycleConfig, deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:           deps.TicketRepo,
		messages:          deps.MessageRepo,
		statuses:          deps.StatusRepo,
		priorities:        deps.PriorityRepo,
		customers:         deps.CustomerRepo,
		agents:            deps.AgentRepo,
		policy:            deps.Policy,
		resolver:          deps.Resolver,
		snapshots:         deps.Snapshots,
		dispatcher:        deps.Dispatcher,
		defaultPriorityID: cfg.DefaultPriorityID,
		now:               time.Now,
	}
}

// Create opens a new ticket for a customer. An omitted priority resolves to
// the configured default; an invalid one fails NotFound rather than silently
// falling back.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*TicketSnapshot, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	// Bounds are character counts, not bytes; titles are routinely Turkish.
	if n := utf8.RuneCountInString(title); n < titleMinLen || n > titleMaxLen {
		return nil, util.NewValidationError("title length out of bounds", map[string]any{
			"min": titleMinLen, "max": titleMaxLen,
		})
	}
	if n := utf8.RuneCountInString(description); n < descMinLen || n > descMaxLen {
		return nil, util.NewValidationError("description length out of bounds", map[string]any{
			"min": descMinLen, "max": descMaxLen,
		})
	}

	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, notFoundOr(err, "customer", map[string]any{"customer_id": input.CustomerID})
	}

	priority, err := s.resolvePriority(ctx, input.PriorityID)
	if err != nil {
		return nil, err
	}

	decision := s.policy.OnCreate()
	now := s.now()
	ticket := &domain.Ticket{
		CustomerID:  input.CustomerID,
		Title:       title,
		Description: description,
		StatusID:    decision.Next.ID,
		PriorityID:  priority.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{Kind: domain.SenderCustomer, ID: &ticket.CustomerID},
		Payload: events.TicketCreatedPayload{
			CustomerID: ticket.CustomerID,
			PriorityID: ticket.PriorityID,
			Title:      ticket.Title,
		},
	})
	return s.snapshots.Build(ctx, ticket)
}

// Assign attaches an agent to a ticket and moves it to Assigned. A non-blank
// note is recorded as a system message in the thread.
func (s *TicketService) Assign(ctx context.Context, ticketID, agentID int64, note string) (*TicketSnapshot, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		return nil, notFoundOr(err, "agent", map[string]any{"agent_id": agentID})
	}

	decision := s.policy.OnAssign(agentID, note)
	now := s.now()
	if decision.Synthetic != nil {
		if err := s.appendSynthetic(ctx, ticket.ID, decision.Synthetic, now); err != nil {
			return nil, util.MapError(err)
		}
	}
	s.apply(ticket, decision, now)
	if err := s.saveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{Kind: domain.SenderAgent, ID: &agentID},
		Payload:  events.TicketAssignedPayload{AgentID: agentID},
	})
	return s.snapshots.Build(ctx, ticket)
}

// UpdateStatus moves a ticket to an explicitly requested status. Reaching the
// terminal status stamps closed_at; the stamp is never overwritten and a later
// move away from the terminal status never clears it.
func (s *TicketService) UpdateStatus(ctx context.Context, ticketID, statusID int64) (*TicketSnapshot, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	status, err := s.statuses.GetByID(ctx, statusID)
	if err != nil {
		return nil, notFoundOr(err, "status", map[string]any{"status_id": statusID})
	}

	oldStatusID := ticket.StatusID
	decision := s.policy.OnStatusChange(*status)
	s.apply(ticket, decision, s.now())
	if err := s.saveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    events.Actor{Kind: domain.SenderSystem},
		Payload: events.TicketStatusChangedPayload{
			OldStatusID: oldStatusID,
			NewStatusID: ticket.StatusID,
			Closed:      ticket.Closed(),
		},
	})
	return s.snapshots.Build(ctx, ticket)
}

// Close moves a ticket to the terminal status, stamping closed_at and
// updated_at unconditionally.
func (s *TicketService) Close(ctx context.Context, ticketID int64) (*TicketSnapshot, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	decision := s.policy.OnClose()
	s.apply(ticket, decision, s.now())
	if err := s.saveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Actor:    events.Actor{Kind: domain.SenderSystem},
		Payload: events.TicketStatusChangedPayload{
			NewStatusID: ticket.StatusID,
			Closed:      true,
		},
	})
	return s.snapshots.Build(ctx, ticket)
}

// SendMessage appends a message to the thread, classifying the sender by id.
// A message from a representative implicitly moves the ticket to InProgress;
// any other sender leaves the ticket row untouched.
func (s *TicketService) SendMessage(ctx context.Context, ticketID, senderID int64, body string) (*TicketSnapshot, error) {
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n < bodyMinLen || n > bodyMaxLen {
		return nil, util.NewValidationError("message body length out of bounds", map[string]any{
			"min": bodyMinLen, "max": bodyMaxLen,
		})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	sender := s.resolver.Resolve(ctx, senderID)
	now := s.now()
	msg := &domain.TicketMessage{
		TicketID:  ticket.ID,
		SenderID:  senderID,
		Sender:    sender,
		Kind:      domain.MessageKindNormal,
		Body:      body,
		CreatedAt: now,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, util.MapError(err)
	}

	if decision := s.policy.OnMessageSent(sender); decision.Next != nil {
		s.apply(ticket, decision, now)
		if err := s.saveTicket(ctx, ticket); err != nil {
			return nil, err
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    events.Actor{Kind: sender, ID: &msg.SenderID},
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			Sender:      msg.Sender,
			Kind:        msg.Kind,
			BodyPreview: bodyPreview(msg.Body, 120),
		},
	})
	return s.snapshots.Build(ctx, ticket)
}

// AgentReply handles a representative's reply: an unassigned ticket takes the
// replying agent, the reply lands in the thread, and the status moves to the
// explicitly requested one or nudges to InProgress.
func (s *TicketService) AgentReply(ctx context.Context, ticketID int64, input AgentReplyInput) (*TicketSnapshot, error) {
	body := strings.TrimSpace(input.Body)
	if n := utf8.RuneCountInString(body); n < bodyMinLen || n > bodyMaxLen {
		return nil, util.NewValidationError("message body length out of bounds", map[string]any{
			"min": bodyMinLen, "max": bodyMaxLen,
		})
	}
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if _, err := s.agents.GetByID(ctx, input.AgentID); err != nil {
		return nil, notFoundOr(err, "agent", map[string]any{"agent_id": input.AgentID})
	}

	var explicit *domain.Status
	if input.NewStatusID != nil {
		explicit, err = s.statuses.GetByID(ctx, *input.NewStatusID)
		if err != nil {
			return nil, notFoundOr(err, "status", map[string]any{"status_id": *input.NewStatusID})
		}
	}

	decision := s.policy.OnAgentReply(ticket.Assigned(), input.AgentID, explicit)

	now := s.now()
	kind := domain.MessageKindNormal
	if input.Internal {
		kind = domain.MessageKindInternal
	}
	msg := &domain.TicketMessage{
		TicketID:  ticket.ID,
		SenderID:  input.AgentID,
		Sender:    domain.SenderAgent,
		Kind:      kind,
		Body:      body,
		CreatedAt: now,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, util.MapError(err)
	}

	s.apply(ticket, decision, now)
	if err := s.saveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	if decision.AssignAgent != nil {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketAssigned,
			TicketID: ticket.ID,
			Actor:    events.Actor{Kind: domain.SenderAgent, ID: &input.AgentID},
			Payload:  events.TicketAssignedPayload{AgentID: input.AgentID, AutoFlag: true},
		})
	}
	s.publish(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    events.Actor{Kind: domain.SenderAgent, ID: &input.AgentID},
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			Sender:      msg.Sender,
			Kind:        msg.Kind,
			BodyPreview: bodyPreview(msg.Body, 120),
		},
	})
	return s.snapshots.Build(ctx, ticket)
}

// Get returns the full snapshot of one ticket.
func (s *TicketService) Get(ctx context.Context, ticketID int64) (*TicketSnapshot, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	return s.snapshots.Build(ctx, ticket)
}

// List returns basic snapshots of tickets, most recently updated first.
func (s *TicketService) List(ctx context.Context, page repository.Page) ([]TicketSnapshot, error) {
	tickets, err := s.tickets.List(ctx, page)
	if err != nil {
		return nil, util.MapError(err)
	}
	return s.basicSnapshots(ctx, tickets), nil
}

// GetMessages returns the annotated thread of a ticket.
func (s *TicketService) GetMessages(ctx context.Context, ticketID int64) ([]MessageView, error) {
	if _, err := s.loadTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	views, err := s.snapshots.BuildMessages(ctx, ticketID)
	if err != nil {
		return nil, util.MapError(err)
	}
	return views, nil
}

// GetAgentTickets returns basic snapshots of tickets assigned to an agent.
func (s *TicketService) GetAgentTickets(ctx context.Context, agentID int64, page repository.Page) ([]TicketSnapshot, error) {
	if _, err := s.agents.GetByID(ctx, agentID); err != nil {
		return nil, notFoundOr(err, "agent", map[string]any{"agent_id": agentID})
	}
	tickets, err := s.tickets.ListByAgent(ctx, agentID, page)
	if err != nil {
		return nil, util.MapError(err)
	}
	return s.basicSnapshots(ctx, tickets), nil
}

// GetUnassignedTickets returns basic snapshots of tickets without an agent,
// oldest first.
func (s *TicketService) GetUnassignedTickets(ctx context.Context, page repository.Page) ([]TicketSnapshot, error) {
	tickets, err := s.tickets.ListUnassigned(ctx, page)
	if err != nil {
		return nil, util.MapError(err)
	}
	return s.basicSnapshots(ctx, tickets), nil
}

// resolvePriority applies the default chain for an omitted priority: the
// configured default id, then the lowest catalog id, then ConfigurationError.
// An explicitly requested priority must exist.
func (s *TicketService) resolvePriority(ctx context.Context, priorityID *int64) (*domain.Priority, error) {
	if priorityID != nil {
		priority, err := s.priorities.GetByID(ctx, *priorityID)
		if err != nil {
			return nil, notFoundOr(err, "priority", map[string]any{"priority_id": *priorityID})
		}
		return priority, nil
	}
	priority, err := s.priorities.GetByID(ctx, s.defaultPriorityID)
	if err == nil {
		return priority, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, util.MapError(err)
	}
	priority, err = s.priorities.First(ctx)
	if err == nil {
		return priority, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, util.MapError(err)
	}
	return nil, util.NewConfigurationError("default priority missing from catalog", map[string]any{
		"default_priority_id": s.defaultPriorityID,
	})
}

// apply folds a policy decision into the ticket. updated_at always reflects
// the transition commit, not any message append that preceded it.
func (s *TicketService) apply(ticket *domain.Ticket, decision lifecycle.Decision, now time.Time) {
	if decision.AssignAgent != nil {
		ticket.AgentID = decision.AssignAgent
	}
	if decision.Next != nil {
		ticket.StatusID = decision.Next.ID
	}
	if decision.ForceClosedAt {
		closedAt := now
		ticket.ClosedAt = &closedAt
	} else if decision.SetClosedAt && ticket.ClosedAt == nil {
		closedAt := now
		ticket.ClosedAt = &closedAt
	}
	ticket.UpdatedAt = now
}

func (s *TicketService) appendSynthetic(ctx context.Context, ticketID int64, synthetic *lifecycle.SyntheticMessage, now time.Time) error {
	return s.messages.Append(ctx, &domain.TicketMessage{
		TicketID:  ticketID,
		SenderID:  synthetic.SenderID,
		Sender:    synthetic.Sender,
		Kind:      synthetic.Kind,
		Body:      synthetic.Body,
		CreatedAt: now,
	})
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, notFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

func (s *TicketService) saveTicket(ctx context.Context, ticket *domain.Ticket) error {
	err := s.tickets.Save(ctx, ticket)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrConflict) {
		return util.NewConflict("ticket was modified concurrently", map[string]any{"ticket_id": ticket.ID})
	}
	if errors.Is(err, repository.ErrNotFound) {
		return util.NewNotFound("ticket", map[string]any{"ticket_id": ticket.ID})
	}
	return util.MapError(err)
}

func (s *TicketService) basicSnapshots(ctx context.Context, tickets []domain.Ticket) []TicketSnapshot {
	result := make([]TicketSnapshot, 0, len(tickets))
	for i := range tickets {
		result = append(result, *s.snapshots.BuildBasic(ctx, &tickets[i]))
	}
	return result
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func notFoundOr(err error, resource string, details map[string]any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return util.NewNotFound(resource, details)
	}
	return util.MapError(err)
}

func bodyPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
