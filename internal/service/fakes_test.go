package service

import (
	"context"
	"sort"
	"sync"

	"github.com/destekhq/ticket-core/internal/domain"
	"github.com/destekhq/ticket-core/internal/events"
	"github.com/destekhq/ticket-core/internal/repository"
)

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[int64]domain.Ticket
	nextID  int64
	saveErr error
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: map[int64]domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	ticket.Version = 0
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) Save(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != ticket.Version {
		return repository.ErrConflict
	}
	ticket.Version++
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	ticket := stored
	return &ticket, nil
}

func (r *memTicketRepo) List(_ context.Context, page repository.Page) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		all = append(all, ticket)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	return all, nil
}

func (r *memTicketRepo) ListByAgent(_ context.Context, agentID int64, _ repository.Page) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.AgentID != nil && *ticket.AgentID == agentID {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (r *memTicketRepo) ListUnassigned(_ context.Context, _ repository.Page) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.AgentID == nil {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type memMessageRepo struct {
	mu     sync.Mutex
	msgs   []domain.TicketMessage
	nextID int64
}

func (r *memMessageRepo) Append(_ context.Context, msg *domain.TicketMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *memMessageRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketMessage
	for _, msg := range r.msgs {
		if msg.TicketID == ticketID {
			result = append(result, msg)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

type memStatusRepo struct {
	statuses []domain.Status
}

func (r *memStatusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	for i := range r.statuses {
		if r.statuses[i].ID == id {
			status := r.statuses[i]
			return &status, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memStatusRepo) GetByName(_ context.Context, name string) (*domain.Status, error) {
	for i := range r.statuses {
		if r.statuses[i].Name == name {
			status := r.statuses[i]
			return &status, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memStatusRepo) First(_ context.Context) (*domain.Status, error) {
	if len(r.statuses) == 0 {
		return nil, repository.ErrNotFound
	}
	lowest := r.statuses[0]
	for _, status := range r.statuses[1:] {
		if status.ID < lowest.ID {
			lowest = status
		}
	}
	return &lowest, nil
}

func (r *memStatusRepo) List(_ context.Context) ([]domain.Status, error) {
	return append([]domain.Status{}, r.statuses...), nil
}

type memPriorityRepo struct {
	priorities []domain.Priority
}

func (r *memPriorityRepo) GetByID(_ context.Context, id int64) (*domain.Priority, error) {
	for i := range r.priorities {
		if r.priorities[i].ID == id {
			priority := r.priorities[i]
			return &priority, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memPriorityRepo) First(_ context.Context) (*domain.Priority, error) {
	if len(r.priorities) == 0 {
		return nil, repository.ErrNotFound
	}
	lowest := r.priorities[0]
	for _, priority := range r.priorities[1:] {
		if priority.ID < lowest.ID {
			lowest = priority
		}
	}
	return &lowest, nil
}

func (r *memPriorityRepo) List(_ context.Context) ([]domain.Priority, error) {
	return append([]domain.Priority{}, r.priorities...), nil
}

type memCustomerRepo struct {
	customers map[int64]domain.Customer
}

func (r *memCustomerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &customer, nil
}

type memAgentRepo struct {
	agents map[int64]domain.Agent
}

func (r *memAgentRepo) GetByID(_ context.Context, id int64) (*domain.Agent, error) {
	agent, ok := r.agents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &agent, nil
}

type captureDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *captureDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *captureDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var result []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			result = append(result, event)
		}
	}
	return result
}
