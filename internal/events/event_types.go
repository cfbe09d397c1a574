package events

import (
	"time"

	"github.com/destekhq/ticket-core/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketClosed        EventType = "ticket_closed"
	EventTicketMessageAdded  EventType = "ticket_message_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind domain.SenderKind `json:"kind"`
	ID   *int64            `json:"id,omitempty"`
}

// Event represents a domain event emitted by the transition engine.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID int64  `json:"customer_id"`
	PriorityID int64  `json:"priority_id"`
	Title      string `json:"title"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AgentID  int64 `json:"agent_id"`
	AutoFlag bool  `json:"auto,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatusID int64 `json:"old_status_id"`
	NewStatusID int64 `json:"new_status_id"`
	Closed      bool  `json:"closed,omitempty"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   int64              `json:"message_id"`
	Sender      domain.SenderKind  `json:"sender"`
	Kind        domain.MessageKind `json:"kind"`
	BodyPreview string             `json:"body_preview"`
}
