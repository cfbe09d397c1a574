package domain

import "time"

// SenderKind indicates who authored a thread message.
type SenderKind string

const (
	SenderCustomer SenderKind = "CUSTOMER"
	SenderAgent    SenderKind = "AGENT"
	SenderSystem   SenderKind = "SYSTEM"
)

// MessageKind differentiates public replies from internal notes.
type MessageKind string

const (
	MessageKindNormal   MessageKind = "NORMAL"
	MessageKindInternal MessageKind = "INTERNAL"
)

// SystemSenderID is the reserved sender id for synthetic messages.
const SystemSenderID int64 = 0

// TicketMessage is one entry in a ticket's append-only thread. Messages are
// never mutated or reordered; the sequence ordered by CreatedAt is the
// canonical thread.
type TicketMessage struct {
	ID        int64
	TicketID  int64
	SenderID  int64
	Sender    SenderKind
	Kind      MessageKind
	Body      string
	CreatedAt time.Time
}
