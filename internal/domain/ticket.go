package domain

import "time"

// Ticket is the aggregate for customer support requests. Status and priority are
// references into seed-data catalogs, not code-level enums.
type Ticket struct {
	ID          int64
	CustomerID  int64
	AgentID     *int64
	Title       string
	Description string
	StatusID    int64
	PriorityID  int64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ClosedAt    *time.Time
}

// Closed reports whether the ticket has been stamped closed. closed_at is a
// one-way ratchet: a later status change away from the terminal status never
// clears it.
func (t *Ticket) Closed() bool {
	return t.ClosedAt != nil
}

// Assigned reports whether an agent is attached to the ticket.
func (t *Ticket) Assigned() bool {
	return t.AgentID != nil
}
