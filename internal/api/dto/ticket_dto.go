package dto

import (
	"time"

	"github.com/destekhq/ticket-core/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	CustomerID  int64  `json:"customer_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	PriorityID  *int64 `json:"priority_id"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID int64  `json:"agent_id"`
	Note    string `json:"note"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	StatusID int64 `json:"status_id"`
}

// SendMessageRequest payload.
type SendMessageRequest struct {
	SenderID int64  `json:"sender_id"`
	Message  string `json:"message"`
}

// AgentReplyRequest payload.
type AgentReplyRequest struct {
	AgentID     int64  `json:"agent_id"`
	Message     string `json:"message"`
	NewStatusID *int64 `json:"new_status_id"`
	IsInternal  bool   `json:"is_internal"`
}

// TicketResponse is the outward ticket representation. List views omit
// messages and metrics.
type TicketResponse struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Status        string            `json:"status"`
	Priority      string            `json:"priority"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail *string           `json:"customer_email,omitempty"`
	AgentName     *string           `json:"agent_name,omitempty"`
	AgentEmail    *string           `json:"agent_email,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	ClosedAt      *time.Time        `json:"closed_at,omitempty"`
	Messages      []MessageResponse `json:"messages,omitempty"`
	Metrics       *MetricsResponse  `json:"metrics,omitempty"`
}

// MessageResponse represents a thread message annotated with its sender.
type MessageResponse struct {
	ID          int64              `json:"id"`
	SenderKind  domain.SenderKind  `json:"sender_kind"`
	SenderName  string             `json:"sender_name"`
	SenderEmail *string            `json:"sender_email,omitempty"`
	MessageKind domain.MessageKind `json:"message_kind"`
	Body        string             `json:"body"`
	CreatedAt   time.Time          `json:"created_at"`
}

// MetricsResponse carries read-time derived metrics.
type MetricsResponse struct {
	AgeSeconds        float64  `json:"age_seconds"`
	ResolutionSeconds *float64 `json:"resolution_seconds,omitempty"`
	MessageCount      int      `json:"message_count"`
}
