package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/destekhq/ticket-core/internal/service"
)

// AgentsHandler serves agent-scoped views of the ticket queue.
type AgentsHandler struct {
	service *service.TicketService
}

func NewAgentsHandler(ticketService *service.TicketService) *AgentsHandler {
	return &AgentsHandler{service: ticketService}
}

// ListAgentTickets GET /agents/:id/tickets.
func (h *AgentsHandler) ListAgentTickets(c *fiber.Ctx) error {
	agentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	snapshots, err := h.service.GetAgentTickets(c.UserContext(), agentID, parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(snapshots)})
}
