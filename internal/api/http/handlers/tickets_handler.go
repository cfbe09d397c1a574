package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/destekhq/ticket-core/internal/api/dto"
	"github.com/destekhq/ticket-core/internal/repository"
	"github.com/destekhq/ticket-core/internal/service"
	"github.com/destekhq/ticket-core/pkg/util"
)

// TicketsHandler exposes the transition engine over HTTP.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.CustomerID <= 0 {
		return util.NewValidationError("customer_id required", nil)
	}

	snapshot, err := h.service.Create(c.UserContext(), service.CreateTicketInput{
		CustomerID:  req.CustomerID,
		Title:       req.Title,
		Description: req.Description,
		PriorityID:  req.PriorityID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	snapshots, err := h.service.List(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(snapshots)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	snapshot, err := h.service.Get(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// AssignTicket POST /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.AgentID <= 0 {
		return util.NewValidationError("agent_id required", nil)
	}
	snapshot, err := h.service.Assign(c.UserContext(), ticketID, req.AgentID, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// UpdateStatus PUT /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.StatusID <= 0 {
		return util.NewValidationError("status_id required", nil)
	}
	snapshot, err := h.service.UpdateStatus(c.UserContext(), ticketID, req.StatusID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	snapshot, err := h.service.Close(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// SendMessage POST /tickets/:id/messages.
func (h *TicketsHandler) SendMessage(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	snapshot, err := h.service.SendMessage(c.UserContext(), ticketID, req.SenderID, req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// ListMessages GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	views, err := h.service.GetMessages(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messageResponses(views)})
}

// AgentReply POST /tickets/:id/reply.
func (h *TicketsHandler) AgentReply(c *fiber.Ctx) error {
	ticketID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AgentReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.AgentID <= 0 {
		return util.NewValidationError("agent_id required", nil)
	}
	snapshot, err := h.service.AgentReply(c.UserContext(), ticketID, service.AgentReplyInput{
		AgentID:     req.AgentID,
		Body:        req.Message,
		NewStatusID: req.NewStatusID,
		Internal:    req.IsInternal,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketResponse(snapshot)})
}

// ListUnassigned GET /tickets/unassigned.
func (h *TicketsHandler) ListUnassigned(c *fiber.Ctx) error {
	snapshots, err := h.service.GetUnassignedTickets(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(snapshots)})
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewValidationError("invalid id", map[string]any{"param": param})
	}
	return id, nil
}

func parsePage(c *fiber.Ctx) repository.Page {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return repository.Page{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketResponse(snapshot *service.TicketSnapshot) dto.TicketResponse {
	resp := dto.TicketResponse{
		ID:            snapshot.ID,
		Title:         snapshot.Title,
		Description:   snapshot.Description,
		Status:        snapshot.Status,
		Priority:      snapshot.Priority,
		CustomerName:  snapshot.CustomerName,
		CustomerEmail: snapshot.CustomerEmail,
		AgentName:     snapshot.AgentName,
		AgentEmail:    snapshot.AgentEmail,
		CreatedAt:     snapshot.CreatedAt,
		UpdatedAt:     snapshot.UpdatedAt,
		ClosedAt:      snapshot.ClosedAt,
	}
	if snapshot.Messages != nil {
		resp.Messages = messageResponses(snapshot.Messages)
	}
	if snapshot.Metrics != nil {
		metrics := &dto.MetricsResponse{
			AgeSeconds:   snapshot.Metrics.Age.Seconds(),
			MessageCount: snapshot.Metrics.MessageCount,
		}
		if snapshot.Metrics.ResolutionTime != nil {
			seconds := snapshot.Metrics.ResolutionTime.Seconds()
			metrics.ResolutionSeconds = &seconds
		}
		resp.Metrics = metrics
	}
	return resp
}

func ticketResponses(snapshots []service.TicketSnapshot) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(snapshots))
	for i := range snapshots {
		items = append(items, ticketResponse(&snapshots[i]))
	}
	return items
}

func messageResponses(views []service.MessageView) []dto.MessageResponse {
	items := make([]dto.MessageResponse, 0, len(views))
	for _, view := range views {
		items = append(items, dto.MessageResponse{
			ID:          view.ID,
			SenderKind:  view.Sender,
			SenderName:  view.SenderName,
			SenderEmail: view.SenderEmail,
			MessageKind: view.Kind,
			Body:        view.Body,
			CreatedAt:   view.CreatedAt,
		})
	}
	return items
}
