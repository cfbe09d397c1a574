package http

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/destekhq/ticket-core/internal/api/http/handlers"
	"github.com/destekhq/ticket-core/internal/observability"
)

// RegisterRoutes mounts all HTTP endpoints on the app.
func RegisterRoutes(
	app *fiber.App,
	tickets *handlers.TicketsHandler,
	agents *handlers.AgentsHandler,
	health *handlers.HealthHandler,
	metrics *observability.Metrics,
) {
	app.Get("/health/live", health.Live)
	app.Get("/health/ready", health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	ticketGroup := app.Group("/tickets")
	ticketGroup.Post("/", tickets.CreateTicket)
	ticketGroup.Get("/", tickets.ListTickets)
	// static route before the :id wildcard
	ticketGroup.Get("/unassigned", tickets.ListUnassigned)
	ticketGroup.Get("/:id", tickets.GetTicket)
	ticketGroup.Post("/:id/assign", tickets.AssignTicket)
	ticketGroup.Put("/:id/status", tickets.UpdateStatus)
	ticketGroup.Post("/:id/close", tickets.CloseTicket)
	ticketGroup.Post("/:id/messages", tickets.SendMessage)
	ticketGroup.Get("/:id/messages", tickets.ListMessages)
	ticketGroup.Post("/:id/reply", tickets.AgentReply)

	app.Get("/agents/:id/tickets", agents.ListAgentTickets)
}
