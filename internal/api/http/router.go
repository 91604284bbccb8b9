package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/merchant-crm/internal/api/http/handlers"
	"github.com/spec-kit/merchant-crm/internal/auth"
	"github.com/spec-kit/merchant-crm/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Board          *handlers.BoardHandler
	Contacts       *handlers.ContactsHandler
	CRM            *handlers.CRMHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle)
	api.Get("/me", cfg.Auth.Me)
	api.Get("/metrics", auth.RequireRole(domain.RoleAdmin), cfg.Health.Metrics)

	support := auth.RequireRole(domain.RoleSupport, domain.RoleOps, domain.RoleAdmin)
	sales := auth.RequireRole(domain.RoleSales, domain.RoleOps, domain.RoleAdmin)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/search", cfg.Tickets.SearchTickets)
	tickets.Get("/count", cfg.Tickets.CountTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/", support, cfg.Tickets.CreateTicket)
	tickets.Patch("/:id", support, cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/status", support, cfg.Tickets.TransitionStatus)

	board := api.Group("/board")
	board.Get("/", cfg.Board.Board)
	board.Post("/drop", support, cfg.Board.Drop)
	board.Post("/keys", support, cfg.Board.Key)
	board.Post("/pickup", support, cfg.Board.PickUp)
	board.Post("/dragover", support, cfg.Board.DragOver)
	board.Post("/dragleave", support, cfg.Board.DragLeave)
	board.Post("/dragend", support, cfg.Board.DragEnd)

	merchants := api.Group("/merchants/:id")
	merchants.Get("/tickets", cfg.Tickets.ListMerchantTickets)
	merchants.Get("/tasks", cfg.CRM.ListMerchantTasks)
	merchants.Get("/activities", cfg.CRM.ListMerchantActivities)
	merchants.Get("/contacts", cfg.Contacts.ListContacts)
	merchants.Post("/contacts", sales, cfg.Contacts.CreateContact)

	api.Patch("/contacts/:id", sales, cfg.Contacts.UpdateContact)
	api.Post("/contacts/:id/primary", sales, cfg.Contacts.SetPrimary)

	api.Get("/tasks", cfg.CRM.ListTasks)
	api.Get("/activities", cfg.CRM.ListActivities)
}
