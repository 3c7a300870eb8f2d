package routes

import (
	"github.com/tkaykim/moveit-backend/handlers"
	"github.com/tkaykim/moveit-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func TicketRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	tickets := api.Group("/tickets")
	tickets.Get("", handlers.GetTickets)
	tickets.Get("/me", middleware.Protected(), handlers.GetMyTickets)
	tickets.Post("/purchase", middleware.Protected(), handlers.PurchaseTicket)

	adminTickets := api.Group("/admin/tickets", middleware.Protected(), middleware.AdminRequired())
	adminTickets.Post("", handlers.CreateTicket)
}
