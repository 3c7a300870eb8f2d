package routes

import (
	"github.com/tkaykim/moveit-backend/handlers"
	"github.com/tkaykim/moveit-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	booking := api.Group("/bookings", middleware.Protected())
	booking.Get("/me", handlers.GetMyBookings)
	booking.Post("", handlers.CreateBooking)
	booking.Post("/:bookingId/cancel", handlers.CancelMyBooking)

	adminBooking := api.Group("/admin/bookings", middleware.Protected(), middleware.AdminRequired())
	adminBooking.Patch("/:bookingId/status", handlers.UpdateBookingStatus)
}
