package routes

import (
	"github.com/tkaykim/moveit-backend/handlers"
	"github.com/tkaykim/moveit-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func OrderRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	orders := api.Group("/orders", middleware.Protected())
	orders.Post("", handlers.CreateBankTransferOrder)
	orders.Get("/me", handlers.GetMyOrders)

	staff := api.Group("/academies/:academyId/orders", middleware.Protected(), middleware.AcademyAdminRequired())
	staff.Get("", handlers.GetAcademyOrders)
	staff.Post("/:orderId/confirm", handlers.ConfirmBankTransferOrder)
	staff.Post("/:orderId/reject", handlers.RejectBankTransferOrder)
}
