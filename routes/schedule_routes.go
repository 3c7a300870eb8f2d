package routes

import (
	"github.com/tkaykim/moveit-backend/handlers"
	"github.com/tkaykim/moveit-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func ScheduleRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	schedules := api.Group("/schedules")
	schedules.Get("", handlers.GetSchedules)

	adminSchedules := api.Group("/admin/schedules", middleware.Protected(), middleware.AdminRequired())
	adminSchedules.Post("", handlers.CreateSchedule)
	adminSchedules.Post("/batch", handlers.CreateSchedulesBatch)
	adminSchedules.Post("/:scheduleId/cancel", handlers.CancelSchedule)
}
