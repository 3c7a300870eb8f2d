package routes

import (
	"github.com/tkaykim/moveit-backend/handlers"
	"github.com/tkaykim/moveit-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AcademyRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	academies := api.Group("/academies")
	academies.Get("", handlers.GetAcademies)
	academies.Get("/:academyId", handlers.GetAcademy)

	classes := api.Group("/classes")
	classes.Get("", handlers.GetClasses)

	admin := api.Group("/admin/academies", middleware.Protected(), middleware.AdminRequired())
	admin.Post("", handlers.CreateAcademy)

	staff := api.Group("/academies/:academyId", middleware.Protected(), middleware.AcademyAdminRequired())
	staff.Post("/branches", handlers.CreateBranch)
	staff.Post("/instructors", handlers.CreateInstructor)
	staff.Post("/classes", handlers.CreateClass)
	staff.Get("/students", handlers.GetAcademyStudents)

	adminHalls := api.Group("/admin/halls", middleware.Protected(), middleware.AdminRequired())
	adminHalls.Post("", handlers.CreateHall)
}
