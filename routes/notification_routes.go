package routes

import (
	ws "github.com/gofiber/contrib/websocket"
	"github.com/tkaykim/moveit-backend/handlers"
	"github.com/tkaykim/moveit-backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func NotificationRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	notifications := api.Group("/notifications", middleware.Protected())
	notifications.Get("", handlers.GetMyNotifications)
	notifications.Patch("/:notificationId/read", handlers.MarkNotificationRead)
	notifications.Patch("/read-all", handlers.MarkAllNotificationsRead)

	app.Get("/ws/notifications", middleware.Protected(), handlers.UpgradeNotificationSocket, ws.New(handlers.NotificationSocket))
}
