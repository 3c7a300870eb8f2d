package handlers

import (
	ws "github.com/gofiber/contrib/websocket"
	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func GetMyNotifications(c *fiber.Ctx) error {
	userID := currentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var list []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&list).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch notifications"})
	}

	return c.JSON(fiber.Map{"data": list})
}

func MarkNotificationRead(c *fiber.Ctx) error {
	userID := currentUserID(c)
	notificationID, err := uuid.Parse(c.Params("notificationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid notification id"})
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notification"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}

	return c.JSON(fiber.Map{"message": "Notification marked as read."})
}

func MarkAllNotificationsRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update notifications"})
	}

	return c.JSON(fiber.Map{"message": "All notifications marked as read."})
}

// NotificationSocket keeps a client connection registered with the hub for
// live event delivery until the client disconnects.
func NotificationSocket(c *ws.Conn) {
	rawID, _ := c.Locals("userID").(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		c.Close()
		return
	}

	websocket.Register(userID, c)
	defer func() {
		websocket.Unregister(userID, c)
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

// UpgradeNotificationSocket gates the websocket upgrade behind the JWT
// middleware and stashes the user id for the connection handler.
func UpgradeNotificationSocket(c *fiber.Ctx) error {
	if !ws.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("userID", currentUserID(c).String())
	return c.Next()
}
