package handlers

import (
	"errors"
	"time"

	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/notifications"
	"github.com/tkaykim/moveit-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	TicketID      string  `json:"ticket_id" validate:"required,uuid"`
	ScheduleID    *string `json:"schedule_id,omitempty" validate:"omitempty,uuid"`
	DiscountID    *string `json:"discount_id,omitempty" validate:"omitempty,uuid"`
	DepositorName *string `json:"depositor_name,omitempty"`
}

// CreateBankTransferOrder opens a deferred-payment purchase. Nothing is
// issued here; the ticket appears only when staff confirm the deposit.
func CreateBankTransferOrder(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ticketID, _ := uuid.Parse(req.TicketID)
	var ticket models.Ticket
	if err := database.DB.First(&ticket, "id = ?", ticketID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Ticket not found"})
	}
	if !ticket.IsOnSale {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Ticket is not on sale"})
	}
	if ticket.AcademyID == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Bank transfer orders require an academy ticket"})
	}

	amount := ticket.Price
	var discountID *uuid.UUID
	if req.DiscountID != nil {
		id, _ := uuid.Parse(*req.DiscountID)
		var discount models.Discount
		if err := database.DB.First(&discount, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Discount not found"})
		}
		discountAmount, err := services.ComputeDiscount(&discount, &ticket, time.Now())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Discount is not applicable"})
		}
		amount -= discountAmount
		discountID = &id
	}

	order := models.BankTransferOrder{
		AcademyID:     *ticket.AcademyID,
		UserID:        userID,
		TicketID:      ticket.ID,
		ClassID:       ticket.ClassID,
		DiscountID:    discountID,
		Amount:        amount,
		DepositorName: req.DepositorName,
		Status:        models.OrderPending,
	}
	if req.ScheduleID != nil {
		scheduleID, _ := uuid.Parse(*req.ScheduleID)
		var schedule models.Schedule
		if err := database.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Schedule not found"})
		}
		if schedule.IsCanceled || schedule.StartTime.Before(time.Now()) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Schedule is canceled or already started"})
		}
		order.ScheduleID = &scheduleID
		order.ClassID = &schedule.ClassID
	}

	if err := database.DB.Create(&order).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create order"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order created. Your ticket will be issued once the deposit is confirmed.",
		"order":   order,
	})
}

func GetMyOrders(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var orders []models.BankTransferOrder
	err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}

	return c.JSON(fiber.Map{"data": orders})
}

// GetAcademyOrders lists an academy's bank-transfer orders for staff review.
func GetAcademyOrders(c *fiber.Ctx) error {
	academyID, err := uuid.Parse(c.Params("academyId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
	}

	query := database.DB.Where("academy_id = ?", academyID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.BankTransferOrder
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch orders"})
	}

	return c.JSON(fiber.Map{"data": orders})
}

func statusForOrderError(err error) int {
	switch {
	case errors.Is(err, services.ErrOrderNotFound), errors.Is(err, services.ErrTicketNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrOrderAlreadyProcessed):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ConfirmBankTransferOrder marks the deposit as received and runs the
// issuance flow. Safe to retry after a failure; a second call on a
// confirmed order returns a conflict.
func ConfirmBankTransferOrder(c *fiber.Ctx) error {
	staffID := currentUserID(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	confirmation, err := services.ConfirmBankTransferOrder(database.DB, orderID, staffID)
	if err != nil {
		return c.Status(statusForOrderError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	var order models.BankTransferOrder
	if err := database.DB.First(&order, "id = ?", orderID).Error; err == nil {
		go notifications.Notify(order.UserID, "ticket_purchased", "Deposit confirmed",
			"Your deposit was confirmed and your ticket is now active.", map[string]string{
				"order_id":       orderID.String(),
				"user_ticket_id": confirmation.UserTicket.ID.String(),
			})
	}

	return c.JSON(fiber.Map{
		"message":         "Order confirmed successfully.",
		"user_ticket":     confirmation.UserTicket,
		"booking":         confirmation.Booking,
		"booking_created": confirmation.BookingCreated,
		"auto_bookings":   confirmation.AutoBookings.Created,
	})
}

// RejectBankTransferOrder closes a pending order without issuing anything.
func RejectBankTransferOrder(c *fiber.Ctx) error {
	staffID := currentUserID(c)
	orderID, err := uuid.Parse(c.Params("orderId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid order id"})
	}

	var order models.BankTransferOrder
	if err := database.DB.First(&order, "id = ?", orderID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Order not found"})
	}
	if order.Status != models.OrderPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Order has already been processed"})
	}

	now := time.Now()
	err = database.DB.Model(&order).Updates(map[string]interface{}{
		"status":       models.OrderRejected,
		"confirmed_by": staffID,
		"confirmed_at": now,
	}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reject order"})
	}

	go notifications.Notify(order.UserID, "order_rejected", "Deposit not confirmed",
		"Your bank transfer order was rejected. Contact the academy for details.", map[string]string{
			"order_id": orderID.String(),
		})

	return c.JSON(fiber.Map{"message": "Order rejected."})
}
