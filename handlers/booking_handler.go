package handlers

import (
	"errors"
	"fmt"

	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/notifications"
	"github.com/tkaykim/moveit-backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	ScheduleID   string  `json:"schedule_id" validate:"required,uuid"`
	UserTicketID *string `json:"user_ticket_id,omitempty" validate:"omitempty,uuid"`
}

type UpdateBookingStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	RestoreTicket bool   `json:"restore_ticket,omitempty"`
}

// statusForBookingError maps the engine's business rejections to HTTP codes;
// anything unrecognized is a server error.
func statusForBookingError(err error) int {
	switch {
	case errors.Is(err, services.ErrScheduleNotFound),
		errors.Is(err, services.ErrTicketNotFound),
		errors.Is(err, services.ErrBookingNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrScheduleCanceled),
		errors.Is(err, services.ErrSchedulePast),
		errors.Is(err, services.ErrCapacityFull),
		errors.Is(err, services.ErrDuplicateBooking),
		errors.Is(err, services.ErrNoUsableTicket),
		errors.Is(err, services.ErrTicketNotActive),
		errors.Is(err, services.ErrTicketExpired),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrInvalidStatus):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func CreateBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	scheduleID, _ := uuid.Parse(req.ScheduleID)
	var userTicketID *uuid.UUID
	if req.UserTicketID != nil {
		id, _ := uuid.Parse(*req.UserTicketID)
		userTicketID = &id
	}

	booking, err := services.CreateBooking(database.DB, userID, scheduleID, userTicketID)
	if err != nil {
		return c.Status(statusForBookingError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	go notifyBookingConfirmed(userID, booking)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking confirmed successfully.",
		"booking": booking,
	})
}

func notifyBookingConfirmed(userID uuid.UUID, booking *models.Booking) {
	var schedule models.Schedule
	title := "Booking confirmed"
	body := "Your class has been booked."
	if booking.ScheduleID != nil {
		if err := database.DB.Preload("Class.Academy").First(&schedule, "id = ?", *booking.ScheduleID).Error; err == nil {
			body = fmt.Sprintf("%s %s on %s has been booked.",
				schedule.Class.Academy.Name, schedule.Class.Title,
				schedule.StartTime.Format("Jan 2 15:04"))
		}
	}
	notifications.Notify(userID, "booking_confirmed", title, body, map[string]string{
		"booking_id": booking.ID.String(),
	})
}

func GetMyBookings(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var bookings []models.Booking
	err := database.DB.Preload("Schedule").Preload("Schedule.Class").Preload("UserTicket").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch bookings"})
	}

	return c.JSON(fiber.Map{"data": bookings})
}

func UpdateBookingStatus(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var req UpdateBookingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	booking, err := services.UpdateBookingStatus(database.DB, bookingID, req.Status, req.RestoreTicket)
	if err != nil {
		return c.Status(statusForBookingError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Booking status updated.",
		"booking": booking,
	})
}

// CancelMyBooking lets a learner cancel their own booking; the ticket use
// is always given back on self-service cancellation.
func CancelMyBooking(c *fiber.Ctx) error {
	userID := currentUserID(c)
	bookingID, err := uuid.Parse(c.Params("bookingId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking id"})
	}

	var booking models.Booking
	if err := database.DB.First(&booking, "id = ?", bookingID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
	}
	if booking.UserID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not the owner of this booking"})
	}
	if booking.Status == models.BookingCancelled {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Booking is already cancelled"})
	}

	updated, err := services.UpdateBookingStatus(database.DB, bookingID, models.BookingCancelled, true)
	if err != nil {
		return c.Status(statusForBookingError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	go notifications.Notify(userID, "booking_cancelled", "Booking cancelled",
		"Your booking has been cancelled.", map[string]string{"booking_id": bookingID.String()})

	return c.JSON(fiber.Map{
		"message": "Booking cancelled.",
		"booking": updated,
	})
}
