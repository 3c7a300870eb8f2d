package handlers

import (
	"errors"
	"time"

	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/notifications"
	"github.com/tkaykim/moveit-backend/payments"
	"github.com/tkaykim/moveit-backend/services"
	"github.com/tkaykim/moveit-backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseTicketRequest struct {
	TicketID   string  `json:"ticket_id" validate:"required,uuid"`
	BillingRef string  `json:"billing_ref" validate:"required"`
	DiscountID *string `json:"discount_id,omitempty" validate:"omitempty,uuid"`
	StartDate  *string `json:"start_date,omitempty"`
}

// GetTickets lists the public catalog, optionally scoped to one academy.
func GetTickets(c *fiber.Ctx) error {
	query := database.DB.Preload("Academy").
		Where("is_on_sale = ? AND is_public = ?", true, true)

	if academyID := c.Query("academy_id"); academyID != "" {
		id, err := uuid.Parse(academyID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid academy id"})
		}
		query = query.Where("academy_id = ?", id)
	}

	var tickets []models.Ticket
	if err := query.Order("created_at DESC").Find(&tickets).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tickets"})
	}

	return c.JSON(fiber.Map{"data": tickets})
}

func GetMyTickets(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var userTickets []models.UserTicket
	err := database.DB.Preload("Ticket").Preload("Ticket.Academy").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&userTickets).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch your tickets"})
	}

	return c.JSON(fiber.Map{"data": userTickets})
}

// PurchaseTicket charges the buyer's card and issues the ticket. The charge
// happens first; issuance failures after a successful charge are surfaced so
// staff can reconcile against the gateway transaction id.
func PurchaseTicket(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req PurchaseTicketRequest
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

	var discount *models.Discount
	if req.DiscountID != nil {
		discountID, _ := uuid.Parse(*req.DiscountID)
		var d models.Discount
		if err := database.DB.First(&d, "id = ?", discountID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Discount not found"})
		}
		discount = &d
	}

	amount := ticket.Price
	if discount != nil {
		discountAmount, err := services.ComputeDiscount(discount, &ticket, time.Now())
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Discount is not applicable"})
		}
		amount -= discountAmount
	}

	startDate := utils.DateOnly(time.Now())
	if req.StartDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start_date, expected YYYY-MM-DD"})
		}
		startDate = parsed
	}

	transactionID, err := payments.ChargeCard(req.BillingRef, amount)
	if err != nil {
		if errors.Is(err, payments.ErrChargeDeclined) {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "Card charge was declined"})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment could not be processed"})
	}

	result, err := services.PurchaseTicket(database.DB, userID, &ticket, discount, startDate)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":          "Payment succeeded but ticket issuance failed. Contact support.",
			"transaction_id": transactionID,
		})
	}

	go notifications.Notify(userID, "ticket_purchased", "Ticket purchased",
		ticket.Name+" is now active.", map[string]string{
			"user_ticket_id": result.UserTicket.ID.String(),
		})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "Ticket purchased successfully.",
		"transaction_id": transactionID,
		"user_ticket":    result.UserTicket,
		"auto_bookings":  result.AutoBookings.Created,
	})
}

type CreateTicketRequest struct {
	AcademyID  *string  `json:"academy_id,omitempty" validate:"omitempty,uuid"`
	ClassID    *string  `json:"class_id,omitempty" validate:"omitempty,uuid"`
	Name       string   `json:"name" validate:"required"`
	TicketType string   `json:"ticket_type" validate:"required,oneof=COUNT PERIOD"`
	TotalCount *int     `json:"total_count,omitempty" validate:"omitempty,min=1"`
	ValidDays  *int     `json:"valid_days,omitempty" validate:"omitempty,min=1"`
	Price      float64  `json:"price" validate:"min=0"`
	IsGeneral  bool     `json:"is_general"`
	IsOnSale   *bool    `json:"is_on_sale,omitempty"`
	IsPublic   *bool    `json:"is_public,omitempty"`
	ClassIDs   []string `json:"class_ids,omitempty"`
}

// CreateTicket creates a ticket template and its class links.
func CreateTicket(c *fiber.Ctx) error {
	var req CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.TicketType == models.TicketTypeCount && req.TotalCount == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "COUNT tickets require total_count"})
	}

	ticket := models.Ticket{
		Name:       req.Name,
		TicketType: req.TicketType,
		TotalCount: req.TotalCount,
		ValidDays:  req.ValidDays,
		Price:      req.Price,
		IsGeneral:  req.IsGeneral,
		IsOnSale:   true,
		IsPublic:   true,
	}
	if req.AcademyID != nil {
		id, _ := uuid.Parse(*req.AcademyID)
		ticket.AcademyID = &id
	}
	if req.ClassID != nil {
		id, _ := uuid.Parse(*req.ClassID)
		ticket.ClassID = &id
	}
	if req.IsOnSale != nil {
		ticket.IsOnSale = *req.IsOnSale
	}
	if req.IsPublic != nil {
		ticket.IsPublic = *req.IsPublic
	}

	if err := database.DB.Create(&ticket).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create ticket"})
	}

	for _, raw := range req.ClassIDs {
		classID, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		link := models.TicketClass{TicketID: ticket.ID, ClassID: classID}
		database.DB.Where("ticket_id = ? AND class_id = ?", ticket.ID, classID).FirstOrCreate(&link)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Ticket created successfully.",
		"ticket":  ticket,
	})
}
