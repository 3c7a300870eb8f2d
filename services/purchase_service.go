package services

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/utils"
	"gorm.io/gorm"
)

// PurchaseResult is the outcome of an immediate (card-paid) ticket purchase.
type PurchaseResult struct {
	UserTicket   *models.UserTicket
	Revenue      *models.RevenueTransaction
	AutoBookings PeriodBookingResult
}

// ComputeDiscount validates a discount against a ticket and returns the
// amount to subtract, capped at the ticket price.
func ComputeDiscount(discount *models.Discount, ticket *models.Ticket, now time.Time) (float64, error) {
	if !discount.IsActive {
		return 0, ErrDiscountInvalid
	}

	today := utils.DateOnly(now)
	if discount.ValidFrom != nil && utils.DateOnly(*discount.ValidFrom).After(today) {
		return 0, ErrDiscountInvalid
	}
	if discount.ValidUntil != nil && today.After(utils.DateOnly(*discount.ValidUntil)) {
		return 0, ErrDiscountInvalid
	}
	if discount.AcademyID != nil {
		if ticket.AcademyID == nil || *discount.AcademyID != *ticket.AcademyID {
			return 0, ErrDiscountInvalid
		}
	}

	var amount float64
	if discount.DiscountType == models.DiscountTypePercent {
		amount = math.Floor(ticket.Price * discount.DiscountValue / 100)
	} else {
		amount = discount.DiscountValue
	}
	return math.Min(amount, ticket.Price), nil
}

// PurchaseTicket issues a ticket the buyer has already paid for by card:
// user ticket insert, revenue record (compensated by deleting the ticket on
// failure), academy membership, and period auto-booking. The caller charges
// the card first; this runs only after a successful charge.
func PurchaseTicket(db *gorm.DB, userID uuid.UUID, ticket *models.Ticket, discount *models.Discount, startDate time.Time) (*PurchaseResult, error) {
	discountAmount := 0.0
	var discountID *uuid.UUID
	if discount != nil {
		amount, err := ComputeDiscount(discount, ticket, time.Now())
		if err != nil {
			return nil, err
		}
		discountAmount = amount
		discountID = &discount.ID
	}

	userTicket, err := IssueUserTicket(db, userID, ticket, startDate, nil)
	if err != nil {
		return nil, err
	}

	registrationType := models.RegistrationNew
	if ticket.AcademyID != nil {
		var prior int64
		err = db.Model(&models.RevenueTransaction{}).
			Where("academy_id = ? AND user_id = ? AND payment_status = ?", *ticket.AcademyID, userID, models.PaymentCompleted).
			Count(&prior).Error
		if err == nil && prior > 0 {
			registrationType = models.RegistrationRe
		}
	}

	quantity := 1
	if ticket.TicketType == models.TicketTypeCount && ticket.TotalCount != nil {
		quantity = *ticket.TotalCount
	}

	academyID := uuid.Nil
	if ticket.AcademyID != nil {
		academyID = *ticket.AcademyID
	}

	revenue := models.RevenueTransaction{
		AcademyID:        academyID,
		UserID:           userID,
		TicketID:         ticket.ID,
		UserTicketID:     userTicket.ID,
		DiscountID:       discountID,
		OriginalPrice:    ticket.Price,
		DiscountAmount:   discountAmount,
		FinalPrice:       ticket.Price - discountAmount,
		PaymentMethod:    models.PaymentMethodCard,
		PaymentStatus:    models.PaymentCompleted,
		RegistrationType: registrationType,
		Quantity:         quantity,
		ValidDays:        ticket.ValidDays,
		TicketName:       ticket.Name,
		TicketTypeSnap:   ticket.TicketType,
		TransactionDate:  time.Now(),
	}
	if err := db.Create(&revenue).Error; err != nil {
		if delErr := db.Delete(&models.UserTicket{}, "id = ?", userTicket.ID).Error; delErr != nil {
			log.Printf("🔥 FATAL: revenue insert failed and ticket %s could not be rolled back: %v", userTicket.ID, delErr)
		}
		return nil, err
	}

	if ticket.AcademyID != nil {
		ensureAcademyStudent(db, *ticket.AcademyID, userID)
	}

	result := &PurchaseResult{UserTicket: userTicket, Revenue: &revenue}

	if ticket.TicketType == models.TicketTypePeriod {
		autoBookings, err := GenerateBookingsForPeriod(db, userID, userTicket.ID, ticket.ID, userTicket.StartDate, userTicket.ExpiryDate)
		if err != nil {
			log.Printf("Period auto-booking failed for ticket %s: %v", userTicket.ID, err)
		}
		result.AutoBookings = autoBookings
	}

	return result, nil
}
