package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"gorm.io/gorm"
)

// OrderConfirmation is the outcome of confirming a bank-transfer order. The
// ticket is always issued on success; BookingCreated reports whether the
// optional schedule reservation was also made.
type OrderConfirmation struct {
	UserTicket     *models.UserTicket
	Booking        *models.Booking
	BookingCreated bool
	AutoBookings   PeriodBookingResult
}

// ConfirmBankTransferOrder turns a pending manual payment into an issued
// ticket plus optional booking. The flow is forward-then-compensate: each
// write happens in order and the only rollback is deleting a just-issued
// ticket when the revenue insert fails. Once the ticket and revenue row
// exist they are retained even if the schedule reservation fails — the
// purchase is never rolled back for a failed seat.
//
// A retry after a crash is safe: issued tickets carry the order id, so the
// saga reuses an existing ticket and revenue row instead of re-issuing.
func ConfirmBankTransferOrder(db *gorm.DB, orderID, staffID uuid.UUID) (*OrderConfirmation, error) {
	var order models.BankTransferOrder
	err := db.First(&order, "id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, ErrOrderAlreadyProcessed
	}

	var ticket models.Ticket
	err = db.First(&ticket, "id = ?", order.TicketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	// Reuse a ticket issued by a previous run that crashed before the order
	// was marked CONFIRMED.
	var userTicket *models.UserTicket
	issuedNow := false
	var existing models.UserTicket
	err = db.Preload("Ticket").First(&existing, "bank_transfer_order_id = ?", orderID).Error
	switch {
	case err == nil:
		userTicket = &existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		userTicket, err = IssueUserTicket(db, order.UserID, &ticket, time.Now(), &orderID)
		if err != nil {
			return nil, err
		}
		issuedNow = true
	default:
		return nil, err
	}

	revenue, err := ensureOrderRevenue(db, &order, &ticket, userTicket)
	if err != nil {
		if issuedNow {
			if delErr := db.Delete(&models.UserTicket{}, "id = ?", userTicket.ID).Error; delErr != nil {
				log.Printf("🔥 FATAL: revenue insert failed and ticket %s could not be rolled back: %v", userTicket.ID, delErr)
			}
		}
		return nil, err
	}

	ensureAcademyStudent(db, order.AcademyID, order.UserID)

	confirmation := &OrderConfirmation{UserTicket: userTicket}

	if ticket.TicketType == models.TicketTypePeriod {
		autoBookings, err := GenerateBookingsForPeriod(db, order.UserID, userTicket.ID, ticket.ID, userTicket.StartDate, userTicket.ExpiryDate)
		if err != nil {
			log.Printf("Period auto-booking failed for order %s: %v", orderID, err)
		}
		confirmation.AutoBookings = autoBookings
	}

	if order.ScheduleID != nil {
		booking := confirmOrderBooking(db, &order, userTicket)
		if booking != nil {
			confirmation.Booking = booking
			confirmation.BookingCreated = true
		}
	}

	now := time.Now()
	err = db.Model(&models.BankTransferOrder{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"status":                 models.OrderConfirmed,
		"user_ticket_id":         userTicket.ID,
		"revenue_transaction_id": revenue.ID,
		"confirmed_by":           staffID,
		"confirmed_at":           now,
	}).Error
	if err != nil {
		// The order stays PENDING; a retry picks the ticket back up via its
		// order back-reference.
		return nil, err
	}

	return confirmation, nil
}

// ensureOrderRevenue records the order's revenue exactly once per issued
// ticket; on retry an existing row is reused.
func ensureOrderRevenue(db *gorm.DB, order *models.BankTransferOrder, ticket *models.Ticket, userTicket *models.UserTicket) (*models.RevenueTransaction, error) {
	var existing models.RevenueTransaction
	err := db.First(&existing, "user_ticket_id = ?", userTicket.ID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	registrationType := models.RegistrationNew
	var prior int64
	err = db.Model(&models.RevenueTransaction{}).
		Where("academy_id = ? AND user_id = ? AND payment_status = ?", order.AcademyID, order.UserID, models.PaymentCompleted).
		Count(&prior).Error
	if err != nil {
		return nil, err
	}
	if prior > 0 {
		registrationType = models.RegistrationRe
	}

	quantity := 1
	if ticket.TicketType == models.TicketTypeCount && ticket.TotalCount != nil {
		quantity = *ticket.TotalCount
	}

	revenue := models.RevenueTransaction{
		AcademyID:        order.AcademyID,
		UserID:           order.UserID,
		TicketID:         order.TicketID,
		UserTicketID:     userTicket.ID,
		DiscountID:       order.DiscountID,
		OriginalPrice:    order.Amount,
		DiscountAmount:   0,
		FinalPrice:       order.Amount,
		PaymentMethod:    models.PaymentMethodBankTransfer,
		PaymentStatus:    models.PaymentCompleted,
		RegistrationType: registrationType,
		Quantity:         quantity,
		ValidDays:        ticket.ValidDays,
		TicketName:       ticket.Name,
		TicketTypeSnap:   ticket.TicketType,
		TransactionDate:  time.Now(),
	}
	if err := db.Create(&revenue).Error; err != nil {
		return nil, err
	}
	return &revenue, nil
}

// ensureAcademyStudent inserts the academy membership row if absent.
// Best-effort: a failure is logged, not propagated.
func ensureAcademyStudent(db *gorm.DB, academyID, userID uuid.UUID) {
	student := models.AcademyStudent{AcademyID: academyID, UserID: userID}
	err := db.Where("academy_id = ? AND user_id = ?", academyID, userID).
		FirstOrCreate(&student).Error
	if err != nil {
		log.Printf("Failed to ensure academy membership for user %s in academy %s: %v", userID, academyID, err)
	}
}

// confirmOrderBooking attempts the schedule reservation attached to an
// order. Any failure skips the booking without touching the issued ticket
// or the revenue record.
func confirmOrderBooking(db *gorm.DB, order *models.BankTransferOrder, userTicket *models.UserTicket) *models.Booking {
	var schedule models.Schedule
	if err := db.First(&schedule, "id = ?", *order.ScheduleID).Error; err != nil {
		log.Printf("Order %s: schedule %s not found, booking skipped: %v", order.ID, order.ScheduleID, err)
		return nil
	}
	if schedule.IsCanceled || schedule.StartTime.Before(time.Now()) {
		log.Printf("Order %s: schedule %s canceled or past, booking skipped", order.ID, order.ScheduleID)
		return nil
	}

	duplicate, err := hasActiveBooking(db, order.UserID, schedule.ID)
	if err != nil || duplicate {
		if duplicate {
			log.Printf("Order %s: user %s already booked on schedule %s", order.ID, order.UserID, schedule.ID)
		}
		return nil
	}

	if err := ConsumeUserTicket(db, userTicket.ID, 1); err != nil {
		log.Printf("Order %s: ticket consumption failed, booking skipped: %v", order.ID, err)
		return nil
	}

	booking := models.Booking{
		UserID:        order.UserID,
		ClassID:       &schedule.ClassID,
		ScheduleID:    &schedule.ID,
		UserTicketID:  &userTicket.ID,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentCompleted,
	}
	if err := db.Create(&booking).Error; err != nil {
		log.Printf("Order %s: booking insert failed: %v", order.ID, err)
		if restoreErr := RestoreUserTicket(db, userTicket.ID, 1); restoreErr != nil {
			log.Printf("🔥 FATAL: ticket %s consumed for order %s but booking insert and rollback both failed: %v", userTicket.ID, order.ID, restoreErr)
		}
		return nil
	}

	if _, err := RecountScheduleStudents(db, schedule.ID); err != nil {
		log.Printf("Failed to recount students for schedule %s: %v", schedule.ID, err)
	}

	return &booking
}
