package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"gorm.io/gorm"
)

func createOrder(t *testing.T, db *gorm.DB, academyID, userID, ticketID uuid.UUID, scheduleID *uuid.UUID, amount float64) *models.BankTransferOrder {
	t.Helper()
	order := models.BankTransferOrder{
		AcademyID:  academyID,
		UserID:     userID,
		TicketID:   ticketID,
		ScheduleID: scheduleID,
		Amount:     amount,
		Status:     models.OrderPending,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("failed to create order: %v", err)
	}
	return &order
}

func reloadOrder(t *testing.T, db *gorm.DB, id uuid.UUID) *models.BankTransferOrder {
	t.Helper()
	var order models.BankTransferOrder
	if err := db.First(&order, "id = ?", id).Error; err != nil {
		t.Fatalf("failed to reload order: %v", err)
	}
	return &order
}

func TestConfirmOrderIssuesTicketAndBooking(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(48*time.Hour), 10)
	user := createUser(t, db, "buyer")
	staff := createUser(t, db, "staff")
	ticket := createCountTicket(t, db, academy.ID, 10)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	order := createOrder(t, db, academy.ID, user.ID, ticket.ID, &schedule.ID, 100000)

	confirmation, err := ConfirmBankTransferOrder(db, order.ID, staff.ID)
	if err != nil {
		t.Fatalf("ConfirmBankTransferOrder failed: %v", err)
	}

	if confirmation.UserTicket == nil {
		t.Fatal("no ticket issued")
	}
	if !confirmation.BookingCreated || confirmation.Booking == nil {
		t.Fatal("booking not created")
	}
	if confirmation.Booking.PaymentStatus != models.PaymentCompleted {
		t.Errorf("booking payment status = %s, want COMPLETED", confirmation.Booking.PaymentStatus)
	}

	gotTicket := reloadUserTicket(t, db, confirmation.UserTicket.ID)
	if *gotTicket.RemainingCount != 9 {
		t.Errorf("remaining after schedule consume = %d, want 9", *gotTicket.RemainingCount)
	}

	var revenue models.RevenueTransaction
	if err := db.First(&revenue, "user_ticket_id = ?", gotTicket.ID).Error; err != nil {
		t.Fatalf("revenue record missing: %v", err)
	}
	if revenue.PaymentMethod != models.PaymentMethodBankTransfer || revenue.FinalPrice != 100000 {
		t.Errorf("revenue = %s/%.0f, want BANK_TRANSFER/100000", revenue.PaymentMethod, revenue.FinalPrice)
	}

	gotOrder := reloadOrder(t, db, order.ID)
	if gotOrder.Status != models.OrderConfirmed {
		t.Errorf("order status = %s, want CONFIRMED", gotOrder.Status)
	}
	if gotOrder.UserTicketID == nil || *gotOrder.UserTicketID != gotTicket.ID {
		t.Error("order missing ticket back-reference")
	}
	if gotOrder.RevenueTransactionID == nil || *gotOrder.RevenueTransactionID != revenue.ID {
		t.Error("order missing revenue back-reference")
	}
	if gotOrder.ConfirmedBy == nil || *gotOrder.ConfirmedBy != staff.ID {
		t.Error("order missing confirming staff")
	}

	var membership models.AcademyStudent
	if err := db.First(&membership, "academy_id = ? AND user_id = ?", academy.ID, user.ID).Error; err != nil {
		t.Errorf("academy membership not ensured: %v", err)
	}

	if got := reloadSchedule(t, db, schedule.ID); got.CurrentStudents != 1 {
		t.Errorf("current_students = %d, want 1", got.CurrentStudents)
	}
}

func TestConfirmOrderRejectsReprocessing(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	user := createUser(t, db, "buyer")
	staff := createUser(t, db, "staff")
	ticket := createCountTicket(t, db, academy.ID, 5)
	order := createOrder(t, db, academy.ID, user.ID, ticket.ID, nil, 50000)

	if _, err := ConfirmBankTransferOrder(db, order.ID, staff.ID); err != nil {
		t.Fatalf("first confirmation failed: %v", err)
	}
	if _, err := ConfirmBankTransferOrder(db, order.ID, staff.ID); !errors.Is(err, ErrOrderAlreadyProcessed) {
		t.Fatalf("second confirmation: got %v, want ErrOrderAlreadyProcessed", err)
	}

	if _, err := ConfirmBankTransferOrder(db, uuid.New(), staff.ID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order: got %v, want ErrOrderNotFound", err)
	}
}

// A failed schedule reservation must not unwind the purchase: ticket and
// revenue stay, the order is confirmed, only the booking is skipped.
func TestConfirmOrderKeepsTicketWhenBookingFails(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(48*time.Hour), 10)
	db.Model(schedule).Update("is_canceled", true)
	user := createUser(t, db, "buyer")
	staff := createUser(t, db, "staff")
	ticket := createCountTicket(t, db, academy.ID, 10)
	order := createOrder(t, db, academy.ID, user.ID, ticket.ID, &schedule.ID, 100000)

	confirmation, err := ConfirmBankTransferOrder(db, order.ID, staff.ID)
	if err != nil {
		t.Fatalf("ConfirmBankTransferOrder failed: %v", err)
	}

	if confirmation.BookingCreated || confirmation.Booking != nil {
		t.Error("booking should have been skipped for a canceled schedule")
	}

	gotTicket := reloadUserTicket(t, db, confirmation.UserTicket.ID)
	if gotTicket.Status != models.UserTicketActive || *gotTicket.RemainingCount != 10 {
		t.Errorf("ticket = %s/%d, want ACTIVE/10 untouched", gotTicket.Status, *gotTicket.RemainingCount)
	}

	if gotOrder := reloadOrder(t, db, order.ID); gotOrder.Status != models.OrderConfirmed {
		t.Errorf("order status = %s, want CONFIRMED despite skipped booking", gotOrder.Status)
	}

	var n int64
	db.Model(&models.Booking{}).Count(&n)
	if n != 0 {
		t.Errorf("bookings = %d, want 0", n)
	}
}

func TestConfirmOrderGeneratesPeriodBookings(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	user := createUser(t, db, "buyer")
	staff := createUser(t, db, "staff")
	ticket := createPeriodTicket(t, db, academy.ID, false, 30)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	for day := 1; day <= 2; day++ {
		createSchedule(t, db, class.ID, time.Now().AddDate(0, 0, day), 10)
	}
	order := createOrder(t, db, academy.ID, user.ID, ticket.ID, nil, 300000)

	confirmation, err := ConfirmBankTransferOrder(db, order.ID, staff.ID)
	if err != nil {
		t.Fatalf("ConfirmBankTransferOrder failed: %v", err)
	}
	if confirmation.AutoBookings.Created != 2 {
		t.Errorf("auto bookings created = %d, want 2", confirmation.AutoBookings.Created)
	}
	if confirmation.UserTicket.RemainingCount != nil {
		t.Error("period ticket should have no remaining count")
	}
}

// Simulates a crash after the ticket was issued but before the order was
// marked CONFIRMED: the retry must reuse the issued ticket, not create a
// second one.
func TestConfirmOrderRetryDoesNotDoubleIssue(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	user := createUser(t, db, "buyer")
	staff := createUser(t, db, "staff")
	ticket := createCountTicket(t, db, academy.ID, 5)
	order := createOrder(t, db, academy.ID, user.ID, ticket.ID, nil, 50000)

	orphan, err := IssueUserTicket(db, user.ID, ticket, time.Now(), &order.ID)
	if err != nil {
		t.Fatalf("failed to pre-issue ticket: %v", err)
	}

	confirmation, err := ConfirmBankTransferOrder(db, order.ID, staff.ID)
	if err != nil {
		t.Fatalf("retry confirmation failed: %v", err)
	}
	if confirmation.UserTicket.ID != orphan.ID {
		t.Errorf("retry issued a new ticket %s instead of reusing %s", confirmation.UserTicket.ID, orphan.ID)
	}

	var tickets int64
	db.Model(&models.UserTicket{}).Where("user_id = ?", user.ID).Count(&tickets)
	if tickets != 1 {
		t.Errorf("user tickets = %d, want 1", tickets)
	}

	var revenues int64
	db.Model(&models.RevenueTransaction{}).Where("user_ticket_id = ?", orphan.ID).Count(&revenues)
	if revenues != 1 {
		t.Errorf("revenue rows = %d, want 1", revenues)
	}
}
