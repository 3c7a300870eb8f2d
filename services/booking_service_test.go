package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
)

func TestCreateBookingSpendsTicketAndRecounts(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	user := createUser(t, db, "dancer")
	ticket := createCountTicket(t, db, academy.ID, 1)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	ut := issueTicket(t, db, user.ID, ticket)

	booking, err := CreateBooking(db, user.ID, schedule.ID, nil)
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if booking.Status != models.BookingConfirmed {
		t.Errorf("booking status = %s, want CONFIRMED", booking.Status)
	}
	if booking.UserTicketID == nil || *booking.UserTicketID != ut.ID {
		t.Errorf("booking not linked to the auto-selected ticket")
	}

	gotTicket := reloadUserTicket(t, db, ut.ID)
	if *gotTicket.RemainingCount != 0 || gotTicket.Status != models.UserTicketUsed {
		t.Errorf("ticket after booking: remaining=%d status=%s, want 0/USED", *gotTicket.RemainingCount, gotTicket.Status)
	}

	gotSchedule := reloadSchedule(t, db, schedule.ID)
	if gotSchedule.CurrentStudents != 1 {
		t.Errorf("current_students = %d, want 1", gotSchedule.CurrentStudents)
	}

	// The same exhausted ticket cannot pay for another seat.
	other := createSchedule(t, db, class.ID, time.Now().Add(48*time.Hour), 10)
	_, err = CreateBooking(db, user.ID, other.ID, &ut.ID)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("booking with exhausted ticket: got %v, want ErrInsufficientBalance", err)
	}
}

func TestCreateBookingPreconditions(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	user := createUser(t, db, "dancer")
	ticket := createCountTicket(t, db, academy.ID, 5)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	issueTicket(t, db, user.ID, ticket)

	if _, err := CreateBooking(db, user.ID, uuid.New(), nil); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("missing schedule: got %v, want ErrScheduleNotFound", err)
	}

	canceled := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	db.Model(canceled).Update("is_canceled", true)
	if _, err := CreateBooking(db, user.ID, canceled.ID, nil); !errors.Is(err, ErrScheduleCanceled) {
		t.Errorf("canceled schedule: got %v, want ErrScheduleCanceled", err)
	}

	past := createSchedule(t, db, class.ID, time.Now().Add(-time.Hour), 10)
	if _, err := CreateBooking(db, user.ID, past.ID, nil); !errors.Is(err, ErrSchedulePast) {
		t.Errorf("past schedule: got %v, want ErrSchedulePast", err)
	}

	full := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 1)
	db.Model(full).Update("current_students", 1)
	if _, err := CreateBooking(db, user.ID, full.ID, nil); !errors.Is(err, ErrCapacityFull) {
		t.Errorf("full schedule: got %v, want ErrCapacityFull", err)
	}
}

func TestCreateBookingRejectsDuplicate(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	user := createUser(t, db, "dancer")
	ticket := createCountTicket(t, db, academy.ID, 5)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	issueTicket(t, db, user.ID, ticket)

	if _, err := CreateBooking(db, user.ID, schedule.ID, nil); err != nil {
		t.Fatalf("first booking failed: %v", err)
	}
	if _, err := CreateBooking(db, user.ID, schedule.ID, nil); !errors.Is(err, ErrDuplicateBooking) {
		t.Fatalf("second booking: got %v, want ErrDuplicateBooking", err)
	}
}

func TestCreateBookingWithoutTicket(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	user := createUser(t, db, "dancer")

	if _, err := CreateBooking(db, user.ID, schedule.ID, nil); !errors.Is(err, ErrNoUsableTicket) {
		t.Fatalf("bookings without a usable ticket: got %v, want ErrNoUsableTicket", err)
	}
}

func TestCancelBookingRestoresCountTicket(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	user := createUser(t, db, "dancer")
	ticket := createCountTicket(t, db, academy.ID, 1)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	ut := issueTicket(t, db, user.ID, ticket)

	booking, err := CreateBooking(db, user.ID, schedule.ID, &ut.ID)
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	cancelled, err := UpdateBookingStatus(db, booking.ID, models.BookingCancelled, true)
	if err != nil {
		t.Fatalf("UpdateBookingStatus failed: %v", err)
	}
	if cancelled.Status != models.BookingCancelled {
		t.Errorf("booking status = %s, want CANCELLED", cancelled.Status)
	}

	gotTicket := reloadUserTicket(t, db, ut.ID)
	if *gotTicket.RemainingCount != 1 || gotTicket.Status != models.UserTicketActive {
		t.Errorf("restored ticket: remaining=%d status=%s, want 1/ACTIVE", *gotTicket.RemainingCount, gotTicket.Status)
	}

	gotSchedule := reloadSchedule(t, db, schedule.ID)
	if gotSchedule.CurrentStudents != 0 {
		t.Errorf("current_students after cancel = %d, want 0", gotSchedule.CurrentStudents)
	}
}

func TestUpdateBookingStatusValidation(t *testing.T) {
	db := setupTestDB(t)

	if _, err := UpdateBookingStatus(db, uuid.New(), "SHIPPED", false); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bogus status: got %v, want ErrInvalidStatus", err)
	}
	if _, err := UpdateBookingStatus(db, uuid.New(), models.BookingCancelled, false); !errors.Is(err, ErrBookingNotFound) {
		t.Errorf("missing booking: got %v, want ErrBookingNotFound", err)
	}
}

func TestCancelledBookingIsTerminal(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	user := createUser(t, db, "dancer")
	ticket := createCountTicket(t, db, academy.ID, 1)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	ut := issueTicket(t, db, user.ID, ticket)

	booking, err := CreateBooking(db, user.ID, schedule.ID, &ut.ID)
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if _, err := UpdateBookingStatus(db, booking.ID, models.BookingCancelled, true); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	// Re-seating a cancelled booking would bypass the capacity and duplicate
	// checks.
	if _, err := UpdateBookingStatus(db, booking.ID, models.BookingConfirmed, false); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("CANCELLED -> CONFIRMED: got %v, want ErrInvalidStatus", err)
	}

	// A second cancellation must not restore the same ticket use twice.
	if _, err := UpdateBookingStatus(db, booking.ID, models.BookingCancelled, true); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("double cancel: got %v, want ErrInvalidStatus", err)
	}
	gotTicket := reloadUserTicket(t, db, ut.ID)
	if *gotTicket.RemainingCount != 1 {
		t.Errorf("remaining after double cancel attempt = %d, want 1", *gotTicket.RemainingCount)
	}

	if _, err := UpdateBookingStatus(db, booking.ID, "SHIPPED", false); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bogus status on existing booking: got %v, want ErrInvalidStatus", err)
	}
}

func TestRecountHealsDriftedCounter(t *testing.T) {
	db := setupTestDB(t)
	academy := createAcademy(t, db, "groove")
	class := createClass(t, db, academy.ID, models.ClassTypeRegular)
	schedule := createSchedule(t, db, class.ID, time.Now().Add(24*time.Hour), 10)
	user := createUser(t, db, "dancer")
	ticket := createCountTicket(t, db, academy.ID, 5)
	linkTicketToClass(t, db, ticket.ID, class.ID)
	issueTicket(t, db, user.ID, ticket)

	if _, err := CreateBooking(db, user.ID, schedule.ID, nil); err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	// Simulate drift from a concurrent writer; a recount writes the exact
	// count derived from the booking rows.
	db.Model(&models.Schedule{}).Where("id = ?", schedule.ID).Update("current_students", 7)

	count, err := RecountScheduleStudents(db, schedule.ID)
	if err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("recount = %d, want 1", count)
	}
	if got := reloadSchedule(t, db, schedule.ID); got.CurrentStudents != 1 {
		t.Errorf("current_students = %d, want 1", got.CurrentStudents)
	}
}
