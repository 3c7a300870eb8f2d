package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"gorm.io/gorm"
)

// RecountScheduleStudents recomputes a schedule's CurrentStudents from the
// booking rows and writes back the exact count. Every writer that touches
// bookings for a schedule calls this as its last step instead of applying a
// delta, so the cache self-heals from concurrent writers.
func RecountScheduleStudents(db *gorm.DB, scheduleID uuid.UUID) (int, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("schedule_id = ? AND status IN ?", scheduleID, models.CountedBookingStatuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	err = db.Model(&models.Schedule{}).
		Where("id = ?", scheduleID).
		Update("current_students", int(count)).Error
	return int(count), err
}

func hasActiveBooking(db *gorm.DB, userID, scheduleID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&models.Booking{}).
		Where("user_id = ? AND schedule_id = ? AND status IN ?", userID, scheduleID, models.ActiveBookingStatuses).
		Count(&count).Error
	return count > 0, err
}

// CreateBooking reserves a seat on a schedule for a user, spending one use
// of a ticket. When userTicketID is nil a usable ticket is selected
// automatically. All preconditions are checked before any write; if the
// booking insert fails after the ticket was consumed, the consumption is
// rolled back by hand since no multi-row transaction is assumed.
func CreateBooking(db *gorm.DB, userID, scheduleID uuid.UUID, userTicketID *uuid.UUID) (*models.Booking, error) {
	var schedule models.Schedule
	err := db.Preload("Class").First(&schedule, "id = ?", scheduleID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	if schedule.IsCanceled {
		return nil, ErrScheduleCanceled
	}
	if schedule.StartTime.Before(time.Now()) {
		return nil, ErrSchedulePast
	}

	maxStudents := schedule.MaxStudents
	if maxStudents <= 0 {
		maxStudents = models.DefaultMaxStudents
	}
	if schedule.CurrentStudents >= maxStudents {
		return nil, ErrCapacityFull
	}

	duplicate, err := hasActiveBooking(db, userID, scheduleID)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateBooking
	}

	selectedTicketID := userTicketID
	if selectedTicketID == nil {
		available, err := AvailableUserTickets(db, userID, schedule.Class.AcademyID, &schedule.ClassID)
		if err != nil {
			return nil, err
		}
		linked, err := LinkedTicketIDs(db, schedule.ClassID)
		if err != nil {
			return nil, err
		}
		selected := SelectUserTicket(available, linked, schedule.Class.AcademyID)
		if selected == nil {
			return nil, ErrNoUsableTicket
		}
		selectedTicketID = &selected.ID
	}

	if err := ConsumeUserTicket(db, *selectedTicketID, 1); err != nil {
		return nil, err
	}

	booking := models.Booking{
		UserID:        userID,
		ClassID:       &schedule.ClassID,
		ScheduleID:    &schedule.ID,
		UserTicketID:  selectedTicketID,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentPaid,
	}
	if err := db.Create(&booking).Error; err != nil {
		// Roll the consumption back by hand; RestoreUserTicket is a no-op
		// for period tickets, which were never decremented.
		if restoreErr := RestoreUserTicket(db, *selectedTicketID, 1); restoreErr != nil {
			log.Printf("🔥 FATAL: ticket %s consumed but booking insert and rollback both failed: %v", selectedTicketID, restoreErr)
		}
		return nil, err
	}

	if _, err := RecountScheduleStudents(db, scheduleID); err != nil {
		log.Printf("Failed to recount students for schedule %s: %v", scheduleID, err)
	}

	return &booking, nil
}

// allowedBookingTransitions is the forward lifecycle: a booking moves toward
// COMPLETED or CANCELLED and never comes back. CANCELLED is terminal, which
// also rules out a double cancellation restoring the same ticket use twice.
var allowedBookingTransitions = map[string][]string{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCompleted, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled},
	models.BookingCompleted: {models.BookingCancelled},
	models.BookingCancelled: {},
}

// UpdateBookingStatus transitions a booking and recounts its schedule. On
// cancellation, restoreTicket gives one use back to the COUNT ticket the
// booking was paid with. Re-seating a cancelled booking is rejected; it would
// bypass the capacity and duplicate checks, so staff create a fresh booking
// instead.
func UpdateBookingStatus(db *gorm.DB, bookingID uuid.UUID, status string, restoreTicket bool) (*models.Booking, error) {
	if _, known := allowedBookingTransitions[status]; !known {
		return nil, ErrInvalidStatus
	}

	var booking models.Booking
	err := db.First(&booking, "id = ?", bookingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	allowed := false
	for _, next := range allowedBookingTransitions[booking.Status] {
		if status == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrInvalidStatus
	}

	if err := db.Model(&booking).Update("status", status).Error; err != nil {
		return nil, err
	}
	booking.Status = status

	if status == models.BookingCancelled && restoreTicket && booking.UserTicketID != nil {
		if err := RestoreUserTicket(db, *booking.UserTicketID, 1); err != nil {
			log.Printf("Failed to restore ticket %s for cancelled booking %s: %v", booking.UserTicketID, bookingID, err)
		}
	}

	if booking.ScheduleID != nil {
		if _, err := RecountScheduleStudents(db, *booking.ScheduleID); err != nil {
			log.Printf("Failed to recount students for schedule %s: %v", booking.ScheduleID, err)
		}
	}

	return &booking, nil
}
