package services

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/utils"
	"gorm.io/gorm"
)

// PeriodBookingResult reports a bulk generation run. Skipped counts the
// candidate schedules that already had a booking, which is what makes a
// repeated run a no-op.
type PeriodBookingResult struct {
	Created     int
	Skipped     int
	ScheduleIDs []uuid.UUID
}

// SchedulesForPeriodTicket resolves the schedules a period ticket covers
// inside [startDate, endDate]: schedules of the classes the template is
// linked to, or, for an unlinked general template, every non-canceled
// schedule of the academy's regular classes.
func SchedulesForPeriodTicket(db *gorm.DB, ticketID uuid.UUID, startDate, endDate time.Time) ([]models.Schedule, error) {
	classIDs, err := LinkedClassIDs(db, ticketID)
	if err != nil {
		return nil, err
	}

	from := utils.DateOnly(startDate)
	to := utils.EndOfDay(endDate)

	var schedules []models.Schedule
	if len(classIDs) == 0 {
		var ticket models.Ticket
		if err := db.First(&ticket, "id = ?", ticketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTicketNotFound
			}
			return nil, err
		}
		if !ticket.IsGeneral || ticket.AcademyID == nil {
			return nil, nil
		}

		err = db.Joins("JOIN classes ON classes.id = schedules.class_id").
			Where("classes.academy_id = ? AND classes.class_type = ?", *ticket.AcademyID, models.ClassTypeRegular).
			Where("schedules.is_canceled = ?", false).
			Where("schedules.start_time BETWEEN ? AND ?", from, to).
			Order("schedules.start_time ASC").
			Find(&schedules).Error
		return schedules, err
	}

	err = db.Where("class_id IN ?", classIDs).
		Where("is_canceled = ?", false).
		Where("start_time BETWEEN ? AND ?", from, to).
		Order("start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

// GenerateBookingsForPeriod bulk-books every schedule a period ticket covers
// in its window. Schedules the user already has an active booking for are
// skipped, so running this twice with the same arguments cannot double-book.
// Per-schedule insert failures are logged and the batch continues; a
// purchase is never rolled back because auto-booking partially failed.
func GenerateBookingsForPeriod(db *gorm.DB, userID, userTicketID, ticketID uuid.UUID, startDate, endDate time.Time) (PeriodBookingResult, error) {
	result := PeriodBookingResult{}

	schedules, err := SchedulesForPeriodTicket(db, ticketID, startDate, endDate)
	if err != nil {
		return result, err
	}
	if len(schedules) == 0 {
		return result, nil
	}

	scheduleIDs := make([]uuid.UUID, len(schedules))
	for i, s := range schedules {
		scheduleIDs[i] = s.ID
	}

	var existing []models.Booking
	err = db.Where("user_id = ? AND schedule_id IN ? AND status IN ?", userID, scheduleIDs, models.ActiveBookingStatuses).
		Find(&existing).Error
	if err != nil {
		return result, err
	}
	booked := make(map[uuid.UUID]bool, len(existing))
	for _, b := range existing {
		if b.ScheduleID != nil {
			booked[*b.ScheduleID] = true
		}
	}

	for i := range schedules {
		schedule := schedules[i]
		if booked[schedule.ID] {
			result.Skipped++
			continue
		}

		booking := models.Booking{
			UserID:        userID,
			ClassID:       &schedule.ClassID,
			ScheduleID:    &schedule.ID,
			UserTicketID:  &userTicketID,
			Status:        models.BookingConfirmed,
			PaymentStatus: models.PaymentPaid,
		}
		if err := db.Create(&booking).Error; err != nil {
			log.Printf("Failed to auto-book schedule %s for user %s: %v", schedule.ID, userID, err)
			continue
		}
		result.Created++
		result.ScheduleIDs = append(result.ScheduleIDs, schedule.ID)

		if _, err := RecountScheduleStudents(db, schedule.ID); err != nil {
			log.Printf("Failed to recount students for schedule %s: %v", schedule.ID, err)
		}
	}

	return result, nil
}

// BackfillNewSchedule books every active period-ticket holder whose window
// covers a newly added schedule. It is the mirror of
// GenerateBookingsForPeriod: purchase-then-schedule and schedule-then-purchase
// end in the same state. Only regular classes take period tickets.
func BackfillNewSchedule(db *gorm.DB, scheduleID, classID uuid.UUID, startTime time.Time) (int, error) {
	var class models.Class
	err := db.First(&class, "id = ?", classID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrClassNotFound
		}
		return 0, err
	}
	if class.ClassType != models.ClassTypeRegular {
		return 0, nil
	}

	linked, err := LinkedTicketIDs(db, classID)
	if err != nil {
		return 0, err
	}
	ticketIDs := make([]uuid.UUID, 0, len(linked))
	for id := range linked {
		ticketIDs = append(ticketIDs, id)
	}

	var generalTickets []models.Ticket
	err = db.Where("academy_id = ? AND is_general = ? AND ticket_type = ?", class.AcademyID, true, models.TicketTypePeriod).
		Find(&generalTickets).Error
	if err != nil {
		return 0, err
	}
	for _, t := range generalTickets {
		if !linked[t.ID] {
			ticketIDs = append(ticketIDs, t.ID)
		}
	}

	if len(ticketIDs) == 0 {
		return 0, nil
	}

	scheduleDate := utils.DateOnly(startTime)
	var holders []models.UserTicket
	err = db.Joins("JOIN tickets ON tickets.id = user_tickets.ticket_id").
		Where("user_tickets.ticket_id IN ?", ticketIDs).
		Where("user_tickets.status = ?", models.UserTicketActive).
		Where("tickets.ticket_type = ?", models.TicketTypePeriod).
		Where("user_tickets.start_date <= ? AND user_tickets.expiry_date >= ?", scheduleDate, scheduleDate).
		Find(&holders).Error
	if err != nil {
		return 0, err
	}
	if len(holders) == 0 {
		return 0, nil
	}

	userIDs := make([]uuid.UUID, 0, len(holders))
	for _, h := range holders {
		userIDs = append(userIDs, h.UserID)
	}

	var existing []models.Booking
	err = db.Where("schedule_id = ? AND user_id IN ? AND status IN ?", scheduleID, userIDs, models.ActiveBookingStatuses).
		Find(&existing).Error
	if err != nil {
		return 0, err
	}
	alreadyBooked := make(map[uuid.UUID]bool, len(existing))
	for _, b := range existing {
		alreadyBooked[b.UserID] = true
	}

	created := 0
	for i := range holders {
		holder := holders[i]
		// One booking per user even if they hold several matching tickets.
		if alreadyBooked[holder.UserID] {
			continue
		}
		alreadyBooked[holder.UserID] = true

		booking := models.Booking{
			UserID:        holder.UserID,
			ClassID:       &classID,
			ScheduleID:    &scheduleID,
			UserTicketID:  &holder.ID,
			Status:        models.BookingConfirmed,
			PaymentStatus: models.PaymentPaid,
		}
		if err := db.Create(&booking).Error; err != nil {
			log.Printf("Failed to backfill booking for user %s on schedule %s: %v", holder.UserID, scheduleID, err)
			continue
		}
		created++
	}

	if created > 0 {
		if _, err := RecountScheduleStudents(db, scheduleID); err != nil {
			log.Printf("Failed to recount students for schedule %s: %v", scheduleID, err)
		}
	}

	return created, nil
}

// BackfillNewSchedules runs the backfill for a batch of freshly created
// schedules, tolerating per-schedule failures.
func BackfillNewSchedules(db *gorm.DB, schedules []models.Schedule) int {
	total := 0
	for _, s := range schedules {
		created, err := BackfillNewSchedule(db, s.ID, s.ClassID, s.StartTime)
		if err != nil {
			log.Printf("Backfill failed for schedule %s: %v", s.ID, err)
			continue
		}
		total += created
	}
	return total
}
