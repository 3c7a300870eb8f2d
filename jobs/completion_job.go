package jobs

import (
	"log"
	"time"

	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/services"
)

// CompleteFinishedBookings moves CONFIRMED bookings of sessions that have
// ended to COMPLETED. Both statuses count toward capacity, so the counters
// are unaffected; the recount is run anyway to heal any drift.
func CompleteFinishedBookings() {
	log.Println("Running job: CompleteFinishedBookings...")

	var finished []models.Booking
	err := database.DB.
		Joins("JOIN schedules ON schedules.id = bookings.schedule_id").
		Where("bookings.status = ? AND schedules.end_time < ?", models.BookingConfirmed, time.Now()).
		Find(&finished).Error
	if err != nil {
		log.Printf("Error finding finished bookings: %v", err)
		return
	}
	if len(finished) == 0 {
		return
	}

	touched := make(map[string]bool)
	for _, booking := range finished {
		err := database.DB.Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("status", models.BookingCompleted).Error
		if err != nil {
			log.Printf("Failed to complete booking %s: %v", booking.ID, err)
			continue
		}
		if booking.ScheduleID != nil {
			touched[booking.ScheduleID.String()] = true
		}
	}

	for _, booking := range finished {
		if booking.ScheduleID == nil || !touched[booking.ScheduleID.String()] {
			continue
		}
		delete(touched, booking.ScheduleID.String())
		if _, err := services.RecountScheduleStudents(database.DB, *booking.ScheduleID); err != nil {
			log.Printf("Failed to recount students for schedule %s: %v", booking.ScheduleID, err)
		}
	}

	log.Printf("Marked %d booking(s) as completed.", len(finished))
}
