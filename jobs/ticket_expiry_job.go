package jobs

import (
	"log"
	"time"

	"github.com/tkaykim/moveit-backend/database"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/utils"
)

// ExpireUserTickets flips ACTIVE tickets past their expiry date to EXPIRED.
// Consumption also rejects expired tickets at read time, so this job only
// keeps the stored status honest for listings and reporting. The window is
// inclusive of the expiry date itself: a ticket is still valid for the whole
// of its expiry day, so only dates strictly before today are swept.
func ExpireUserTickets() {
	log.Println("Running job: ExpireUserTickets...")

	result := database.DB.Model(&models.UserTicket{}).
		Where("status = ? AND expiry_date < ?", models.UserTicketActive, utils.DateOnly(time.Now())).
		Update("status", models.UserTicketExpired)
	if result.Error != nil {
		log.Printf("Error expiring user tickets: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("Marked %d user ticket(s) as expired.", result.RowsAffected)
	}
}
