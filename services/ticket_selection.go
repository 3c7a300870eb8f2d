package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/utils"
	"gorm.io/gorm"
)

// LinkedTicketIDs returns the ticket templates usable on a class via the
// ticket_classes link table.
func LinkedTicketIDs(db *gorm.DB, classID uuid.UUID) (map[uuid.UUID]bool, error) {
	var links []models.TicketClass
	if err := db.Where("class_id = ?", classID).Find(&links).Error; err != nil {
		return nil, err
	}
	ids := make(map[uuid.UUID]bool, len(links))
	for _, link := range links {
		ids[link.TicketID] = true
	}
	return ids, nil
}

// LinkedClassIDs returns the classes a ticket template is usable on.
func LinkedClassIDs(db *gorm.DB, ticketID uuid.UUID) ([]uuid.UUID, error) {
	var links []models.TicketClass
	if err := db.Where("ticket_id = ?", ticketID).Find(&links).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.ClassID)
	}
	return ids, nil
}

// AvailableUserTickets lists a user's consumable tickets: ACTIVE, unexpired,
// with uses remaining (or period-type). When classID is given the list is
// narrowed to tickets linked to that class or marked general; otherwise an
// academy filter applies.
func AvailableUserTickets(db *gorm.DB, userID uuid.UUID, academyID uuid.UUID, classID *uuid.UUID) ([]models.UserTicket, error) {
	today := utils.DateOnly(time.Now())

	var tickets []models.UserTicket
	err := db.Preload("Ticket").
		Where("user_id = ? AND status = ?", userID, models.UserTicketActive).
		Where("expiry_date >= ?", today).
		Where("remaining_count > 0 OR remaining_count IS NULL").
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	if classID != nil {
		linked, err := LinkedTicketIDs(db, *classID)
		if err != nil {
			return nil, err
		}
		usable := make([]models.UserTicket, 0, len(tickets))
		for _, ut := range tickets {
			if linked[ut.TicketID] || ut.Ticket.IsGeneral {
				usable = append(usable, ut)
			}
		}
		return usable, nil
	}

	if academyID != uuid.Nil {
		usable := make([]models.UserTicket, 0, len(tickets))
		for _, ut := range tickets {
			if ut.Ticket.AcademyID != nil && *ut.Ticket.AcademyID == academyID {
				usable = append(usable, ut)
			}
		}
		return usable, nil
	}

	return tickets, nil
}

// SelectUserTicket picks which ticket to spend when the caller did not name
// one. Candidates are tried against an ordered chain of predicates:
// class-linked first, then academy-specific, then general/platform-wide.
// Falls back to the first candidate so a usable ticket is never refused.
func SelectUserTicket(tickets []models.UserTicket, linkedTicketIDs map[uuid.UUID]bool, academyID uuid.UUID) *models.UserTicket {
	if len(tickets) == 0 {
		return nil
	}

	predicates := []func(models.UserTicket) bool{
		func(ut models.UserTicket) bool {
			return linkedTicketIDs[ut.TicketID]
		},
		func(ut models.UserTicket) bool {
			return !ut.Ticket.IsGeneral && ut.Ticket.AcademyID != nil && *ut.Ticket.AcademyID == academyID
		},
		func(ut models.UserTicket) bool {
			return ut.Ticket.IsGeneral || ut.Ticket.AcademyID == nil
		},
	}

	for _, match := range predicates {
		for i := range tickets {
			if match(tickets[i]) {
				return &tickets[i]
			}
		}
	}

	return &tickets[0]
}
