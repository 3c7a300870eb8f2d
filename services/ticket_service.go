package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/moveit-backend/models"
	"github.com/tkaykim/moveit-backend/utils"
	"gorm.io/gorm"
)

// GetUserTicket loads a purchased ticket with its template.
func GetUserTicket(db *gorm.DB, userTicketID uuid.UUID) (*models.UserTicket, error) {
	var ut models.UserTicket
	err := db.Preload("Ticket").First(&ut, "id = ?", userTicketID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ut, nil
}

// ConsumeUserTicket validates a ticket and spends quantity uses from it.
// COUNT tickets are decremented and flip to USED at zero; PERIOD tickets
// (RemainingCount == nil) are only validated, nothing is decremented.
// The decrement is a single row update, so a failure means no consumption
// occurred.
func ConsumeUserTicket(db *gorm.DB, userTicketID uuid.UUID, quantity int) error {
	ut, err := GetUserTicket(db, userTicketID)
	if err != nil {
		return err
	}

	// USED falls through to the balance check so an exhausted count ticket
	// reports InsufficientBalance rather than a generic state error.
	if ut.Status != models.UserTicketActive && ut.Status != models.UserTicketUsed {
		return ErrTicketNotActive
	}

	today := utils.DateOnly(time.Now())
	if today.After(utils.DateOnly(ut.ExpiryDate)) {
		return ErrTicketExpired
	}

	if ut.Ticket.TicketType == models.TicketTypePeriod || ut.RemainingCount == nil {
		if ut.Status != models.UserTicketActive {
			return ErrTicketNotActive
		}
		return nil
	}

	if *ut.RemainingCount < quantity {
		return ErrInsufficientBalance
	}

	newCount := *ut.RemainingCount - quantity
	updates := map[string]interface{}{"remaining_count": newCount}
	if newCount == 0 {
		updates["status"] = models.UserTicketUsed
	}

	return db.Model(&models.UserTicket{}).Where("id = ?", ut.ID).Updates(updates).Error
}

// RestoreUserTicket gives back quantity uses to a COUNT ticket, flipping a
// USED ticket back to ACTIVE when the count becomes positive again. PERIOD
// tickets are a no-op since nothing was decremented.
func RestoreUserTicket(db *gorm.DB, userTicketID uuid.UUID, quantity int) error {
	ut, err := GetUserTicket(db, userTicketID)
	if err != nil {
		return err
	}

	if ut.RemainingCount == nil {
		return nil
	}

	newCount := *ut.RemainingCount + quantity
	updates := map[string]interface{}{"remaining_count": newCount}
	if ut.Status == models.UserTicketUsed && newCount > 0 {
		updates["status"] = models.UserTicketActive
	}

	return db.Model(&models.UserTicket{}).Where("id = ?", ut.ID).Updates(updates).Error
}

// TicketWindow computes the validity window a template grants, starting at
// from's date. Templates without ValidDays default to one year.
func TicketWindow(ticket *models.Ticket, from time.Time) (time.Time, time.Time) {
	start := utils.DateOnly(from)
	if ticket.ValidDays != nil && *ticket.ValidDays > 0 {
		return start, start.AddDate(0, 0, *ticket.ValidDays)
	}
	return start, start.AddDate(1, 0, 0)
}

// IssueUserTicket inserts a new ACTIVE ticket instance for a template.
// PERIOD templates get a nil RemainingCount, COUNT templates get the
// template's TotalCount (1 if unset). orderID, when present, stamps the
// bank-transfer order the issuance belongs to.
func IssueUserTicket(db *gorm.DB, userID uuid.UUID, ticket *models.Ticket, startDate time.Time, orderID *uuid.UUID) (*models.UserTicket, error) {
	var remaining *int
	if ticket.TicketType != models.TicketTypePeriod {
		count := 1
		if ticket.TotalCount != nil && *ticket.TotalCount > 0 {
			count = *ticket.TotalCount
		}
		remaining = &count
	}

	start, expiry := TicketWindow(ticket, startDate)

	ut := models.UserTicket{
		UserID:              userID,
		TicketID:            ticket.ID,
		RemainingCount:      remaining,
		StartDate:           start,
		ExpiryDate:          expiry,
		Status:              models.UserTicketActive,
		BankTransferOrderID: orderID,
	}
	if err := db.Create(&ut).Error; err != nil {
		return nil, err
	}
	ut.Ticket = *ticket
	return &ut, nil
}
