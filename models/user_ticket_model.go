package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	UserTicketActive  = "ACTIVE"
	UserTicketExpired = "EXPIRED"
	UserTicketUsed    = "USED"
)

// UserTicket is one purchased ticket instance. RemainingCount is nil for
// PERIOD tickets (unlimited use inside the window) and a non-negative
// integer for COUNT tickets; it becomes 0 at exhaustion, the row is kept.
// Status USED implies RemainingCount == 0.
type UserTicket struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	TicketID       uuid.UUID `gorm:"type:uuid;not null"`
	RemainingCount *int
	StartDate      time.Time `gorm:"not null"`
	ExpiryDate     time.Time `gorm:"not null"`
	Status         string    `gorm:"size:10;not null;default:'ACTIVE'"`

	// Back-reference stamped when the ticket was issued by a bank-transfer
	// confirmation; the saga check-then-acts on it so a retried confirmation
	// never issues a second ticket for the same order.
	BankTransferOrderID *uuid.UUID `gorm:"type:uuid;unique"`

	Ticket Ticket `gorm:"foreignkey:TicketID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ut *UserTicket) BeforeCreate(tx *gorm.DB) error {
	if ut.ID == uuid.Nil {
		ut.ID = uuid.New()
	}
	return nil
}
