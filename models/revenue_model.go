package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PaymentMethodCard         = "CARD"
	PaymentMethodBankTransfer = "BANK_TRANSFER"

	RegistrationNew = "NEW"
	RegistrationRe  = "RE_REGISTRATION"
)

// RevenueTransaction is an append-only financial record, one row per
// completed monetary or ticket-issuing event. Rows are never mutated after
// creation except to be referenced by an order confirmation.
type RevenueTransaction struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key"`
	AcademyID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null"`
	TicketID         uuid.UUID  `gorm:"type:uuid;not null"`
	UserTicketID     uuid.UUID  `gorm:"type:uuid;not null"`
	DiscountID       *uuid.UUID `gorm:"type:uuid"`
	OriginalPrice    float64    `gorm:"type:numeric(12,2);not null"`
	DiscountAmount   float64    `gorm:"type:numeric(12,2);not null;default:0"`
	FinalPrice       float64    `gorm:"type:numeric(12,2);not null"`
	PaymentMethod    string     `gorm:"size:20;not null"`
	PaymentStatus    string     `gorm:"size:20;not null"`
	RegistrationType string     `gorm:"size:20;not null"`
	Quantity         int        `gorm:"not null;default:1"`
	ValidDays        *int
	TicketName       string    `gorm:"size:255;not null"`
	TicketTypeSnap   string    `gorm:"size:10;not null"`
	TransactionDate  time.Time `gorm:"not null"`

	CreatedAt time.Time
}

func (r *RevenueTransaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
