package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderPending   = "PENDING"
	OrderConfirmed = "CONFIRMED"
	OrderRejected  = "REJECTED"
)

// BankTransferOrder is a deferred-payment purchase settled manually by
// academy staff. It becomes CONFIRMED exactly once, gaining back-references
// to the user ticket and revenue transaction it produced.
type BankTransferOrder struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	AcademyID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null"`
	TicketID      uuid.UUID  `gorm:"type:uuid;not null"`
	ScheduleID    *uuid.UUID `gorm:"type:uuid"`
	ClassID       *uuid.UUID `gorm:"type:uuid"`
	DiscountID    *uuid.UUID `gorm:"type:uuid"`
	Amount        float64    `gorm:"type:numeric(12,2);not null"`
	DepositorName *string    `gorm:"size:100"`
	Status        string     `gorm:"size:10;not null;default:'PENDING'"`

	UserTicketID         *uuid.UUID `gorm:"type:uuid"`
	RevenueTransactionID *uuid.UUID `gorm:"type:uuid"`
	ConfirmedBy          *uuid.UUID `gorm:"type:uuid"`
	ConfirmedAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (o *BankTransferOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
