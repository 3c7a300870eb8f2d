package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCompleted = "COMPLETED"
	BookingCancelled = "CANCELLED"

	PaymentPending   = "PENDING"
	PaymentPaid      = "PAID"
	PaymentCompleted = "COMPLETED"
)

// ActiveBookingStatuses are the statuses that occupy a seat. At most one
// booking in these statuses may exist per (user, schedule) pair.
var ActiveBookingStatuses = []string{BookingPending, BookingConfirmed, BookingCompleted}

// CountedBookingStatuses are the statuses included in a schedule's
// CurrentStudents recompute.
var CountedBookingStatuses = []string{BookingConfirmed, BookingCompleted}

type Booking struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClassID       *uuid.UUID `gorm:"type:uuid"`
	ScheduleID    *uuid.UUID `gorm:"type:uuid;index"`
	UserTicketID  *uuid.UUID `gorm:"type:uuid"`
	Status        string     `gorm:"size:20;not null;default:'CONFIRMED'"`
	PaymentStatus string     `gorm:"size:20;not null;default:'PAID'"`

	Schedule   Schedule   `gorm:"foreignkey:ScheduleID"`
	UserTicket UserTicket `gorm:"foreignkey:UserTicketID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
