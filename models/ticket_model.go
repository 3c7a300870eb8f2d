package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketTypeCount  = "COUNT"
	TicketTypePeriod = "PERIOD"
)

// Ticket is a purchasable ticket template. COUNT templates grant a finite
// number of uses, PERIOD templates grant unlimited use within a date window.
// AcademyID nil means the template is platform-wide.
type Ticket struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key"`
	AcademyID  *uuid.UUID `gorm:"type:uuid"`
	ClassID    *uuid.UUID `gorm:"type:uuid"`
	Name       string     `gorm:"size:255;not null"`
	TicketType string     `gorm:"size:10;not null;default:'COUNT'"`
	TotalCount *int
	ValidDays  *int
	Price      float64 `gorm:"type:numeric(12,2);not null"`
	IsGeneral  bool    `gorm:"default:false"`
	IsOnSale   bool    `gorm:"default:true"`
	IsPublic   bool    `gorm:"default:true"`

	Academy Academy `gorm:"foreignkey:AcademyID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

const (
	DiscountTypePercent = "PERCENT"
	DiscountTypeFixed   = "FIXED"
)

type Discount struct {
	ID            uuid.UUID  `gorm:"type:uuid;primary_key"`
	AcademyID     *uuid.UUID `gorm:"type:uuid"`
	Name          string     `gorm:"size:255;not null"`
	DiscountType  string     `gorm:"size:10;not null"`
	DiscountValue float64    `gorm:"type:numeric(12,2);not null"`
	ValidFrom     *time.Time
	ValidUntil    *time.Time
	IsActive      bool `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (d *Discount) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
