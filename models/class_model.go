package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ClassTypeRegular  = "regular"
	ClassTypePopup    = "popup"
	ClassTypeWorkshop = "workshop"
)

type Class struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	AcademyID    uuid.UUID  `gorm:"type:uuid;not null"`
	InstructorID *uuid.UUID `gorm:"type:uuid"`
	HallID       *uuid.UUID `gorm:"type:uuid"`
	Title        string     `gorm:"size:255;not null"`
	ClassType    string     `gorm:"size:20;not null;default:'regular'"`
	Description  *string    `gorm:"type:text"`

	Academy Academy `gorm:"foreignkey:AcademyID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c *Class) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TicketClass links a ticket template to a class it can be spent on.
type TicketClass struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;index:idx_ticket_class,unique"`
	ClassID  uuid.UUID `gorm:"type:uuid;not null;index:idx_ticket_class,unique"`

	CreatedAt time.Time
}

func (tc *TicketClass) BeforeCreate(tx *gorm.DB) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	return nil
}
