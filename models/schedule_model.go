package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultMaxStudents = 20

// Schedule is one scheduled occurrence of a class. CurrentStudents is a
// denormalized cache of the confirmed booking count; every writer that
// mutates bookings for a schedule recomputes it from the booking rows
// instead of applying a delta.
type Schedule struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key"`
	ClassID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	BranchID        *uuid.UUID `gorm:"type:uuid"`
	HallID          *uuid.UUID `gorm:"type:uuid"`
	InstructorID    *uuid.UUID `gorm:"type:uuid"`
	StartTime       time.Time  `gorm:"not null;index"`
	EndTime         time.Time  `gorm:"not null"`
	MaxStudents     int        `gorm:"not null;default:20"`
	CurrentStudents int        `gorm:"not null;default:0"`
	IsCanceled      bool       `gorm:"default:false"`

	Class Class `gorm:"foreignkey:ClassID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.MaxStudents <= 0 {
		s.MaxStudents = DefaultMaxStudents
	}
	return nil
}
