package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Academy struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key"`
	Name    string    `gorm:"size:255;not null"`
	NameEN  *string   `gorm:"size:255"`
	Address *string   `gorm:"size:500"`
	LogoURL *string   `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Academy) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AcademyStudent records a user's membership in an academy. One row per
// (academy, user) pair, inserted lazily on first purchase.
type AcademyStudent struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null;index:idx_academy_student,unique"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_academy_student,unique"`

	CreatedAt time.Time
}

func (s *AcademyStudent) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Branch struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	AcademyID uuid.UUID `gorm:"type:uuid;not null"`
	Name      string    `gorm:"size:255;not null"`
	Address   *string   `gorm:"size:500"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b *Branch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type Hall struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	BranchID uuid.UUID `gorm:"type:uuid;not null"`
	Name     string    `gorm:"size:255;not null"`
	Capacity *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (h *Hall) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

type Instructor struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key"`
	AcademyID uuid.UUID  `gorm:"type:uuid;not null"`
	UserID    *uuid.UUID `gorm:"type:uuid"`
	Name      string     `gorm:"size:255;not null"`
	Bio       *string    `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (i *Instructor) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
